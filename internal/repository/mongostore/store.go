package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/segyhp/payment-tracker/internal/domain"
	"github.com/segyhp/payment-tracker/internal/repository"
)

const importLogCollection = "import_log"

// Connect opens a client and verifies the deployment answers a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(timeoutCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(timeoutCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// NewStore wires the collection-backed repositories of one database.
func NewStore(client *mongo.Client, dbName string) *repository.Store {
	db := client.Database(dbName)

	return &repository.Store{
		Payments:  NewPaymentRepository(db),
		Evidence:  NewEvidenceRepository(db),
		ImportLog: NewImportLogRepository(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		EnsureSchema: func(ctx context.Context) error {
			return EnsureIndexes(ctx, db)
		},
		Close: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	}
}

func paymentIndexes() []mongo.IndexModel {
	textKeys := bson.D{}
	for _, field := range domain.TextSearchFields {
		textKeys = append(textKeys, bson.E{Key: field, Value: "text"})
	}

	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "payee_payment_status", Value: 1}},
			Options: options.Index().SetName("payment_status_index"),
		},
		{
			Keys:    bson.D{{Key: "payee_due_date", Value: 1}},
			Options: options.Index().SetName("due_date_index"),
		},
		{
			Keys:    textKeys,
			Options: options.Index().SetName("all_text_fields_index"),
		},
		{
			Keys:    bson.D{{Key: "payee_payment_status", Value: 1}, {Key: "payee_due_date", Value: 1}},
			Options: options.Index().SetName("status_due_date_index"),
		},
	}
}

// EnsureIndexes creates the payment, evidence and import log indexes.
// Creating an index that already exists with the same keys and options is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(paymentsCollection).Indexes().CreateMany(ctx, paymentIndexes()); err != nil {
		return fmt.Errorf("payments indexes: %w", err)
	}

	evidenceIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "payment_id", Value: 1}},
		Options: options.Index().SetName("evidence_payment_id_index"),
	}
	if _, err := db.Collection(evidenceCollection).Indexes().CreateOne(ctx, evidenceIndex); err != nil {
		return fmt.Errorf("evidence indexes: %w", err)
	}

	importLogIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "file_name", Value: 1}},
		Options: options.Index().SetName("file_name_unique_index").SetUnique(true),
	}
	if _, err := db.Collection(importLogCollection).Indexes().CreateOne(ctx, importLogIndex); err != nil {
		return fmt.Errorf("import_log indexes: %w", err)
	}

	return nil
}

type importLogRepository struct {
	collection *mongo.Collection
}

func NewImportLogRepository(db *mongo.Database) repository.ImportLogRepository {
	return &importLogRepository{
		collection: db.Collection(importLogCollection),
	}
}

func (r *importLogRepository) Exists(ctx context.Context, fileName string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"file_name": fileName}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *importLogRepository) Create(ctx context.Context, entry *domain.ImportLog) error {
	_, err := r.collection.InsertOne(ctx, importLogDocument{
		FileName:    entry.FileName,
		RecordCount: entry.RecordCount,
		ImportedAt:  entry.ImportedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrAlreadyImported
	}
	return err
}
