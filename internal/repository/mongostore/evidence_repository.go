package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/segyhp/payment-tracker/internal/domain"
	"github.com/segyhp/payment-tracker/internal/repository"
)

const evidenceCollection = "evidence"

type evidenceRepository struct {
	collection *mongo.Collection
}

func NewEvidenceRepository(db *mongo.Database) repository.EvidenceRepository {
	return &evidenceRepository{
		collection: db.Collection(evidenceCollection),
	}
}

func (r *evidenceRepository) Create(ctx context.Context, evidence *domain.Evidence) error {
	doc := evidenceDocument{
		ID:          primitive.NewObjectID(),
		PaymentID:   evidence.PaymentID,
		Filename:    evidence.Filename,
		ContentType: evidence.ContentType,
		Size:        evidence.Size,
		Content:     evidence.Content,
		CreatedAt:   evidence.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}

	evidence.ID = doc.ID.Hex()
	return nil
}

func (r *evidenceRepository) ExistsForPayment(ctx context.Context, paymentID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"payment_id": paymentID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *evidenceRepository) GetFirstByPaymentID(ctx context.Context, paymentID string) (*domain.Evidence, error) {
	if _, err := parseID(paymentID); err != nil {
		return nil, err
	}

	findOptions := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	var doc evidenceDocument
	err := r.collection.FindOne(ctx, bson.M{"payment_id": paymentID}, findOptions).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toDomain(), nil
}

func (r *evidenceRepository) DeleteByPaymentID(ctx context.Context, paymentID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"payment_id": paymentID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
