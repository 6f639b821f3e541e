package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/segyhp/payment-tracker/internal/domain"
	"github.com/segyhp/payment-tracker/internal/repository"
)

const paymentsCollection = "payments"

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection(paymentsCollection),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	doc := newPaymentDocument(payment)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}

	payment.ID = doc.ID.Hex()
	return nil
}

func (r *paymentRepository) CreateMany(ctx context.Context, payments []*domain.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(payments))
	ids := make([]primitive.ObjectID, 0, len(payments))
	for _, p := range payments {
		doc := newPaymentDocument(p)
		doc.ID = primitive.NewObjectID()
		docs = append(docs, doc)
		ids = append(ids, doc.ID)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return err
	}

	for i, p := range payments {
		p.ID = ids[i].Hex()
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc paymentDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc.toDomain(), nil
}

func (r *paymentRepository) List(ctx context.Context, q domain.ListQuery) ([]*domain.Payment, int64, error) {
	filter := buildPaymentFilter(q)

	sortBy := q.SortBy
	if !domain.SortableField(sortBy) {
		sortBy = domain.DefaultSortField
	}
	direction := 1
	if q.Descending() {
		direction = -1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: direction}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Size))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []paymentDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	payments := make([]*domain.Payment, 0, len(docs))
	for i := range docs {
		payments = append(payments, docs[i].toDomain())
	}
	return payments, total, nil
}

func buildPaymentFilter(q domain.ListQuery) bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["payee_payment_status"] = q.Status
	}
	if q.Search != "" {
		if q.IsEmailSearch() {
			filter["payee_email"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		} else {
			filter["$text"] = bson.M{"$search": q.Search}
		}
	}
	return filter
}

func (r *paymentRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}

	set := bson.M{}
	for name, value := range fields {
		if !repository.UpdatableField(name) {
			return fmt.Errorf("field %q cannot be updated", name)
		}
		if d, ok := value.(decimal.Decimal); ok {
			value = toDecimal128(d)
		}
		set[name] = value
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.Update(ctx, id, map[string]interface{}{"payee_payment_status": status})
}

func (r *paymentRepository) GetDueCandidates(ctx context.Context) ([]*domain.DueCandidate, error) {
	filter := bson.M{
		"payee_due_date":       bson.M{"$exists": true},
		"payee_payment_status": bson.M{"$ne": domain.PaymentStatusCompleted},
	}
	projection := bson.M{"_id": 1, "payee_due_date": 1, "payee_payment_status": 1}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []paymentDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	candidates := make([]*domain.DueCandidate, 0, len(docs))
	for _, doc := range docs {
		candidates = append(candidates, &domain.DueCandidate{
			ID:                 doc.ID.Hex(),
			PayeeDueDate:       doc.PayeeDueDate.UTC(),
			PayeePaymentStatus: doc.PayeePaymentStatus,
		})
	}
	return candidates, nil
}

func (r *paymentRepository) UpdateStatusUnlessCompleted(ctx context.Context, id string, status string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}

	filter := bson.M{
		"_id":                  oid,
		"payee_payment_status": bson.M{"$nin": bson.A{domain.PaymentStatusCompleted, status}},
	}
	update := bson.M{"$set": bson.M{"payee_payment_status": status}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}
