package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/payment-tracker/internal/domain"
)

type evidenceRepository struct {
	db *sqlx.DB
}

func NewEvidenceRepository(db *sqlx.DB) EvidenceRepository {
	return &evidenceRepository{db: db}
}

func (r *evidenceRepository) Create(ctx context.Context, evidence *domain.Evidence) error {
	query := `
		INSERT INTO evidence (id, payment_id, filename, content_type, size, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, query,
		id,
		evidence.PaymentID,
		evidence.Filename,
		evidence.ContentType,
		evidence.Size,
		evidence.Content,
		evidence.CreatedAt,
	)
	if err != nil {
		return err
	}

	evidence.ID = id
	return nil
}

func (r *evidenceRepository) ExistsForPayment(ctx context.Context, paymentID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM evidence WHERE payment_id = $1)`, paymentID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *evidenceRepository) GetFirstByPaymentID(ctx context.Context, paymentID string) (*domain.Evidence, error) {
	if _, err := uuid.Parse(paymentID); err != nil {
		return nil, ErrInvalidID
	}

	query := `
		SELECT id, payment_id, filename, content_type, size, content, created_at
		FROM evidence
		WHERE payment_id = $1
		ORDER BY created_at, id
		LIMIT 1
	`

	var evidence domain.Evidence
	err := r.db.GetContext(ctx, &evidence, query, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &evidence, nil
}

func (r *evidenceRepository) DeleteByPaymentID(ctx context.Context, paymentID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM evidence WHERE payment_id = $1`, paymentID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
