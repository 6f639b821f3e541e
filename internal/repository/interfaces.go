package repository

import (
	"context"
	"errors"

	"github.com/segyhp/payment-tracker/internal/domain"
)

var (
	// ErrNotFound is returned when an identifier resolves to no record.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID is returned when an identifier is not in the store's format.
	ErrInvalidID = errors.New("invalid record id")
)

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create inserts a payment and sets its store-assigned ID
	Create(ctx context.Context, payment *domain.Payment) error

	// CreateMany inserts a batch of payments and sets their IDs
	CreateMany(ctx context.Context, payments []*domain.Payment) error

	// GetByID retrieves a payment by its ID
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// List returns one page of matching payments and the total match count
	List(ctx context.Context, query domain.ListQuery) ([]*domain.Payment, int64, error)

	// Update applies a partial update keyed by stored field name
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	// UpdateStatus sets the status of a payment
	UpdateStatus(ctx context.Context, id string, status string) error

	// GetDueCandidates returns every non-completed payment with a due date
	GetDueCandidates(ctx context.Context) ([]*domain.DueCandidate, error)

	// UpdateStatusUnlessCompleted sets the status only if the stored status
	// is not completed. It reports whether a record changed.
	UpdateStatusUnlessCompleted(ctx context.Context, id string, status string) (bool, error)

	// Delete removes a payment and reports whether it existed
	Delete(ctx context.Context, id string) (bool, error)
}

// EvidenceRepository defines the interface for evidence data operations
type EvidenceRepository interface {
	// Create inserts an evidence record and sets its ID
	Create(ctx context.Context, evidence *domain.Evidence) error

	// ExistsForPayment reports whether any evidence references the payment
	ExistsForPayment(ctx context.Context, paymentID string) (bool, error)

	// GetFirstByPaymentID returns the first evidence record for a payment
	GetFirstByPaymentID(ctx context.Context, paymentID string) (*domain.Evidence, error)

	// DeleteByPaymentID removes all evidence for a payment and returns the count
	DeleteByPaymentID(ctx context.Context, paymentID string) (int64, error)
}

// ImportLogRepository defines the interface for batch import bookkeeping
type ImportLogRepository interface {
	// Exists reports whether a batch file was already imported
	Exists(ctx context.Context, fileName string) (bool, error)

	// Create records an imported batch file
	Create(ctx context.Context, entry *domain.ImportLog) error
}

// Store bundles the repositories of one backing database.
type Store struct {
	Payments  PaymentRepository
	Evidence  EvidenceRepository
	ImportLog ImportLogRepository

	// Ping checks connectivity for readiness probes.
	Ping func(ctx context.Context) error
	// EnsureSchema creates tables or indexes that do not exist yet.
	EnsureSchema func(ctx context.Context) error
	// Close releases the underlying connection.
	Close func(ctx context.Context) error
}
