package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/payment-tracker/internal/domain"
	"github.com/segyhp/payment-tracker/internal/repository"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CreateMany(ctx context.Context, payments []*domain.Payment) error {
	args := m.Called(ctx, payments)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, query domain.ListQuery) ([]*domain.Payment, int64, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetDueCandidates(ctx context.Context) ([]*domain.DueCandidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DueCandidate), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatusUnlessCompleted(ctx context.Context, id string, status string) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockEvidenceRepository struct {
	mock.Mock
}

func (m *MockEvidenceRepository) Create(ctx context.Context, evidence *domain.Evidence) error {
	args := m.Called(ctx, evidence)
	return args.Error(0)
}

func (m *MockEvidenceRepository) ExistsForPayment(ctx context.Context, paymentID string) (bool, error) {
	args := m.Called(ctx, paymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEvidenceRepository) GetFirstByPaymentID(ctx context.Context, paymentID string) (*domain.Evidence, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Evidence), args.Error(1)
}

func (m *MockEvidenceRepository) DeleteByPaymentID(ctx context.Context, paymentID string) (int64, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(int64), args.Error(1)
}

type MockImportLogRepository struct {
	mock.Mock
}

func (m *MockImportLogRepository) Exists(ctx context.Context, fileName string) (bool, error) {
	args := m.Called(ctx, fileName)
	return args.Bool(0), args.Error(1)
}

func (m *MockImportLogRepository) Create(ctx context.Context, entry *domain.ImportLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// NewStore bundles mock repositories into a Store with no-op lifecycle hooks.
func NewStore(payments *MockPaymentRepository, evidence *MockEvidenceRepository, importLog *MockImportLogRepository) *repository.Store {
	noop := func(context.Context) error { return nil }
	return &repository.Store{
		Payments:     payments,
		Evidence:     evidence,
		ImportLog:    importLog,
		Ping:         noop,
		EnsureSchema: noop,
		Close:        noop,
	}
}
