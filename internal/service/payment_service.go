package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segyhp/payment-tracker/internal/domain"
	"github.com/segyhp/payment-tracker/internal/repository"
	"github.com/segyhp/payment-tracker/internal/validation"
	customError "github.com/segyhp/payment-tracker/pkg/errors"
)

const (
	defaultPageSize      = 20
	defaultMaxPageSize   = 100
	defaultMaxUploadSize = 10 << 20
)

// Options tunes a PaymentService. Zero values fall back to defaults.
type Options struct {
	// Sweeper replaces the sweep stage of listings. Nil means the status
	// engine sweeps on every listing.
	Sweeper         Sweeper
	DefaultPageSize int
	MaxPageSize     int
	MaxUploadSize   int64
	Clock           func() time.Time
}

// PaymentService composes the status engine with the record store.
type PaymentService struct {
	payments  repository.PaymentRepository
	evidence  repository.EvidenceRepository
	engine    *StatusEngine
	sweeper   Sweeper
	validator *validation.Validator

	defaultPageSize int
	maxPageSize     int
	maxUploadSize   int64
	now             func() time.Time
}

func NewPaymentService(store *repository.Store, opts Options) *PaymentService {
	engine := NewStatusEngine(store.Payments, store.Evidence)

	s := &PaymentService{
		payments:        store.Payments,
		evidence:        store.Evidence,
		engine:          engine,
		sweeper:         opts.Sweeper,
		validator:       validation.New(),
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
		maxUploadSize:   opts.MaxUploadSize,
		now:             opts.Clock,
	}

	if s.sweeper == nil {
		s.sweeper = SweepFunc(engine.SweepDueStatuses)
	}
	if s.defaultPageSize <= 0 {
		s.defaultPageSize = defaultPageSize
	}
	if s.maxPageSize <= 0 {
		s.maxPageSize = defaultMaxPageSize
	}
	if s.maxUploadSize <= 0 {
		s.maxUploadSize = defaultMaxUploadSize
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}

	return s
}

// ListPayments runs the sweep stage and then the query stage.
func (s *PaymentService) ListPayments(ctx context.Context, q domain.ListQuery) (*domain.ListResult, error) {
	q, err := s.normalizeListQuery(q)
	if err != nil {
		return nil, err
	}

	if _, err := s.sweeper.Sweep(ctx, s.now()); err != nil {
		return nil, err
	}

	payments, total, err := s.payments.List(ctx, q)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.ListResult{
		Total: total,
		Page:  q.Page,
		Size:  q.Size,
		Data:  payments,
	}, nil
}

func (s *PaymentService) normalizeListQuery(q domain.ListQuery) (domain.ListQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Size == 0 {
		q.Size = s.defaultPageSize
	}
	if q.SortBy == "" {
		q.SortBy = domain.DefaultSortField
	}
	if q.SortOrder == "" {
		q.SortOrder = domain.SortAsc
	}

	switch {
	case q.Page < 1:
		return q, customError.WrapValidationCode(customError.ErrCodeInvalidListParams, "page must be 1 or greater")
	case q.Size < 1 || q.Size > s.maxPageSize:
		return q, customError.WrapValidationCode(customError.ErrCodeInvalidListParams,
			fmt.Sprintf("size must be between 1 and %d", s.maxPageSize))
	case !domain.SortableField(q.SortBy):
		return q, customError.WrapValidationCode(customError.ErrCodeInvalidListParams,
			fmt.Sprintf("cannot sort by %q", q.SortBy))
	case q.SortOrder != domain.SortAsc && q.SortOrder != domain.SortDesc:
		return q, customError.WrapValidationCode(customError.ErrCodeInvalidListParams, "sort_order must be asc or desc")
	case q.Status != "" && !domain.ValidPaymentStatus(q.Status):
		return q, customError.WrapValidationCode(customError.ErrCodeInvalidListParams,
			fmt.Sprintf("unknown status %q", q.Status))
	}

	return q, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, paymentLookupError(id, err)
	}
	return payment, nil
}

// CreatePayment validates shape, then business rules, derives total_due and inserts.
func (s *PaymentService) CreatePayment(ctx context.Context, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	payment := req.ToPayment()
	if err := ValidateNewPayment(payment, s.now()); err != nil {
		return nil, err
	}

	total, err := DeriveTotalDue(payment.DueAmount, payment.DiscountPercent, payment.TaxPercent)
	if err != nil {
		return nil, err
	}
	payment.TotalDue = total

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return payment, nil
}

// UpdatePayment applies a partial update. total_due is not recalculated.
func (s *PaymentService) UpdatePayment(ctx context.Context, id string, req *domain.UpdatePaymentRequest) (*domain.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	fields := req.Fields()
	if len(fields) == 0 {
		return nil, customError.WrapValidation("update must set at least one field")
	}
	if err := checkPercents(nullable(req.DiscountPercent), nullable(req.TaxPercent)); err != nil {
		return nil, err
	}

	if req.SetsStatus(domain.PaymentStatusCompleted) {
		if _, err := s.payments.GetByID(ctx, id); err != nil {
			return nil, paymentLookupError(id, err)
		}

		ok, err := s.engine.CanComplete(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, customError.WrapEvidenceRequired(id)
		}
	}

	if err := s.payments.Update(ctx, id, fields); err != nil {
		return nil, paymentLookupError(id, err)
	}

	return s.GetPayment(ctx, id)
}

// DeletePayment removes a payment. Evidence of a completed payment is deleted
// first; if the payment delete then fails the evidence is already gone.
func (s *PaymentService) DeletePayment(ctx context.Context, id string) (*domain.DeleteResult, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, paymentLookupError(id, err)
	}

	result := &domain.DeleteResult{}
	if payment.IsCompleted() {
		count, err := s.evidence.DeleteByPaymentID(ctx, id)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		result.EvidenceDeleted = count
	}

	deleted, err := s.payments.Delete(ctx, id)
	if err != nil || !deleted {
		if result.EvidenceDeleted > 0 {
			if err == nil {
				err = repository.ErrNotFound
			}
			return nil, customError.WrapConsistencyFault(
				fmt.Sprintf("deleted %d evidence records but payment %s was not deleted", result.EvidenceDeleted, id), err)
		}
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		return nil, customError.WrapPaymentNotFound(id)
	}

	result.Deleted = true
	return result, nil
}

// UploadEvidence stores a file against a payment and marks the payment completed.
func (s *PaymentService) UploadEvidence(ctx context.Context, paymentID string, upload *domain.EvidenceUpload) (*domain.UploadEvidenceResponse, error) {
	if !domain.AllowedEvidenceType(upload.ContentType) {
		return nil, customError.WrapValidationCode(customError.ErrCodeInvalidFileType,
			fmt.Sprintf("file type %q is not allowed, upload a PDF, PNG or JPEG", upload.ContentType))
	}
	if int64(len(upload.Content)) > s.maxUploadSize {
		return nil, customError.WrapValidationCode(customError.ErrCodeFileTooLarge,
			fmt.Sprintf("file exceeds the %d byte limit", s.maxUploadSize))
	}

	if _, err := s.payments.GetByID(ctx, paymentID); err != nil {
		return nil, paymentLookupError(paymentID, err)
	}

	evidence := &domain.Evidence{
		PaymentID:   paymentID,
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Size:        int64(len(upload.Content)),
		Content:     upload.Content,
		CreatedAt:   s.now(),
	}
	if err := s.evidence.Create(ctx, evidence); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.payments.UpdateStatus(ctx, paymentID, domain.PaymentStatusCompleted); err != nil {
		return nil, customError.WrapConsistencyFault(
			fmt.Sprintf("evidence %s stored but payment %s was not marked completed", evidence.ID, paymentID), err)
	}

	return &domain.UploadEvidenceResponse{
		EvidenceID: evidence.ID,
		PaymentID:  paymentID,
		Status:     domain.PaymentStatusCompleted,
	}, nil
}

// DownloadEvidence returns the first evidence stored for a payment.
func (s *PaymentService) DownloadEvidence(ctx context.Context, paymentID string) (*domain.Evidence, error) {
	evidence, err := s.evidence.GetFirstByPaymentID(ctx, paymentID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, customError.WrapEvidenceNotFound(paymentID)
	case err != nil:
		return nil, paymentLookupError(paymentID, err)
	}
	return evidence, nil
}

func paymentLookupError(id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return customError.WrapPaymentNotFound(id)
	case errors.Is(err, repository.ErrInvalidID):
		return customError.WrapInvalidID(id)
	default:
		return customError.WrapDatabaseError(err)
	}
}
