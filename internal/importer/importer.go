// Package importer ingests encrypted CSV batches of payments.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/segyhp/payment-tracker/internal/domain"
	"github.com/segyhp/payment-tracker/internal/repository"
	"github.com/segyhp/payment-tracker/internal/service"
	"github.com/segyhp/payment-tracker/internal/validation"
	customError "github.com/segyhp/payment-tracker/pkg/errors"
)

// Validation modes for imported rows.
const (
	// ModeStrict applies the same rules as API-created payments.
	ModeStrict = "strict"
	// ModeHistorical accepts any status and past due dates.
	ModeHistorical = "historical"
)

// maxReportedProblems caps the row errors listed in a rejection message.
const maxReportedProblems = 20

type Options struct {
	Mode     string
	TokenTTL time.Duration
	Clock    func() time.Time
}

type Importer struct {
	payments  repository.PaymentRepository
	importLog repository.ImportLogRepository
	fernet    *Fernet
	validator *validation.Validator
	rules     func(p *domain.Payment, now time.Time) error
	tokenTTL  time.Duration
	now       func() time.Time
}

func New(store *repository.Store, fernet *Fernet, opts Options) (*Importer, error) {
	imp := &Importer{
		payments:  store.Payments,
		importLog: store.ImportLog,
		fernet:    fernet,
		validator: validation.New(),
		tokenTTL:  opts.TokenTTL,
		now:       opts.Clock,
	}

	switch opts.Mode {
	case ModeStrict, "":
		imp.rules = service.ValidateNewPayment
	case ModeHistorical:
		imp.rules = service.ValidateHistoricalPayment
	default:
		return nil, fmt.Errorf("unknown import validation mode %q", opts.Mode)
	}

	if imp.now == nil {
		imp.now = func() time.Time { return time.Now().UTC() }
	}

	return imp, nil
}

// ImportFile imports the batch at path. The batch is identified by its base
// file name; a name already in the import log is skipped without reading it.
func (i *Importer) ImportFile(ctx context.Context, path string) (*domain.ImportResult, error) {
	name := filepath.Base(path)

	done, err := i.importLog.Exists(ctx, name)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if done {
		return &domain.ImportResult{FileName: name, Skipped: true}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	return i.importBatch(ctx, name, data)
}

// Import imports an encrypted batch held in memory under name.
func (i *Importer) Import(ctx context.Context, name string, data []byte) (*domain.ImportResult, error) {
	done, err := i.importLog.Exists(ctx, name)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if done {
		return &domain.ImportResult{FileName: name, Skipped: true}, nil
	}

	return i.importBatch(ctx, name, data)
}

func (i *Importer) importBatch(ctx context.Context, name string, data []byte) (*domain.ImportResult, error) {
	now := i.now()

	plaintext, err := i.fernet.Decrypt(data, i.tokenTTL)
	if err != nil {
		return nil, customError.WrapValidationCode(customError.ErrCodeBatchRejected,
			fmt.Sprintf("cannot decrypt %s: %v", name, err))
	}

	payments, err := i.prepare(bytes.NewReader(plaintext), now)
	if err != nil {
		return nil, err
	}

	if err := i.payments.CreateMany(ctx, payments); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	entry := &domain.ImportLog{FileName: name, RecordCount: len(payments), ImportedAt: now}
	if err := i.importLog.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrAlreadyImported) {
			return nil, customError.WrapConsistencyFault(
				fmt.Sprintf("%s was imported concurrently, %d payments may be duplicated", name, len(payments)), err)
		}
		return nil, customError.WrapConsistencyFault(
			fmt.Sprintf("inserted %d payments from %s but could not record the import", len(payments), name), err)
	}

	return &domain.ImportResult{FileName: name, Inserted: len(payments)}, nil
}

// prepare parses and validates every row. Any failing row rejects the batch.
func (i *Importer) prepare(r *bytes.Reader, now time.Time) ([]*domain.Payment, error) {
	rows, problems, err := ParseCSV(r)
	if err != nil {
		return nil, customError.WrapValidationCode(customError.ErrCodeBatchRejected, err.Error())
	}
	if len(rows) == 0 {
		return nil, customError.WrapValidationCode(customError.ErrCodeBatchRejected, "batch contains no payments")
	}

	payments := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		if err := i.validator.Struct(row.Request); err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %s", row.Line, businessMessage(err)))
			continue
		}

		payment := row.Request.ToPayment()
		if err := i.rules(payment, now); err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %s", row.Line, businessMessage(err)))
			continue
		}

		total, err := service.DeriveTotalDue(payment.DueAmount, payment.DiscountPercent, payment.TaxPercent)
		if err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %s", row.Line, businessMessage(err)))
			continue
		}
		payment.TotalDue = total
		payments = append(payments, payment)
	}

	if len(problems) > 0 {
		return nil, customError.WrapValidationCode(customError.ErrCodeBatchRejected, rejection(problems))
	}
	return payments, nil
}

func businessMessage(err error) string {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

func rejection(problems []string) string {
	shown := problems
	if len(shown) > maxReportedProblems {
		shown = shown[:maxReportedProblems]
	}
	msg := fmt.Sprintf("batch rejected with %d problems: %s", len(problems), strings.Join(shown, "; "))
	if len(problems) > len(shown) {
		msg += fmt.Sprintf("; and %d more", len(problems)-len(shown))
	}
	return msg
}
