package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/payment-tracker/internal/domain"
	"github.com/segyhp/payment-tracker/internal/repository"
	customError "github.com/segyhp/payment-tracker/pkg/errors"
	"github.com/segyhp/payment-tracker/pkg/utils"
)

// StatusEngine owns the payment status rules: the due-date sweep, the
// evidence gate on completion and the checks applied to new payments.
type StatusEngine struct {
	payments repository.PaymentRepository
	evidence repository.EvidenceRepository
}

func NewStatusEngine(payments repository.PaymentRepository, evidence repository.EvidenceRepository) *StatusEngine {
	return &StatusEngine{
		payments: payments,
		evidence: evidence,
	}
}

// DeriveTotalDue returns due * (1 - discount/100) * (1 + tax/100) rounded to
// cents. Percentages outside [0,100] are rejected.
func DeriveTotalDue(due decimal.Decimal, discount, tax decimal.NullDecimal) (decimal.Decimal, error) {
	if err := checkPercents(discount, tax); err != nil {
		return decimal.Zero, err
	}
	if due.IsNegative() {
		return decimal.Zero, customError.WrapValidation("due_amount must not be negative")
	}
	return utils.CalculateTotalDue(due, discount, tax), nil
}

func checkPercents(discount, tax decimal.NullDecimal) error {
	if !utils.PercentInRange(discount) {
		return customError.WrapValidation("discount_percent must be between 0 and 100")
	}
	if !utils.PercentInRange(tax) {
		return customError.WrapValidation("tax_percent must be between 0 and 100")
	}
	return nil
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// DecideStatus applies the due-date table to one record. The second result
// is false when the stored status must be left alone.
//
//	completed            -> unchanged
//	due before now       -> overdue
//	due on today (UTC)   -> due_now
//	otherwise            -> unchanged
func DecideStatus(due time.Time, status string, now time.Time) (string, bool) {
	if status == domain.PaymentStatusCompleted {
		return status, false
	}

	var next string
	switch {
	case due.Before(now):
		next = domain.PaymentStatusOverdue
	case utils.SameUTCDay(due, now):
		next = domain.PaymentStatusDueNow
	default:
		return status, false
	}

	if next == status {
		return status, false
	}
	return next, true
}

// SweepDueStatuses recomputes the time-dependent status of every payment
// with a due date and persists the changes. Records are written one by one;
// a concurrent reader may see a partially swept store.
func (e *StatusEngine) SweepDueStatuses(ctx context.Context, now time.Time) (int, error) {
	candidates, err := e.payments.GetDueCandidates(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	updated := 0
	for _, c := range candidates {
		next, change := DecideStatus(c.PayeeDueDate, c.PayeePaymentStatus, now)
		if !change {
			continue
		}

		// The write only lands if the record is still not completed, so an
		// evidence upload racing the sweep wins.
		changed, err := e.payments.UpdateStatusUnlessCompleted(ctx, c.ID, next)
		if err != nil {
			return updated, customError.WrapDatabaseError(err)
		}
		if changed {
			updated++
		}
	}

	return updated, nil
}

// CanComplete reports whether any evidence references the payment.
func (e *StatusEngine) CanComplete(ctx context.Context, paymentID string) (bool, error) {
	exists, err := e.evidence.ExistsForPayment(ctx, paymentID)
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}
	return exists, nil
}

// ValidateNewPayment enforces the creation rules for API-created payments.
func ValidateNewPayment(p *domain.Payment, now time.Time) error {
	if p.PayeePaymentStatus != domain.PaymentStatusPending {
		return customError.WrapValidation("payee_payment_status must be pending when creating a payment")
	}
	if p.PayeeDueDate.Before(now) {
		return customError.WrapValidation("payee_due_date must not be in the past")
	}
	return checkPercents(p.DiscountPercent, p.TaxPercent)
}

// ValidateHistoricalPayment is the relaxed rule set for imported history:
// any status and due date, but percentages must still be usable.
func ValidateHistoricalPayment(p *domain.Payment, _ time.Time) error {
	return checkPercents(p.DiscountPercent, p.TaxPercent)
}
