package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusDueNow    = "due_now"
	PaymentStatusOverdue   = "overdue"
	PaymentStatusCompleted = "completed"
)

// ValidPaymentStatus reports whether s is one of the known statuses.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusDueNow, PaymentStatusOverdue, PaymentStatusCompleted:
		return true
	}
	return false
}

// Payment represents a payment owed by a payee
type Payment struct {
	ID                   string              `json:"id" db:"id"`
	PayeeFirstName       string              `json:"payee_first_name" db:"payee_first_name"`
	PayeeLastName        string              `json:"payee_last_name" db:"payee_last_name"`
	PayeePaymentStatus   string              `json:"payee_payment_status" db:"payee_payment_status"`
	PayeeAddedDateUTC    time.Time           `json:"payee_added_date_utc" db:"payee_added_date_utc"`
	PayeeDueDate         time.Time           `json:"payee_due_date" db:"payee_due_date"`
	PayeeAddressLine1    string              `json:"payee_address_line_1" db:"payee_address_line_1"`
	PayeeAddressLine2    string              `json:"payee_address_line_2" db:"payee_address_line_2"`
	PayeeCity            string              `json:"payee_city" db:"payee_city"`
	PayeeCountry         string              `json:"payee_country" db:"payee_country"`
	PayeeProvinceOrState string              `json:"payee_province_or_state" db:"payee_province_or_state"`
	PayeePostalCode      string              `json:"payee_postal_code" db:"payee_postal_code"`
	PayeePhoneNumber     string              `json:"payee_phone_number" db:"payee_phone_number"`
	PayeeEmail           string              `json:"payee_email" db:"payee_email"`
	Currency             string              `json:"currency" db:"currency"`
	DiscountPercent      decimal.NullDecimal `json:"discount_percent" db:"discount_percent"`
	TaxPercent           decimal.NullDecimal `json:"tax_percent" db:"tax_percent"`
	DueAmount            decimal.Decimal     `json:"due_amount" db:"due_amount"`
	TotalDue             decimal.Decimal     `json:"total_due" db:"total_due"`
}

// IsCompleted reports whether the payment has reached its terminal status.
func (p *Payment) IsCompleted() bool {
	return p.PayeePaymentStatus == PaymentStatusCompleted
}

// DueCandidate is the projection the due-date sweep works on.
type DueCandidate struct {
	ID                 string    `db:"id"`
	PayeeDueDate       time.Time `db:"payee_due_date"`
	PayeePaymentStatus string    `db:"payee_payment_status"`
}

// DTOs for requests and responses

// CreatePaymentRequest is the shape-validated input for a new payment.
// Batch import rows decode into the same type.
type CreatePaymentRequest struct {
	PayeeFirstName       string              `json:"payee_first_name" validate:"required"`
	PayeeLastName        string              `json:"payee_last_name" validate:"required"`
	PayeePaymentStatus   string              `json:"payee_payment_status" validate:"required,oneof=pending due_now overdue completed"`
	PayeeAddedDateUTC    time.Time           `json:"payee_added_date_utc" validate:"required"`
	PayeeDueDate         time.Time           `json:"payee_due_date" validate:"required"`
	PayeeAddressLine1    string              `json:"payee_address_line_1" validate:"required"`
	PayeeAddressLine2    string              `json:"payee_address_line_2"`
	PayeeCity            string              `json:"payee_city" validate:"required"`
	PayeeCountry         string              `json:"payee_country" validate:"required,iso3166_1_alpha2"`
	PayeeProvinceOrState string              `json:"payee_province_or_state"`
	PayeePostalCode      string              `json:"payee_postal_code" validate:"required"`
	PayeePhoneNumber     string              `json:"payee_phone_number" validate:"required,payee_phone"`
	PayeeEmail           string              `json:"payee_email" validate:"required,email"`
	Currency             string              `json:"currency" validate:"required,iso4217"`
	DiscountPercent      decimal.NullDecimal `json:"discount_percent"`
	TaxPercent           decimal.NullDecimal `json:"tax_percent"`
	DueAmount            decimal.Decimal     `json:"due_amount" validate:"gte=0"`
}

// ToPayment copies the request into a Payment without an ID or total.
func (r *CreatePaymentRequest) ToPayment() *Payment {
	return &Payment{
		PayeeFirstName:       r.PayeeFirstName,
		PayeeLastName:        r.PayeeLastName,
		PayeePaymentStatus:   r.PayeePaymentStatus,
		PayeeAddedDateUTC:    r.PayeeAddedDateUTC.UTC(),
		PayeeDueDate:         r.PayeeDueDate.UTC(),
		PayeeAddressLine1:    r.PayeeAddressLine1,
		PayeeAddressLine2:    r.PayeeAddressLine2,
		PayeeCity:            r.PayeeCity,
		PayeeCountry:         r.PayeeCountry,
		PayeeProvinceOrState: r.PayeeProvinceOrState,
		PayeePostalCode:      r.PayeePostalCode,
		PayeePhoneNumber:     r.PayeePhoneNumber,
		PayeeEmail:           r.PayeeEmail,
		Currency:             r.Currency,
		DiscountPercent:      r.DiscountPercent,
		TaxPercent:           r.TaxPercent,
		DueAmount:            r.DueAmount,
	}
}

type CreatePaymentResponse struct {
	PaymentID string `json:"payment_id"`
}

// DeleteResult reports a payment deletion and how much evidence went with it.
type DeleteResult struct {
	Deleted         bool  `json:"deleted"`
	EvidenceDeleted int64 `json:"evidence_deleted"`
}
