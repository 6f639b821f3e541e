package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpdatePaymentRequest is a partial update. Nil fields are left untouched.
// total_due is derived and cannot be set directly.
type UpdatePaymentRequest struct {
	PayeeFirstName       *string          `json:"payee_first_name" validate:"omitempty,min=1"`
	PayeeLastName        *string          `json:"payee_last_name" validate:"omitempty,min=1"`
	PayeePaymentStatus   *string          `json:"payee_payment_status" validate:"omitempty,oneof=pending due_now overdue completed"`
	PayeeAddedDateUTC    *time.Time       `json:"payee_added_date_utc"`
	PayeeDueDate         *time.Time       `json:"payee_due_date"`
	PayeeAddressLine1    *string          `json:"payee_address_line_1" validate:"omitempty,min=1"`
	PayeeAddressLine2    *string          `json:"payee_address_line_2"`
	PayeeCity            *string          `json:"payee_city" validate:"omitempty,min=1"`
	PayeeCountry         *string          `json:"payee_country" validate:"omitempty,iso3166_1_alpha2"`
	PayeeProvinceOrState *string          `json:"payee_province_or_state"`
	PayeePostalCode      *string          `json:"payee_postal_code" validate:"omitempty,min=1"`
	PayeePhoneNumber     *string          `json:"payee_phone_number" validate:"omitempty,payee_phone"`
	PayeeEmail           *string          `json:"payee_email" validate:"omitempty,email"`
	Currency             *string          `json:"currency" validate:"omitempty,iso4217"`
	DiscountPercent      *decimal.Decimal `json:"discount_percent"`
	TaxPercent           *decimal.Decimal `json:"tax_percent"`
	DueAmount            *decimal.Decimal `json:"due_amount" validate:"omitempty,gte=0"`
}

// Fields returns the set fields keyed by their stored field name.
func (r *UpdatePaymentRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})

	setString := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	setTime := func(name string, v *time.Time) {
		if v != nil {
			fields[name] = v.UTC()
		}
	}
	setDecimal := func(name string, v *decimal.Decimal) {
		if v != nil {
			fields[name] = *v
		}
	}

	setString("payee_first_name", r.PayeeFirstName)
	setString("payee_last_name", r.PayeeLastName)
	setString("payee_payment_status", r.PayeePaymentStatus)
	setTime("payee_added_date_utc", r.PayeeAddedDateUTC)
	setTime("payee_due_date", r.PayeeDueDate)
	setString("payee_address_line_1", r.PayeeAddressLine1)
	setString("payee_address_line_2", r.PayeeAddressLine2)
	setString("payee_city", r.PayeeCity)
	setString("payee_country", r.PayeeCountry)
	setString("payee_province_or_state", r.PayeeProvinceOrState)
	setString("payee_postal_code", r.PayeePostalCode)
	setString("payee_phone_number", r.PayeePhoneNumber)
	setString("payee_email", r.PayeeEmail)
	setString("currency", r.Currency)
	setDecimal("discount_percent", r.DiscountPercent)
	setDecimal("tax_percent", r.TaxPercent)
	setDecimal("due_amount", r.DueAmount)

	return fields
}

// SetsStatus reports whether the update changes the status to status.
func (r *UpdatePaymentRequest) SetsStatus(status string) bool {
	return r.PayeePaymentStatus != nil && *r.PayeePaymentStatus == status
}
