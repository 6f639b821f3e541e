package validation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segyhp/payment-tracker/internal/domain"
	customError "github.com/segyhp/payment-tracker/pkg/errors"
)

func validRequest() domain.CreatePaymentRequest {
	return domain.CreatePaymentRequest{
		PayeeFirstName:     "Ada",
		PayeeLastName:      "Lovelace",
		PayeePaymentStatus: domain.PaymentStatusPending,
		PayeeAddedDateUTC:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PayeeDueDate:       time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PayeeAddressLine1:  "12 St James's Square",
		PayeeCity:          "London",
		PayeeCountry:       "GB",
		PayeePostalCode:    "SW1Y 4JH",
		PayeePhoneNumber:   "+442071234567",
		PayeeEmail:         "ada@example.com",
		Currency:           "GBP",
		DueAmount:          decimal.NewFromInt(100),
	}
}

func TestValidator_CreatePaymentRequest(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(r *domain.CreatePaymentRequest)
		expectedError bool
		errorContains string
	}{
		{
			name:   "valid request",
			mutate: func(r *domain.CreatePaymentRequest) {},
		},
		{
			name:   "phone without plus is accepted",
			mutate: func(r *domain.CreatePaymentRequest) { r.PayeePhoneNumber = "442071234567" },
		},
		{
			name:          "missing first name",
			mutate:        func(r *domain.CreatePaymentRequest) { r.PayeeFirstName = "" },
			expectedError: true,
			errorContains: "payee_first_name is required",
		},
		{
			name:          "unknown status",
			mutate:        func(r *domain.CreatePaymentRequest) { r.PayeePaymentStatus = "paid" },
			expectedError: true,
			errorContains: "payee_payment_status must be one of",
		},
		{
			name:          "unknown country",
			mutate:        func(r *domain.CreatePaymentRequest) { r.PayeeCountry = "XX" },
			expectedError: true,
			errorContains: "payee_country",
		},
		{
			name:          "bad currency",
			mutate:        func(r *domain.CreatePaymentRequest) { r.Currency = "POUND" },
			expectedError: true,
			errorContains: "currency must be an ISO 4217 currency code",
		},
		{
			name:          "phone with letters",
			mutate:        func(r *domain.CreatePaymentRequest) { r.PayeePhoneNumber = "+44-20-CALL-ME" },
			expectedError: true,
			errorContains: "payee_phone_number",
		},
		{
			name:          "phone starting with zero",
			mutate:        func(r *domain.CreatePaymentRequest) { r.PayeePhoneNumber = "02071234567" },
			expectedError: true,
			errorContains: "payee_phone_number",
		},
		{
			name:          "bad email",
			mutate:        func(r *domain.CreatePaymentRequest) { r.PayeeEmail = "ada.example.com" },
			expectedError: true,
			errorContains: "payee_email must be a valid email address",
		},
		{
			name:          "negative due amount",
			mutate:        func(r *domain.CreatePaymentRequest) { r.DueAmount = decimal.NewFromInt(-1) },
			expectedError: true,
			errorContains: "due_amount must be greater than or equal to 0",
		},
		{
			name:   "trailing zeros beyond cents are accepted",
			mutate: func(r *domain.CreatePaymentRequest) { r.DueAmount = decimal.RequireFromString("10.500") },
		},
		{
			name:          "due amount finer than cents",
			mutate:        func(r *domain.CreatePaymentRequest) { r.DueAmount = decimal.RequireFromString("10.004") },
			expectedError: true,
			errorContains: "due_amount must have at most 2 decimal places",
		},
		{
			name:   "tax percent finer than cents",
			mutate: func(r *domain.CreatePaymentRequest) {
				r.TaxPercent = decimal.NewNullDecimal(decimal.RequireFromString("12.125"))
			},
			expectedError: true,
			errorContains: "tax_percent must have at most 2 decimal places",
		},
		{
			name:          "missing due date",
			mutate:        func(r *domain.CreatePaymentRequest) { r.PayeeDueDate = time.Time{} },
			expectedError: true,
			errorContains: "payee_due_date is required",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := v.Struct(&req)

			if tt.expectedError {
				assert.Error(t, err)
				assert.True(t, customError.IsValidation(err))
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_UpdatePaymentRequest(t *testing.T) {
	v := New()

	completed := domain.PaymentStatusCompleted
	assert.NoError(t, v.Struct(&domain.UpdatePaymentRequest{PayeePaymentStatus: &completed}))
	assert.NoError(t, v.Struct(&domain.UpdatePaymentRequest{}))

	bogus := "archived"
	err := v.Struct(&domain.UpdatePaymentRequest{PayeePaymentStatus: &bogus})
	assert.True(t, customError.IsValidation(err))

	negative := decimal.NewFromInt(-5)
	err = v.Struct(&domain.UpdatePaymentRequest{DueAmount: &negative})
	assert.True(t, customError.IsValidation(err))
	assert.Contains(t, err.Error(), "due_amount")

	fine := decimal.RequireFromString("7.125")
	err = v.Struct(&domain.UpdatePaymentRequest{DiscountPercent: &fine})
	assert.True(t, customError.IsValidation(err))
	assert.Contains(t, err.Error(), "discount_percent must have at most 2 decimal places")

	empty := ""
	err = v.Struct(&domain.UpdatePaymentRequest{PayeeCity: &empty})
	assert.True(t, customError.IsValidation(err))
}
