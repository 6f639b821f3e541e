// Package validation is the static shape-validation stage: field presence and
// format checks that need no store access. Business rules run afterwards in
// the service layer.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/segyhp/payment-tracker/internal/domain"
	customError "github.com/segyhp/payment-tracker/pkg/errors"
	"github.com/segyhp/payment-tracker/pkg/utils"
)

// phonePattern accepts E.164 numbers with an optional leading plus.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("payee_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(createScale, domain.CreatePaymentRequest{})
	v.RegisterStructValidation(updateScale, domain.UpdatePaymentRequest{})

	return &Validator{validate: v}
}

// Amounts and percentages are stored with two decimal places. Anything finer
// would be rounded by the store after total_due was derived from it.
func createScale(sl validator.StructLevel) {
	r := sl.Current().Interface().(domain.CreatePaymentRequest)
	checkCents(sl, r.DueAmount, "due_amount", "DueAmount")
	if r.DiscountPercent.Valid {
		checkCents(sl, r.DiscountPercent.Decimal, "discount_percent", "DiscountPercent")
	}
	if r.TaxPercent.Valid {
		checkCents(sl, r.TaxPercent.Decimal, "tax_percent", "TaxPercent")
	}
}

func updateScale(sl validator.StructLevel) {
	r := sl.Current().Interface().(domain.UpdatePaymentRequest)
	if r.DueAmount != nil {
		checkCents(sl, *r.DueAmount, "due_amount", "DueAmount")
	}
	if r.DiscountPercent != nil {
		checkCents(sl, *r.DiscountPercent, "discount_percent", "DiscountPercent")
	}
	if r.TaxPercent != nil {
		checkCents(sl, *r.TaxPercent, "tax_percent", "TaxPercent")
	}
}

func checkCents(sl validator.StructLevel, d decimal.Decimal, field, structField string) {
	if !utils.FitsCents(d) {
		sl.ReportError(d, field, structField, "cents", "")
	}
}

// decimalValue lets numeric tags such as gte=0 apply to decimals.
func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := d.Float64()
		return f
	case decimal.NullDecimal:
		if !d.Valid {
			return nil
		}
		f, _ := d.Decimal.Float64()
		return f
	}
	return nil
}

// Struct runs the shape checks on s and returns a validation BusinessError
// naming every failing field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return customError.WrapValidation(err.Error())
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	return customError.WrapValidation(strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "iso3166_1_alpha2":
		return fmt.Sprintf("%s must be an ISO 3166-1 alpha-2 country code", fe.Field())
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", fe.Field())
	case "payee_phone":
		return fmt.Sprintf("%s must be an E.164 phone number", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "cents":
		return fmt.Sprintf("%s must have at most 2 decimal places", fe.Field())
	case "min":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
