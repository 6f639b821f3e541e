package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/payment-tracker/internal/domain"
	"github.com/segyhp/payment-tracker/pkg/utils"
)

// Row is one parsed batch line. Line is the 1-based line number in the file.
type Row struct {
	Line    int
	Request *domain.CreatePaymentRequest
}

// dateLayouts are tried in order. Values without an offset are UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type columnSetter func(r *domain.CreatePaymentRequest, value string) error

func stringColumn(set func(r *domain.CreatePaymentRequest, v string)) columnSetter {
	return func(r *domain.CreatePaymentRequest, value string) error {
		set(r, value)
		return nil
	}
}

func timeColumn(set func(r *domain.CreatePaymentRequest, v time.Time)) columnSetter {
	return func(r *domain.CreatePaymentRequest, value string) error {
		if value == "" {
			return nil
		}
		t, err := parseDate(value)
		if err != nil {
			return err
		}
		set(r, t)
		return nil
	}
}

// Batch amounts and percentages are rounded to the stored two decimal places
// on parse, so total_due is derived from the values that end up stored.
func percentColumn(set func(r *domain.CreatePaymentRequest, v decimal.NullDecimal)) columnSetter {
	return func(r *domain.CreatePaymentRequest, value string) error {
		if value == "" {
			set(r, decimal.NullDecimal{})
			return nil
		}
		d, err := utils.DecimalFromString(value)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		set(r, decimal.NewNullDecimal(d.Round(2)))
		return nil
	}
}

var columns = map[string]columnSetter{
	"payee_first_name":        stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeeFirstName = v }),
	"payee_last_name":         stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeeLastName = v }),
	"payee_payment_status":    stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeePaymentStatus = v }),
	"payee_address_line_1":    stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeeAddressLine1 = v }),
	"payee_address_line_2":    stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeeAddressLine2 = v }),
	"payee_city":              stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeeCity = v }),
	"payee_country":           stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeeCountry = v }),
	"payee_province_or_state": stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeeProvinceOrState = v }),
	"payee_postal_code":       stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeePostalCode = v }),
	"payee_phone_number":      stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeePhoneNumber = v }),
	"payee_email":             stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.PayeeEmail = v }),
	"currency":                stringColumn(func(r *domain.CreatePaymentRequest, v string) { r.Currency = v }),
	"payee_added_date_utc":    timeColumn(func(r *domain.CreatePaymentRequest, v time.Time) { r.PayeeAddedDateUTC = v }),
	"payee_due_date":          timeColumn(func(r *domain.CreatePaymentRequest, v time.Time) { r.PayeeDueDate = v }),
	"discount_percent":        percentColumn(func(r *domain.CreatePaymentRequest, v decimal.NullDecimal) { r.DiscountPercent = v }),
	"tax_percent":             percentColumn(func(r *domain.CreatePaymentRequest, v decimal.NullDecimal) { r.TaxPercent = v }),
	"due_amount": func(r *domain.CreatePaymentRequest, value string) error {
		d, err := utils.DecimalFromString(value)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		r.DueAmount = d.Round(2)
		return nil
	},
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a recognised date", value)
}

// ParseCSV reads a header row followed by payment rows. Columns are matched
// by name; unknown columns are ignored. Cell errors are collected per line
// rather than stopping at the first one.
func ParseCSV(r io.Reader) ([]Row, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("batch file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	names := make([]string, len(header))
	setters := make([]columnSetter, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		setters[i] = columns[names[i]]
	}

	var rows []Row
	var problems []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := reader.FieldPos(0)

		req := &domain.CreatePaymentRequest{}
		for i, value := range record {
			if setters[i] == nil {
				continue
			}
			if err := setters[i](req, strings.TrimSpace(value)); err != nil {
				problems = append(problems, fmt.Sprintf("line %d: %s: %v", line, names[i], err))
			}
		}
		rows = append(rows, Row{Line: line, Request: req})
	}

	return rows, problems, nil
}
