package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateTotalDue calculates the amount owed after discount and tax.
// Formula: due * (1 - discount/100) * (1 + tax/100)
// Absent percentages count as zero. The result is rounded to 2 decimal
// places, half away from zero.
func CalculateTotalDue(dueAmount decimal.Decimal, discountPercent, taxPercent decimal.NullDecimal) decimal.Decimal {
	discount := decimal.Zero
	if discountPercent.Valid {
		discount = discountPercent.Decimal
	}
	tax := decimal.Zero
	if taxPercent.Valid {
		tax = taxPercent.Decimal
	}

	discountFactor := decimal.NewFromInt(1).Sub(discount.Div(hundred))
	taxFactor := decimal.NewFromInt(1).Add(tax.Div(hundred))

	return dueAmount.Mul(discountFactor).Mul(taxFactor).Round(2)
}

// PercentInRange reports whether an optional percentage lies in [0,100].
// An absent percentage is in range.
func PercentInRange(p decimal.NullDecimal) bool {
	if !p.Valid {
		return true
	}
	return !p.Decimal.IsNegative() && p.Decimal.LessThanOrEqual(hundred)
}

// FitsCents reports whether d has no digits beyond the second decimal place.
func FitsCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// SameUTCDay reports whether a and b fall on the same calendar day in UTC.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// NullPercent wraps a percentage for CalculateTotalDue.
func NullPercent(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

// DecimalFromString parses a decimal, trimming surrounding spaces.
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}
