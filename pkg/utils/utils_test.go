package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalDue(t *testing.T) {
	tests := []struct {
		name     string
		due      decimal.Decimal
		discount decimal.NullDecimal
		tax      decimal.NullDecimal
		expected string
	}{
		{
			name:     "discount and tax",
			due:      decimal.NewFromInt(100),
			discount: NullPercent(10),
			tax:      NullPercent(5),
			expected: "94.5", // 100 * 0.90 * 1.05
		},
		{
			name:     "no discount no tax",
			due:      decimal.RequireFromString("250.40"),
			expected: "250.4",
		},
		{
			name:     "tax only",
			due:      decimal.NewFromInt(200),
			tax:      NullPercent(13),
			expected: "226",
		},
		{
			name:     "full discount",
			due:      decimal.NewFromInt(999),
			discount: NullPercent(100),
			tax:      NullPercent(20),
			expected: "0",
		},
		{
			name:     "rounds half away from zero",
			due:      decimal.RequireFromString("10.01"),
			discount: NullPercent(50),
			expected: "5.01", // 5.005
		},
		{
			name:     "rounds down below half",
			due:      decimal.RequireFromString("33.33"),
			tax:      NullPercent(7),
			expected: "35.66", // 35.6631
		},
		{
			name:     "zero amount",
			due:      decimal.Zero,
			discount: NullPercent(15),
			tax:      NullPercent(15),
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateTotalDue(tt.due, tt.discount, tt.tax)
			assert.True(t, result.Equal(decimal.RequireFromString(tt.expected)),
				"Expected %s, but got %s", tt.expected, result)
			assert.LessOrEqual(t, -result.Exponent(), int32(2))
		})
	}
}

func TestCalculateTotalDueIsDeterministic(t *testing.T) {
	due := decimal.RequireFromString("1234.567")
	first := CalculateTotalDue(due, NullPercent(12.5), NullPercent(8.25))
	for i := 0; i < 100; i++ {
		assert.True(t, first.Equal(CalculateTotalDue(due, NullPercent(12.5), NullPercent(8.25))))
	}
}

func TestPercentInRange(t *testing.T) {
	assert.True(t, PercentInRange(decimal.NullDecimal{}))
	assert.True(t, PercentInRange(NullPercent(0)))
	assert.True(t, PercentInRange(NullPercent(100)))
	assert.True(t, PercentInRange(NullPercent(42.5)))
	assert.False(t, PercentInRange(NullPercent(-0.01)))
	assert.False(t, PercentInRange(NullPercent(100.01)))
}

func TestSameUTCDay(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	plusFive := time.FixedZone("UTC+5", 5*60*60)

	tests := []struct {
		name     string
		a        time.Time
		b        time.Time
		expected bool
	}{
		{"same instant", base, base, true},
		{"start of day", base, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{"end of day", base, time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC), true},
		{"previous day", base, time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC), false},
		{"next day", base, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), false},
		// 2024-03-11 02:00 at UTC+5 is 2024-03-10 21:00 UTC
		{"offset zone compared in UTC", base, time.Date(2024, 3, 11, 2, 0, 0, 0, plusFive), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SameUTCDay(tt.a, tt.b))
		})
	}
}

func TestDecimalFromString(t *testing.T) {
	d, err := DecimalFromString(" 35.66 ")
	assert.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("35.66")))

	_, err = DecimalFromString("12,5")
	assert.Error(t, err)
}

func TestFitsCents(t *testing.T) {
	for _, s := range []string{"10", "10.5", "10.50", "10.500", "-0.01"} {
		assert.True(t, FitsCents(decimal.RequireFromString(s)), s)
	}
	for _, s := range []string{"10.004", "0.001", "12.125"} {
		assert.False(t, FitsCents(decimal.RequireFromString(s)), s)
	}
}
