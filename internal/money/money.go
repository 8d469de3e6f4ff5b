// Package money converts between the decimal amounts admins type and the
// integer minor units the backend stores.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ToMinorUnits parses a decimal currency amount ("19.99") into integer minor
// units (1999). Unparseable or negative input yields 0 rather than an error,
// so form handling falls through to the "price must be positive" rule instead
// of surfacing a parse failure.
func ToMinorUnits(amount string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil || d.IsNegative() {
		return 0
	}
	return d.Shift(2).Round(0).IntPart()
}

// FromMinorUnits renders minor units as a two-decimal amount for form display.
func FromMinorUnits(minorUnits int64) string {
	return decimal.New(minorUnits, -2).StringFixed(2)
}
