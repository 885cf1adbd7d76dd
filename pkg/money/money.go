// Package money converts between the decimal amount strings used on the wire
// (e.g. "19.99") and the int64 cent values used internally. All arithmetic in
// the service happens on cents; decimals exist only at the API boundary.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var centsFactor = decimal.NewFromInt(100)

// ParseCents parses a decimal amount string into cents. Inputs with more
// than two fractional digits or a negative value are rejected.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q must not be negative", s)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return d.Mul(centsFactor).IntPart(), nil
}

// FormatCents renders cents as a decimal string with exactly two decimal
// places, e.g. 1999 -> "19.99" and 500 -> "5.00".
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(centsFactor).StringFixed(2)
}

// MustParseCents is ParseCents for statically known amounts in tests and
// fixtures. It panics on invalid input.
func MustParseCents(s string) int64 {
	c, err := ParseCents(s)
	if err != nil {
		panic(err)
	}
	return c
}
