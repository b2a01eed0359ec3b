package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount of money in minor units (1/100 of the currency unit).
type Cents int64

// ParseCents parses a decimal string such as "12.5" or "3" into Cents.
// Amounts with more than two fractional digits or negative amounts are rejected.
func ParseCents(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q is not a number", ErrInvalidInput, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	shifted := d.Shift(2)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: price %q has more than two decimal places", ErrInvalidInput, s)
	}
	if shifted.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: price %q is too large", ErrInvalidInput, s)
	}
	return Cents(shifted.IntPart()), nil
}

// Decimal returns the amount in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount with exactly two decimal places, e.g. "12.50".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Times multiplies the amount by a quantity. ok is false on overflow.
func (c Cents) Times(qty int64) (product Cents, ok bool) {
	if c == 0 || qty == 0 {
		return 0, true
	}
	if qty < 0 || c < 0 || int64(c) > math.MaxInt64/qty {
		return 0, false
	}
	return Cents(int64(c) * qty), true
}

// Plus adds two amounts. ok is false on overflow.
func (c Cents) Plus(other Cents) (sum Cents, ok bool) {
	if other > 0 && c > math.MaxInt64-other {
		return 0, false
	}
	return c + other, true
}
