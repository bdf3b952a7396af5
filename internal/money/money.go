// Package money implements fixed-point currency amounts stored as integer cents.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount of currency in cents.
type Money int64

// Zero is the zero amount.
const Zero Money = 0

// Round2 rounds x half away from zero to two decimal places. The input is
// taken at its shortest decimal representation, so values such as 1.005 that
// are stored slightly below the midpoint as binary doubles still round up.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// FromFloat converts a float amount, rounded with Round2, into Money.
func FromFloat(x float64) Money {
	return fromDecimal(decimal.NewFromFloat(x))
}

// FromCents builds Money from a cent count.
func FromCents(cents int64) Money {
	return Money(cents)
}

// Parse reads a decimal string such as "19.99".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse money %q: %w", s, err)
	}
	return fromDecimal(d), nil
}

func fromDecimal(d decimal.Decimal) Money {
	return Money(d.Round(2).Shift(2).IntPart())
}

// Add returns the sum of m and every amount in others.
func (m Money) Add(others ...Money) Money {
	sum := m
	for _, o := range others {
		sum += o
	}
	return sum
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return m - o
}

// Multiply returns the line total of quantity units priced at unit.
func Multiply(unit Money, quantity int) Money {
	return unit * Money(quantity)
}

// MulRate scales m by rate and rounds the result half away from zero to the cent.
func (m Money) MulRate(rate float64) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart())
}

// Cents returns the amount in cents.
func (m Money) Cents() int64 {
	return int64(m)
}

// Float returns the amount in currency units.
func (m Money) Float() float64 {
	return m.decimal().InexactFloat64()
}

// IsZero reports whether m is zero.
func (m Money) IsZero() bool {
	return m == 0
}

// String formats m with exactly two decimals.
func (m Money) String() string {
	return m.decimal().StringFixed(2)
}

func (m Money) decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// MarshalJSON encodes m as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	*m = fromDecimal(d)
	return nil
}
