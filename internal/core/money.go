// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Parsing, rounding and the wire
// representation go through shopspring/decimal so that no float
// arithmetic ever touches a stored value.
package core

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// maxCents keeps Cents*100 style arithmetic well inside int64.
const maxCents = int64(1<<63-1) / 100

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a user-typed decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to whole cents. Empty input yields ErrMissingAmount; anything that is
// not a positive number yields ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents
//	ParseAmount("0.004")  -> ErrInvalidAmount (rounds to zero)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrMissingAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// MoneyFromDecimal rounds d half-up to cents.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Cents builds Money from a cent count.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// Decimal returns the exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 returns the value for chart output only. Never use it for arithmetic.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// Add saturates at the int64 bounds instead of wrapping.
func (m Money) Add(o Money) Money {
	sum := m.Cents + o.Cents
	switch {
	case o.Cents > 0 && sum < m.Cents:
		sum = math.MaxInt64
	case o.Cents < 0 && sum > m.Cents:
		sum = math.MinInt64
	}
	return Money{Cents: sum}
}

// Sub saturates like Add.
func (m Money) Sub(o Money) Money {
	diff := m.Cents - o.Cents
	switch {
	case o.Cents > 0 && diff > m.Cents:
		diff = math.MinInt64
	case o.Cents < 0 && diff < m.Cents:
		diff = math.MaxInt64
	}
	return Money{Cents: diff}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Compare returns -1, 0 or +1.
func (m Money) Compare(o Money) int {
	switch {
	case m.Cents < o.Cents:
		return -1
	case m.Cents > o.Cents:
		return 1
	}
	return 0
}

// String renders the plain decimal ("1234.5"), as typed into forms.
func (m Money) String() string {
	return m.Decimal().String()
}

// Fixed renders exactly two fraction digits ("1234.50").
func (m Money) Fixed() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return fmt.Errorf("decode amount %s: %w", d, err)
	}
	*m = v
	return nil
}

// MarshalYAML writes the fixed two-digit form.
func (m Money) MarshalYAML() (any, error) {
	return m.Fixed(), nil
}
