// Package core provides the domain types shared by the aggregator, the
// budget resolver and the stores.
//
// This file contains fixed-point money handling. Amounts are held as int64
// cents so that summing many of them never accumulates binary rounding error.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Money is a fixed-point decimal amount in cents.
type Money struct {
	Cents int64
}

// Cents builds a Money from a cent count.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// ParseAmount converts a decimal string to Money with half-up rounding on the
// third fractional digit.
//
// It accepts dot (12.34) and comma (12,34) separators, an optional sign and
// an exponent (1.5e2), which is how JSON numbers from the service may look.
// Zero and negative values are returned as parsed; callers validate.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235
//	ParseAmount("-0.5")   -> -50
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if len(s) > 40 {
		return Money{}, fmt.Errorf("%w: too long", ErrInvalidAmount)
	}
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	r.Mul(r, big.NewRat(100, 1))

	neg := r.Sign() < 0
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()
	// floor((2*num + den) / (2*den)) rounds half away from zero
	q := new(big.Int).Mul(num, big.NewInt(2))
	q.Add(q, den)
	q.Quo(q, new(big.Int).Mul(den, big.NewInt(2)))
	if !q.IsInt64() {
		return Money{}, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	cents := q.Int64()
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// ParseDecimalToCents parses user input for an expense amount. Only strictly
// positive values without an explicit sign are accepted.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	m, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if m.Cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// ParseBudgetAmount parses a budget limit. Zero is a valid budget.
func ParseBudgetAmount(s string) (Money, error) {
	m, err := ParseAmount(s)
	if err != nil {
		return Money{}, NewValidationError("amount", err)
	}
	if err := m.ValidateNonNegative(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool     { return m.Cents == 0 }
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Validate requires a strictly positive amount, as for an expense.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateNonNegative is the rule for budget limits.
func (m Money) ValidateNonNegative() error {
	if m.Cents < 0 {
		return NewValidationError("amount", fmt.Errorf("%w: %s is negative", ErrInvalidAmount, m))
	}
	return nil
}

// Float64 is for display and ratios only; never sum floats.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the amount with two fractional digits, e.g. "-12.05".
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return sign + strconv.FormatInt(c/100, 10) + "." + fmt.Sprintf("%02d", c%100)
}

// MarshalJSON emits a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON reads the number's text directly, never through float64.
// Quoted numbers are tolerated.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*m = Money{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, b)
		}
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Sum adds amounts in cents.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
