// Package money provides the fixed-point types used for every balance, price
// and profit split. Money counts whole cents; Fraction is an exact decimal.
// Neither ever passes through a binary float.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/mmynk/limbo/internal/ledger"
)

// Currency is the only currency the store deals in.
const Currency = gomoney.USD

// maxCents bounds parsed amounts well inside int64.
var maxCents = decimal.New(1, 15)

// Money is an amount of cents. The zero value is $0.00.
type Money struct {
	cents int64
}

// Cents returns an amount of the given number of cents.
func Cents(c int64) Money { return Money{cents: c} }

// Zero is $0.00.
var Zero = Money{}

// Parse reads a decimal amount such as "12.34", "-3" or "$0.5". Digits past
// the cent are rounded down.
func Parse(text string) (Money, error) {
	s := strings.TrimSpace(text)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return Zero, fmt.Errorf("%w: %q", ledger.ErrInvalidAmount, text)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return Zero, fmt.Errorf("%w: %q", ledger.ErrInvalidAmount, text)
	}
	if neg {
		d = d.Neg()
	}
	if d.Shift(2).Abs().GreaterThanOrEqual(maxCents) {
		return Zero, fmt.Errorf("%w: %q is out of range", ledger.ErrInvalidAmount, text)
	}
	return RoundDown(d), nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(text string) Money {
	m, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return m
}

// RoundDown truncates a raw decimal amount of dollars toward zero at the cent.
func RoundDown(d decimal.Decimal) Money {
	return Money{cents: d.Shift(2).Truncate(0).IntPart()}
}

func (m Money) Cents() int64     { return m.cents }
func (m Money) IsZero() bool     { return m.cents == 0 }
func (m Money) IsPositive() bool { return m.cents > 0 }
func (m Money) IsNegative() bool { return m.cents < 0 }
func (m Money) Neg() Money       { return Money{cents: -m.cents} }
func (m Money) Add(n Money) Money {
	return Money{cents: m.cents + n.cents}
}
func (m Money) Sub(n Money) Money {
	return Money{cents: m.cents - n.cents}
}

// Mul multiplies by a whole count. Exact.
func (m Money) Mul(count int64) Money { return Money{cents: m.cents * count} }

// CheckedMul is Mul for untrusted counts. It fails with
// ledger.ErrInvalidAmount when the product falls outside the range Parse
// accepts.
func (m Money) CheckedMul(count int64) (Money, error) {
	p := decimal.NewFromInt(m.cents).Mul(decimal.NewFromInt(count))
	if p.Abs().GreaterThanOrEqual(maxCents) {
		return Zero, fmt.Errorf("%w: %s × %d is out of range", ledger.ErrInvalidAmount, m.Plain(), count)
	}
	return Money{cents: p.IntPart()}, nil
}

// CheckedAdd is Add that fails with ledger.ErrInvalidAmount instead of
// wrapping around.
func (m Money) CheckedAdd(n Money) (Money, error) {
	sum := m.cents + n.cents
	if (n.cents > 0 && sum < m.cents) || (n.cents < 0 && sum > m.cents) {
		return Zero, fmt.Errorf("%w: %s + %s is out of range", ledger.ErrInvalidAmount, m.Plain(), n.Plain())
	}
	return Money{cents: sum}, nil
}

// MulFraction returns the share of m given by f, rounded down to the cent.
// Shares of one total taken this way may sum to less than the total.
func (m Money) MulFraction(f Fraction) Money {
	return Money{cents: decimal.NewFromInt(m.cents).Mul(f.d).Truncate(0).IntPart()}
}

// Equal reports whether m and n are the same amount.
func (m Money) Equal(n Money) bool { return m.cents == n.cents }

// Cmp returns -1, 0 or 1.
func (m Money) Cmp(n Money) int {
	switch {
	case m.cents < n.cents:
		return -1
	case m.cents > n.cents:
		return 1
	}
	return 0
}

// Decimal returns the amount in dollars.
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.cents, -2) }

// Plain is the storage and wire encoding, e.g. "-3.00".
func (m Money) Plain() string { return m.Decimal().StringFixed(2) }

// String is the display form, e.g. "-$3.00".
func (m Money) String() string { return gomoney.New(m.cents, Currency).Display() }

func (m Money) MarshalJSON() ([]byte, error) { return json.Marshal(m.Plain()) }

func (m *Money) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ledger.ErrInvalidAmount, b)
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Sum adds up amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
