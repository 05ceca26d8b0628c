package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/limbo/internal/ledger"
)

// Fraction is an exact decimal in [0,1] used for tax rates and profit splits.
type Fraction struct {
	d decimal.Decimal
}

var (
	NoFraction = Fraction{}
	Whole      = Fraction{d: decimal.NewFromInt(1)}
)

// ParseFraction reads a decimal such as "0.45". Values outside [0,1] are
// rejected.
func ParseFraction(text string) (Fraction, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return NoFraction, fmt.Errorf("%w: %q is not a fraction", ledger.ErrInvalidSplit, text)
	}
	f := Fraction{d: d}
	if !f.Valid() {
		return NoFraction, fmt.Errorf("%w: %q is outside [0,1]", ledger.ErrInvalidSplit, text)
	}
	return f, nil
}

// MustFraction is ParseFraction for literals known to be valid.
func MustFraction(text string) Fraction {
	f, err := ParseFraction(text)
	if err != nil {
		panic(err)
	}
	return f
}

// FractionOf wraps a decimal without range checks.
func FractionOf(d decimal.Decimal) Fraction { return Fraction{d: d} }

// Valid reports whether f lies in [0,1].
func (f Fraction) Valid() bool {
	return !f.d.IsNegative() && f.d.LessThanOrEqual(decimal.NewFromInt(1))
}

func (f Fraction) Add(g Fraction) Fraction  { return Fraction{d: f.d.Add(g.d)} }
func (f Fraction) Sub(g Fraction) Fraction  { return Fraction{d: f.d.Sub(g.d)} }
func (f Fraction) Equal(g Fraction) bool    { return f.d.Equal(g.d) }
func (f Fraction) IsZero() bool             { return f.d.IsZero() }
func (f Fraction) IsNegative() bool         { return f.d.IsNegative() }
func (f Fraction) Decimal() decimal.Decimal { return f.d }

// String is the storage and wire encoding, e.g. "0.45".
func (f Fraction) String() string { return f.d.String() }

// Percent renders f as a percentage for humans.
func (f Fraction) Percent() string { return f.d.Shift(2).String() + "%" }
