package calculator

import (
	"fmt"

	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/money"
)

// Share is a seller's requested cut of an item's sale price: either a fixed
// fraction or whatever is left once tax and the fixed shares are taken.
type Share struct {
	Seller    string
	fraction  money.Fraction
	remainder bool
}

// Fixed is a share of exactly f.
func Fixed(seller string, f money.Fraction) Share {
	return Share{Seller: seller, fraction: f}
}

// Remainder is a share that absorbs the slack left by tax and fixed shares.
func Remainder(seller string) Share {
	return Share{Seller: seller, remainder: true}
}

// IsRemainder reports whether the share is resolved at restock time.
func (s Share) IsRemainder() bool { return s.remainder }

// Fraction is the fixed fraction. It is meaningless for a remainder share.
func (s Share) Fraction() money.Fraction { return s.fraction }

// Split is a seller's resolved profit fraction.
type Split struct {
	Seller   string
	Fraction money.Fraction
}

// ResolveSplit turns requested shares into concrete fractions so that tax
// plus every seller's fraction is exactly 1. At most one share may be a
// remainder. The result keeps the order of shares.
func ResolveSplit(shares []Share, tax money.Fraction) ([]Split, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: at least one seller is required", ledger.ErrInvalidSplit)
	}
	if !tax.Valid() {
		return nil, fmt.Errorf("%w: tax %s is outside [0,1]", ledger.ErrInvalidSplit, tax)
	}

	seen := make(map[string]bool, len(shares))
	remainderAt := -1
	sum := tax
	for i, s := range shares {
		if s.Seller == "" {
			return nil, fmt.Errorf("%w: seller name is empty", ledger.ErrInvalidSplit)
		}
		if seen[s.Seller] {
			return nil, fmt.Errorf("%w: seller %q listed twice", ledger.ErrInvalidSplit, s.Seller)
		}
		seen[s.Seller] = true

		if s.remainder {
			if remainderAt >= 0 {
				return nil, fmt.Errorf("%w: only one seller may take the remainder", ledger.ErrInvalidSplit)
			}
			remainderAt = i
			continue
		}
		if !s.fraction.Valid() {
			return nil, fmt.Errorf("%w: fraction %s for %q is outside [0,1]", ledger.ErrInvalidSplit, s.fraction, s.Seller)
		}
		sum = sum.Add(s.fraction)
	}

	rest := money.Whole.Sub(sum)
	if remainderAt < 0 && !rest.IsZero() {
		return nil, fmt.Errorf("%w: tax and shares total %s", ledger.ErrInvalidSplit, sum)
	}
	if rest.IsNegative() {
		return nil, fmt.Errorf("%w: tax and shares total %s, nothing left for %q",
			ledger.ErrInvalidSplit, sum, shares[remainderAt].Seller)
	}

	splits := make([]Split, len(shares))
	for i, s := range shares {
		f := s.fraction
		if i == remainderAt {
			f = rest
		}
		splits[i] = Split{Seller: s.Seller, Fraction: f}
	}
	return splits, nil
}

// Credit is the amount owed to one seller for a sale.
type Credit struct {
	Seller string
	Amount money.Money
}

// TotalPrice is what a buyer paid for count units of a recorded sale.
func TotalPrice(unitPrice money.Money, count int64) money.Money {
	return unitPrice.Mul(count)
}

// CheckoutTotal is TotalPrice for a sale not yet made. Totals outside the
// range of a single amount fail with ledger.ErrInvalidAmount.
func CheckoutTotal(unitPrice money.Money, count int64) (money.Money, error) {
	return unitPrice.CheckedMul(count)
}

// SellerCredits divides a sale's total among its sellers. Each credit is
// rounded down, so the credits sum to at most total minus the tax portion.
func SellerCredits(total money.Money, splits []Split) []Credit {
	credits := make([]Credit, len(splits))
	for i, s := range splits {
		credits[i] = Credit{Seller: s.Seller, Amount: total.MulFraction(s.Fraction)}
	}
	return credits
}
