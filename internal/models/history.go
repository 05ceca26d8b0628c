package models

import (
	"time"

	"github.com/mmynk/limbo/internal/money"
)

// Purchase records one seller's side of a checkout.
type Purchase struct {
	EventID     string
	ItemName    string
	Date        time.Time
	StockDate   time.Time
	ExpiryDate  time.Time
	Buyer       string
	Seller      string
	ProfitSplit money.Fraction
	PriceEach   money.Money
	Count       int64
	Tax         money.Fraction
}

// Total is what the buyer paid for the whole checkout.
func (p *Purchase) Total() money.Money { return p.PriceEach.Mul(p.Count) }

// Transfer records money moved between two accounts.
type Transfer struct {
	EventID  string
	Date     time.Time
	Sender   string
	Receiver string
	Amount   money.Money
}

// BalanceChange records a deposit (positive) or withdrawal (negative).
type BalanceChange struct {
	EventID string
	Date    time.Time
	Account string
	Amount  money.Money
}

// Stocking records one seller's view of a change in an item's count.
// OldCount is 0 when the item was first stocked.
type Stocking struct {
	EventID     string
	ItemName    string
	Date        time.Time
	StockDate   time.Time
	ExpiryDate  time.Time
	Seller      string
	ProfitSplit money.Fraction
	PriceEach   money.Money
	OldCount    int64
	NewCount    int64
	Tax         money.Fraction
}

// Donation records cash entering the store from outside any account.
type Donation struct {
	EventID string
	Date    time.Time
	Amount  money.Money
}

// ExpiryEvent records one seller's side of an item removed by the expiry
// sweep. Count is how many units were discarded.
type ExpiryEvent struct {
	EventID     string
	ItemName    string
	Date        time.Time
	StockDate   time.Time
	ExpiryDate  time.Time
	Seller      string
	ProfitSplit money.Fraction
	PriceEach   money.Money
	Count       int64
	Tax         money.Fraction
}

// History is every row that mentions one account.
type History struct {
	Purchases      []Purchase // as buyer or seller
	Transfers      []Transfer // as sender or receiver
	BalanceChanges []BalanceChange
	Stocking       []Stocking
	ExpiryEvents   []ExpiryEvent
}

// Len is the number of rows in h.
func (h *History) Len() int {
	return len(h.Purchases) + len(h.Transfers) + len(h.BalanceChanges) +
		len(h.Stocking) + len(h.ExpiryEvents)
}
