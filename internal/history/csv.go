// Package history flattens an account's history rows into one timeline and
// exports it as CSV.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/models"
)

// Header is the first line of every export.
var Header = []string{
	"kind", "date", "event_id", "item", "from", "to",
	"old_count", "count", "price_each", "profit_split", "tax", "amount",
}

// Entry kinds.
const (
	KindPurchase      = "purchase"
	KindTransfer      = "transfer"
	KindBalanceChange = "balance_change"
	KindStocking      = "stocking"
	KindExpiry        = "expiry"
)

// Entry is one history row in a kind-independent shape. Fields that do not
// apply to a kind are empty.
//
// For purchases Amount is the seller's credit; for transfers and balance
// changes it is the amount moved.
type Entry struct {
	Kind        string
	Date        time.Time
	EventID     string
	Item        string
	From        string
	To          string
	OldCount    string
	Count       string
	PriceEach   string
	ProfitSplit string
	Tax         string
	Amount      string
}

// Record returns e in Header order.
func (e Entry) Record() []string {
	return []string{
		e.Kind, e.Date.UTC().Format(time.RFC3339), e.EventID, e.Item, e.From, e.To,
		e.OldCount, e.Count, e.PriceEach, e.ProfitSplit, e.Tax, e.Amount,
	}
}

// Entries merges every row of h into date order.
func Entries(h *models.History) []Entry {
	entries := make([]Entry, 0, h.Len())

	for _, p := range h.Purchases {
		credit := calculator.TotalPrice(p.PriceEach, p.Count).MulFraction(p.ProfitSplit)
		entries = append(entries, Entry{
			Kind: KindPurchase, Date: p.Date, EventID: p.EventID, Item: p.ItemName,
			From: p.Buyer, To: p.Seller, Count: itoa(p.Count),
			PriceEach: p.PriceEach.Plain(), ProfitSplit: p.ProfitSplit.String(), Tax: p.Tax.String(),
			Amount: credit.Plain(),
		})
	}
	for _, t := range h.Transfers {
		entries = append(entries, Entry{
			Kind: KindTransfer, Date: t.Date, EventID: t.EventID,
			From: t.Sender, To: t.Receiver, Amount: t.Amount.Plain(),
		})
	}
	for _, c := range h.BalanceChanges {
		entries = append(entries, Entry{
			Kind: KindBalanceChange, Date: c.Date, EventID: c.EventID,
			To: c.Account, Amount: c.Amount.Plain(),
		})
	}
	for _, s := range h.Stocking {
		entries = append(entries, Entry{
			Kind: KindStocking, Date: s.Date, EventID: s.EventID, Item: s.ItemName,
			To: s.Seller, OldCount: itoa(s.OldCount), Count: itoa(s.NewCount),
			PriceEach: s.PriceEach.Plain(), ProfitSplit: s.ProfitSplit.String(), Tax: s.Tax.String(),
		})
	}
	for _, e := range h.ExpiryEvents {
		entries = append(entries, Entry{
			Kind: KindExpiry, Date: e.Date, EventID: e.EventID, Item: e.ItemName,
			From: e.Seller, Count: itoa(e.Count),
			PriceEach: e.PriceEach.Plain(), ProfitSplit: e.ProfitSplit.String(), Tax: e.Tax.String(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries
}

// WriteCSV writes h as CSV with a header line.
func WriteCSV(w io.Writer, h *models.History) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range Entries(h) {
		if err := cw.Write(e.Record()); err != nil {
			return fmt.Errorf("failed to write history: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
