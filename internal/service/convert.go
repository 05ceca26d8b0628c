package service

import (
	"fmt"
	"strings"

	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/history"
	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/reconcile"
	"github.com/mmynk/limbo/pkg/api"
)

func toAPIAccount(a *models.Account) api.Account {
	return api.Account{
		Name:       a.Name,
		Email:      a.Email,
		Balance:    a.Balance.Plain(),
		ExternalID: a.ExternalID,
		JoinDate:   a.JoinDate,
	}
}

func toAPIItem(l *models.Listing) api.Item {
	sellers := make([]api.SellerShare, len(l.Sellers))
	for i, s := range l.Sellers {
		sellers[i] = api.SellerShare{Seller: s.Seller, Share: s.ProfitSplit.String()}
	}
	return api.Item{
		Name:        l.Item.Name,
		Count:       l.Item.Count,
		UnitPrice:   l.Item.UnitPrice.Plain(),
		Tax:         l.Item.Tax.String(),
		StockDate:   l.Item.StockDate,
		ExpiryDate:  l.Item.ExpiryDate,
		Description: l.Item.Description,
		Sellers:     sellers,
	}
}

func toAPIItems(listings []models.Listing) []api.Item {
	items := make([]api.Item, len(listings))
	for i := range listings {
		items[i] = toAPIItem(&listings[i])
	}
	return items
}

func toAPIHistory(h *models.History) []api.HistoryEntry {
	entries := history.Entries(h)
	out := make([]api.HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = api.HistoryEntry{
			Kind:        e.Kind,
			Date:        e.Date,
			EventID:     e.EventID,
			Item:        e.Item,
			From:        e.From,
			To:          e.To,
			OldCount:    e.OldCount,
			Count:       e.Count,
			PriceEach:   e.PriceEach,
			ProfitSplit: e.ProfitSplit,
			Tax:         e.Tax,
			Amount:      e.Amount,
		}
	}
	return out
}

func toAPIDrifts(drifts []reconcile.Drift) []api.Drift {
	out := make([]api.Drift, len(drifts))
	for i, d := range drifts {
		out[i] = api.Drift{Account: d.Account, Stored: d.Stored.Plain(), Expected: d.Expected.Plain()}
	}
	return out
}

// parseShares reads "remainder" or a decimal fraction for each seller.
func parseShares(in []api.SellerShare) ([]calculator.Share, error) {
	shares := make([]calculator.Share, len(in))
	for i, s := range in {
		if strings.EqualFold(strings.TrimSpace(s.Share), api.RemainderShare) {
			shares[i] = calculator.Remainder(s.Seller)
			continue
		}
		f, err := money.ParseFraction(s.Share)
		if err != nil {
			return nil, fmt.Errorf("seller %q: %w", s.Seller, err)
		}
		shares[i] = calculator.Fixed(s.Seller, f)
	}
	return shares, nil
}

// parseTax treats an empty tax as zero.
func parseTax(s string) (money.Fraction, error) {
	if strings.TrimSpace(s) == "" {
		return money.NoFraction, nil
	}
	return money.ParseFraction(s)
}

func parseDrifts(in []api.Drift) ([]reconcile.Drift, error) {
	drifts := make([]reconcile.Drift, len(in))
	for i, d := range in {
		if d.Account == "" {
			return nil, fmt.Errorf("%w: drift %d names no account", ledger.ErrInvalidAccount, i)
		}
		stored, err := money.Parse(d.Stored)
		if err != nil {
			return nil, fmt.Errorf("drift for %s: %w", d.Account, err)
		}
		expected, err := money.Parse(d.Expected)
		if err != nil {
			return nil, fmt.Errorf("drift for %s: %w", d.Account, err)
		}
		drifts[i] = reconcile.Drift{Account: d.Account, Stored: stored, Expected: expected}
	}
	return drifts, nil
}
