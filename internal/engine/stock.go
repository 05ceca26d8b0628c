package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
)

// Restock creates a new item, its seller assignments and one Stocking row
// per seller. Item names are single-use while the item is active: stocking a
// name that exists fails with ledger.ErrDuplicateItem.
func (e *Engine) Restock(ctx context.Context, req RestockRequest) (*models.Listing, error) {
	if req.Item == "" {
		return nil, fmt.Errorf("%w: item name is empty", ledger.ErrUnknownItem)
	}
	if req.Count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ledger.ErrInvalidAmount, req.Count)
	}
	if req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price %s is negative", ledger.ErrInvalidAmount, req.UnitPrice)
	}
	if req.ExpiryWeeks < 0 {
		return nil, fmt.Errorf("%w: expiry weeks must not be negative, got %d", ledger.ErrInvalidAmount, req.ExpiryWeeks)
	}
	splits, err := calculator.ResolveSplit(req.Sellers, req.Tax)
	if err != nil {
		return nil, err
	}

	weeks := req.ExpiryWeeks
	if weeks == 0 {
		weeks = e.expiryWeeks
	}
	now := e.Now()
	item := models.Item{
		Name:        req.Item,
		Count:       req.Count,
		UnitPrice:   req.UnitPrice,
		Tax:         req.Tax,
		StockDate:   now,
		ExpiryDate:  now.AddDate(0, 0, 7*weeks),
		Description: req.Description,
	}
	listing := &models.Listing{Item: item}
	eventID := e.newEventID()

	err = e.update(ctx, "restock", func(tx storage.Tx) error {
		if _, err := tx.Items().Get(ctx, req.Item); err == nil {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicateItem, req.Item)
		} else if !ledger.IsNotFound(err) {
			return err
		}
		for _, s := range splits {
			if _, err := tx.Accounts().Get(ctx, s.Seller); err != nil {
				return err
			}
		}

		if err := tx.Items().Create(ctx, &item); err != nil {
			return err
		}
		for _, s := range splits {
			assignment := models.SellerAssignment{ItemName: item.Name, Seller: s.Seller, ProfitSplit: s.Fraction}
			if err := tx.Sellers().Add(ctx, &assignment); err != nil {
				return err
			}
			listing.Sellers = append(listing.Sellers, assignment)

			err := tx.Stocking().Insert(ctx, &models.Stocking{
				EventID:     eventID,
				ItemName:    item.Name,
				Date:        now,
				StockDate:   item.StockDate,
				ExpiryDate:  item.ExpiryDate,
				Seller:      s.Seller,
				ProfitSplit: s.Fraction,
				PriceEach:   item.UnitPrice,
				OldCount:    0,
				NewCount:    item.Count,
				Tax:         item.Tax,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Item stocked", "item", item.Name, "count", item.Count, "price", item.UnitPrice.String(), "sellers", len(splits))
	return listing, nil
}

// AdjustStock changes an active item's count by req.Delta and records one
// Stocking row per seller. An item whose count reaches zero is removed with
// its seller assignments. A zero delta changes nothing and records nothing.
func (e *Engine) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockResult, error) {
	result := &StockResult{Item: req.Item}

	err := e.update(ctx, "adjust_stock", func(tx storage.Tx) error {
		item, err := tx.Items().Get(ctx, req.Item)
		if err != nil {
			return err
		}
		result.OldCount = item.Count
		result.NewCount = item.Count
		if req.Delta == 0 {
			return nil
		}

		if req.Delta > math.MaxInt64-item.Count {
			return fmt.Errorf("%w: %s has %d, cannot add %d", ledger.ErrInvalidAmount, item.Name, item.Count, req.Delta)
		}
		newCount := item.Count + req.Delta
		if newCount < 0 {
			return fmt.Errorf("%w: %s has %d, cannot remove %d", ledger.ErrInsufficientStock, item.Name, item.Count, -req.Delta)
		}
		sellers, err := tx.Sellers().ListByItem(ctx, item.Name)
		if err != nil {
			return err
		}

		if newCount == 0 {
			err = tx.Items().Delete(ctx, item.Name)
		} else {
			err = tx.Items().SetCount(ctx, item.Name, newCount)
		}
		if err != nil {
			return err
		}

		result.EventID = e.newEventID()
		result.NewCount = newCount
		result.Removed = newCount == 0
		now := e.Now()
		for _, s := range sellers {
			err := tx.Stocking().Insert(ctx, &models.Stocking{
				EventID:     result.EventID,
				ItemName:    item.Name,
				Date:        now,
				StockDate:   item.StockDate,
				ExpiryDate:  item.ExpiryDate,
				Seller:      s.Seller,
				ProfitSplit: s.ProfitSplit,
				PriceEach:   item.UnitPrice,
				OldCount:    item.Count,
				NewCount:    newCount,
				Tax:         item.Tax,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Delta != 0 {
		slog.Info("Stock adjusted", "item", req.Item, "old_count", result.OldCount, "new_count", result.NewCount, "removed", result.Removed)
	}
	return result, nil
}

// Checkout sells req.Count units to req.Buyer. The buyer is debited the
// total price once; every seller is credited their rounded-down share and
// gets one Purchase row. The tax and any rounding residue stay with the
// store.
func (e *Engine) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ledger.ErrInvalidAmount, req.Count)
	}

	receipt := &Receipt{Item: req.Item, Buyer: req.Buyer, Count: req.Count}
	err := e.update(ctx, "checkout", func(tx storage.Tx) error {
		item, err := tx.Items().Get(ctx, req.Item)
		if err != nil {
			return err
		}
		if req.Count > item.Count {
			return fmt.Errorf("%w: %s has %d, requested %d", ledger.ErrInsufficientStock, item.Name, item.Count, req.Count)
		}
		if _, err := tx.Accounts().Get(ctx, req.Buyer); err != nil {
			return err
		}
		assignments, err := tx.Sellers().ListByItem(ctx, item.Name)
		if err != nil {
			return err
		}
		splits := make([]calculator.Split, len(assignments))
		for i, a := range assignments {
			if _, err := tx.Accounts().Get(ctx, a.Seller); err != nil {
				return err
			}
			splits[i] = calculator.Split{Seller: a.Seller, Fraction: a.ProfitSplit}
		}

		total, err := calculator.CheckoutTotal(item.UnitPrice, req.Count)
		if err != nil {
			return err
		}
		credits := calculator.SellerCredits(total, splits)

		remaining := item.Count - req.Count
		if remaining == 0 {
			err = tx.Items().Delete(ctx, item.Name)
		} else {
			err = tx.Items().SetCount(ctx, item.Name, remaining)
		}
		if err != nil {
			return err
		}

		if _, err := tx.Accounts().AddToBalance(ctx, req.Buyer, total.Neg()); err != nil {
			return err
		}

		eventID := e.newEventID()
		now := e.Now()
		credited := money.Zero
		for i, c := range credits {
			if _, err := tx.Accounts().AddToBalance(ctx, c.Seller, c.Amount); err != nil {
				return err
			}
			credited = credited.Add(c.Amount)

			err := tx.Purchases().Insert(ctx, &models.Purchase{
				EventID:     eventID,
				ItemName:    item.Name,
				Date:        now,
				StockDate:   item.StockDate,
				ExpiryDate:  item.ExpiryDate,
				Buyer:       req.Buyer,
				Seller:      c.Seller,
				ProfitSplit: splits[i].Fraction,
				PriceEach:   item.UnitPrice,
				Count:       req.Count,
				Tax:         item.Tax,
			})
			if err != nil {
				return err
			}
		}
		// The buyer may also be one of the sellers.
		balance, err := balanceOf(ctx, tx, req.Buyer)
		if err != nil {
			return err
		}

		receipt.EventID = eventID
		receipt.UnitPrice = item.UnitPrice
		receipt.Total = total
		receipt.Credits = credits
		receipt.Retained = total.Sub(credited)
		receipt.BuyerBalance = balance
		receipt.Remaining = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Checkout completed", "item", req.Item, "buyer", req.Buyer, "count", req.Count, "total", receipt.Total.String())
	return receipt, nil
}

func balanceOf(ctx context.Context, tx storage.Tx, name string) (money.Money, error) {
	account, err := tx.Accounts().Get(ctx, name)
	if err != nil {
		return money.Zero, err
	}
	return account.Balance, nil
}
