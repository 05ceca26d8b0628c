package engine

import (
	"context"

	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/storage"
)

// Inventory lists every active item with its sellers.
func (e *Engine) Inventory(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := e.view(ctx, "inventory", func(tx storage.Tx) error {
		var err error
		listings, err = inventory(ctx, tx)
		return err
	})
	return listings, err
}

// ItemsBySeller lists the active items an account sells.
func (e *Engine) ItemsBySeller(ctx context.Context, seller string) ([]string, error) {
	var names []string
	err := e.view(ctx, "items_by_seller", func(tx storage.Tx) error {
		var err error
		names, err = itemsBySeller(ctx, tx, seller)
		return err
	})
	return names, err
}

// AccountHistory returns every history row that mentions an account.
func (e *Engine) AccountHistory(ctx context.Context, name string) (*models.History, error) {
	var history *models.History
	err := e.view(ctx, "account_history", func(tx storage.Tx) error {
		var err error
		history, err = accountHistory(ctx, tx, name)
		return err
	})
	return history, err
}

// StoreInfo gathers an account, the inventory and the account's history
// from one snapshot.
func (e *Engine) StoreInfo(ctx context.Context, name string) (*StoreInfo, error) {
	info := &StoreInfo{}
	err := e.view(ctx, "store_info", func(tx storage.Tx) error {
		account, err := tx.Accounts().Get(ctx, name)
		if err != nil {
			return err
		}
		info.Account = *account

		accounts, err := tx.Accounts().List(ctx)
		if err != nil {
			return err
		}
		info.AccountNames = namesOf(accounts)

		if info.Inventory, err = inventory(ctx, tx); err != nil {
			return err
		}
		if info.OwnItems, err = itemsBySeller(ctx, tx, name); err != nil {
			return err
		}
		history, err := accountHistory(ctx, tx, name)
		if err != nil {
			return err
		}
		info.History = *history
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func inventory(ctx context.Context, tx storage.Tx) ([]models.Listing, error) {
	items, err := tx.Items().List(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := tx.Sellers().List(ctx)
	if err != nil {
		return nil, err
	}

	byItem := make(map[string][]models.SellerAssignment, len(items))
	for _, a := range assignments {
		byItem[a.ItemName] = append(byItem[a.ItemName], a)
	}
	listings := make([]models.Listing, len(items))
	for i, item := range items {
		listings[i] = models.Listing{Item: item, Sellers: byItem[item.Name]}
	}
	return listings, nil
}

func itemsBySeller(ctx context.Context, tx storage.Tx, seller string) ([]string, error) {
	if _, err := tx.Accounts().Get(ctx, seller); err != nil {
		return nil, err
	}
	assignments, err := tx.Sellers().ListBySeller(ctx, seller)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(assignments))
	for i, a := range assignments {
		names[i] = a.ItemName
	}
	return names, nil
}

func accountHistory(ctx context.Context, tx storage.Tx, name string) (*models.History, error) {
	if _, err := tx.Accounts().Get(ctx, name); err != nil {
		return nil, err
	}

	var (
		h   models.History
		err error
	)
	if h.Purchases, err = tx.Purchases().ListByAccount(ctx, name); err != nil {
		return nil, err
	}
	if h.Transfers, err = tx.Transfers().ListByAccount(ctx, name); err != nil {
		return nil, err
	}
	if h.BalanceChanges, err = tx.BalanceChanges().ListByAccount(ctx, name); err != nil {
		return nil, err
	}
	if h.Stocking, err = tx.Stocking().ListBySeller(ctx, name); err != nil {
		return nil, err
	}
	if h.ExpiryEvents, err = tx.ExpiryEvents().ListBySeller(ctx, name); err != nil {
		return nil, err
	}
	return &h, nil
}
