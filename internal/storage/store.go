// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"time"

	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
)

// Store defines the transaction scope of the ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the engine.
type Store interface {
	// Update runs fn as one atomic unit. Every write fn makes through tx is
	// committed if fn returns nil and discarded otherwise. Errors outside the
	// ledger taxonomy are reported as ledger.ErrStorageFailure.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn against a consistent snapshot. Nothing is committed.
	View(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// Tx exposes one typed repository per table. A Tx must not be used after
// the function it was passed to returns.
type Tx interface {
	Accounts() Accounts
	Items() Items
	Sellers() Sellers
	Purchases() Purchases
	Transfers() Transfers
	BalanceChanges() BalanceChanges
	Stocking() Stocking
	Donations() Donations
	ExpiryEvents() ExpiryEvents
	Statistics() Statistics
}

// Accounts stores account rows keyed by name.
type Accounts interface {
	// Create inserts a new account. Returns ledger.ErrDuplicateAccount if the
	// name is taken.
	Create(ctx context.Context, account *models.Account) error

	// Get returns ledger.ErrUnknownAccount if there is no such account.
	Get(ctx context.Context, name string) (*models.Account, error)

	// List returns all accounts ordered by name.
	List(ctx context.Context) ([]models.Account, error)

	// AddToBalance adds delta to the stored balance and returns the result.
	AddToBalance(ctx context.Context, name string, delta money.Money) (money.Money, error)

	// SetBalance overwrites the stored balance.
	SetBalance(ctx context.Context, name string, balance money.Money) error
}

// Items stores active items keyed by name.
type Items interface {
	// Create returns ledger.ErrDuplicateItem if an active item has the name.
	Create(ctx context.Context, item *models.Item) error

	// Get returns ledger.ErrUnknownItem if there is no such active item.
	Get(ctx context.Context, name string) (*models.Item, error)

	// List returns all active items ordered by name.
	List(ctx context.Context) ([]models.Item, error)

	// ListExpired returns items whose expiry date is before now.
	ListExpired(ctx context.Context, now time.Time) ([]models.Item, error)

	// SetCount overwrites the count of an item. The count must be positive;
	// use Delete when it reaches zero.
	SetCount(ctx context.Context, name string, count int64) error

	// Delete removes the item and all of its seller assignments.
	Delete(ctx context.Context, name string) error
}

// Sellers stores seller assignments.
type Sellers interface {
	Add(ctx context.Context, assignment *models.SellerAssignment) error
	ListByItem(ctx context.Context, itemName string) ([]models.SellerAssignment, error)
	ListBySeller(ctx context.Context, seller string) ([]models.SellerAssignment, error)
	List(ctx context.Context) ([]models.SellerAssignment, error)
}

// Log is an append-only history table. Rows come back in date order, ties
// broken by insertion order.
type Log[T any] interface {
	Insert(ctx context.Context, row *T) error
	List(ctx context.Context) ([]T, error)

	// CountAfter counts rows inserted after the row with id afterID and
	// returns the highest id seen, or afterID if there are none.
	CountAfter(ctx context.Context, afterID int64) (n, lastID int64, err error)
}

type Purchases interface {
	Log[models.Purchase]
	// ListByAccount returns purchases where name is the buyer or a seller.
	ListByAccount(ctx context.Context, name string) ([]models.Purchase, error)
}

type Transfers interface {
	Log[models.Transfer]
	// ListByAccount returns transfers where name is the sender or receiver.
	ListByAccount(ctx context.Context, name string) ([]models.Transfer, error)
}

type BalanceChanges interface {
	Log[models.BalanceChange]
	ListByAccount(ctx context.Context, name string) ([]models.BalanceChange, error)
}

type Stocking interface {
	Log[models.Stocking]
	ListBySeller(ctx context.Context, seller string) ([]models.Stocking, error)
}

type Donations interface {
	Log[models.Donation]
	Total(ctx context.Context) (money.Money, error)
}

type ExpiryEvents interface {
	Log[models.ExpiryEvent]
	ListBySeller(ctx context.Context, seller string) ([]models.ExpiryEvent, error)
}

type Statistics interface {
	Insert(ctx context.Context, record *models.StatisticsRecord) error
	List(ctx context.Context) ([]models.StatisticsRecord, error)

	// Watermarks returns the last counted row id per history log.
	Watermarks(ctx context.Context) (map[string]int64, error)
	SetWatermark(ctx context.Context, log string, lastID int64) error
}
