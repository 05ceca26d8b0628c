package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/metrics"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
	"github.com/mmynk/limbo/internal/storage/sqlite"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, accounts ...string) *Engine {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	e := New(store,
		WithClock(func() time.Time { return testNow }),
		WithMetrics(metrics.New()),
	)
	for _, name := range accounts {
		_, err := e.CreateAccount(context.Background(), CreateAccountRequest{Name: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}
	return e
}

// stockWidget stocks the canonical widget: $1.00, 10 units, alice and bob
// at 45% each, 10% tax.
func stockWidget(t *testing.T, e *Engine) {
	t.Helper()
	_, err := e.Restock(context.Background(), RestockRequest{
		Item:      "widget",
		Sellers:   []calculator.Share{calculator.Fixed("alice", money.MustFraction("0.45")), calculator.Fixed("bob", money.MustFraction("0.45"))},
		Count:     10,
		UnitPrice: money.MustParse("1.00"),
		Tax:       money.MustFraction("0.10"),
	})
	require.NoError(t, err)
}

func balance(t *testing.T, e *Engine, name string) money.Money {
	t.Helper()
	a, err := e.Account(context.Background(), name)
	require.NoError(t, err)
	return a.Balance
}

func snapshot(t *testing.T, e *Engine, fn func(tx storage.Tx) error) {
	t.Helper()
	require.NoError(t, e.Store().View(context.Background(), fn))
}

func purchases(t *testing.T, e *Engine) []models.Purchase {
	t.Helper()
	var rows []models.Purchase
	snapshot(t, e, func(tx storage.Tx) error {
		var err error
		rows, err = tx.Purchases().List(context.Background())
		return err
	})
	return rows
}

func stockingRows(t *testing.T, e *Engine) []models.Stocking {
	t.Helper()
	var rows []models.Stocking
	snapshot(t, e, func(tx storage.Tx) error {
		var err error
		rows, err = tx.Stocking().List(context.Background())
		return err
	})
	return rows
}
