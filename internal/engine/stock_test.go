package engine

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
)

func TestRestock(t *testing.T) {
	ctx := context.Background()
	f := money.MustFraction
	alice, bob := calculator.Fixed("alice", f("0.45")), calculator.Fixed("bob", f("0.45"))

	t.Run("rejected requests leave the item table unchanged", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob")
		tests := []struct {
			name    string
			req     RestockRequest
			wantErr error
		}{
			{
				name:    "split short of one",
				req:     RestockRequest{Item: "widget", Sellers: []calculator.Share{alice, calculator.Fixed("bob", f("0.40"))}, Count: 1, UnitPrice: money.MustParse("1.00"), Tax: f("0.10")},
				wantErr: ledger.ErrInvalidSplit,
			},
			{
				name:    "zero count",
				req:     RestockRequest{Item: "widget", Sellers: []calculator.Share{alice, bob}, Count: 0, UnitPrice: money.MustParse("1.00"), Tax: f("0.10")},
				wantErr: ledger.ErrInvalidAmount,
			},
			{
				name:    "negative price",
				req:     RestockRequest{Item: "widget", Sellers: []calculator.Share{alice, bob}, Count: 1, UnitPrice: money.MustParse("-1.00"), Tax: f("0.10")},
				wantErr: ledger.ErrInvalidAmount,
			},
			{
				name:    "negative expiry",
				req:     RestockRequest{Item: "widget", Sellers: []calculator.Share{alice, bob}, Count: 1, UnitPrice: money.MustParse("1.00"), Tax: f("0.10"), ExpiryWeeks: -1},
				wantErr: ledger.ErrInvalidAmount,
			},
			{
				name:    "unknown seller",
				req:     RestockRequest{Item: "widget", Sellers: []calculator.Share{alice, calculator.Remainder("mallory")}, Count: 1, UnitPrice: money.MustParse("1.00"), Tax: f("0.10")},
				wantErr: ledger.ErrUnknownAccount,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := e.Restock(ctx, tt.req)
				require.ErrorIs(t, err, tt.wantErr)
			})
		}

		listings, err := e.Inventory(ctx)
		require.NoError(t, err)
		assert.Empty(t, listings)
		assert.Empty(t, stockingRows(t, e))
	})

	t.Run("stocks item sellers and history", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob", "carol")
		listing, err := e.Restock(ctx, RestockRequest{
			Item:        "tea",
			Sellers:     []calculator.Share{calculator.Fixed("alice", f("0.3333")), calculator.Remainder("bob"), calculator.Fixed("carol", f("0.3333"))},
			Count:       5,
			UnitPrice:   money.MustParse("0.75"),
			Tax:         f("0.05"),
			ExpiryWeeks: 2,
			Description: "green",
		})
		require.NoError(t, err)

		assert.Equal(t, testNow, listing.Item.StockDate)
		assert.Equal(t, testNow.AddDate(0, 0, 14), listing.Item.ExpiryDate)
		require.Len(t, listing.Sellers, 3)
		assert.True(t, listing.Sellers[1].ProfitSplit.Equal(f("0.2834")), "bob gets the remainder, got %s", listing.Sellers[1].ProfitSplit)

		rows := stockingRows(t, e)
		require.Len(t, rows, 3)
		for _, r := range rows {
			assert.Equal(t, rows[0].EventID, r.EventID)
			assert.Equal(t, int64(0), r.OldCount)
			assert.Equal(t, int64(5), r.NewCount)
		}

		own, err := e.ItemsBySeller(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, []string{"tea"}, own)
	})

	t.Run("default expiry", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob")
		stockWidget(t, e)
		listings, err := e.Inventory(ctx)
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, testNow.AddDate(0, 0, 7*DefaultExpiryWeeks), listings[0].Item.ExpiryDate)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob")
		stockWidget(t, e)
		_, err := e.Restock(ctx, RestockRequest{Item: "widget", Sellers: []calculator.Share{calculator.Remainder("alice")}, Count: 1, UnitPrice: money.MustParse("2.00")})
		require.ErrorIs(t, err, ledger.ErrDuplicateItem)
		assert.Len(t, stockingRows(t, e), 2)
	})
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("widget sold to carol", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob", "carol")
		stockWidget(t, e)

		receipt, err := e.Checkout(ctx, CheckoutRequest{Item: "widget", Buyer: "carol", Count: 3})
		require.NoError(t, err)

		assert.Equal(t, money.MustParse("3.00"), receipt.Total)
		assert.Equal(t, money.MustParse("0.30"), receipt.Retained)
		assert.Equal(t, money.MustParse("-3.00"), receipt.BuyerBalance)
		assert.Equal(t, int64(7), receipt.Remaining)

		assert.Equal(t, money.MustParse("-3.00"), balance(t, e, "carol"))
		assert.Equal(t, money.MustParse("1.35"), balance(t, e, "alice"))
		assert.Equal(t, money.MustParse("1.35"), balance(t, e, "bob"))

		listings, err := e.Inventory(ctx)
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, int64(7), listings[0].Item.Count)

		rows := purchases(t, e)
		require.Len(t, rows, 2)
		for _, p := range rows {
			assert.Equal(t, receipt.EventID, p.EventID)
			assert.Equal(t, "carol", p.Buyer)
			assert.Equal(t, int64(3), p.Count)
			assert.True(t, p.Tax.Equal(money.MustFraction("0.1")))
		}
		assert.ElementsMatch(t, []string{"alice", "bob"}, []string{rows[0].Seller, rows[1].Seller})
	})

	t.Run("seller credits never exceed the total", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob", "carol", "dave")
		_, err := e.Restock(ctx, RestockRequest{
			Item:      "gum",
			Sellers:   []calculator.Share{calculator.Fixed("alice", money.MustFraction("0.3333")), calculator.Fixed("bob", money.MustFraction("0.3333")), calculator.Remainder("carol")},
			Count:     3,
			UnitPrice: money.MustParse("0.33"),
		})
		require.NoError(t, err)

		receipt, err := e.Checkout(ctx, CheckoutRequest{Item: "gum", Buyer: "dave", Count: 3})
		require.NoError(t, err)

		var credited money.Money
		for _, c := range receipt.Credits {
			credited = credited.Add(c.Amount)
		}
		assert.LessOrEqual(t, credited.Cents(), receipt.Total.Cents())
		assert.Equal(t, receipt.Total.Sub(credited), receipt.Retained)

		// Selling the last units removes the item.
		assert.Equal(t, int64(0), receipt.Remaining)
		_, err = e.Checkout(ctx, CheckoutRequest{Item: "gum", Buyer: "dave", Count: 1})
		require.ErrorIs(t, err, ledger.ErrUnknownItem)
	})

	t.Run("buyer who is also a seller", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob")
		stockWidget(t, e)

		receipt, err := e.Checkout(ctx, CheckoutRequest{Item: "widget", Buyer: "alice", Count: 2})
		require.NoError(t, err)
		// -2.00 + 0.90
		assert.Equal(t, money.MustParse("-1.10"), receipt.BuyerBalance)
		assert.Equal(t, money.MustParse("-1.10"), balance(t, e, "alice"))
	})

	t.Run("failures change nothing", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob", "carol")
		stockWidget(t, e)

		tests := []struct {
			name    string
			req     CheckoutRequest
			wantErr error
		}{
			{name: "more than in stock", req: CheckoutRequest{Item: "widget", Buyer: "carol", Count: 11}, wantErr: ledger.ErrInsufficientStock},
			{name: "zero count", req: CheckoutRequest{Item: "widget", Buyer: "carol", Count: 0}, wantErr: ledger.ErrInvalidAmount},
			{name: "unknown buyer", req: CheckoutRequest{Item: "widget", Buyer: "mallory", Count: 1}, wantErr: ledger.ErrUnknownAccount},
			{name: "unknown item", req: CheckoutRequest{Item: "gadget", Buyer: "carol", Count: 1}, wantErr: ledger.ErrUnknownItem},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := e.Checkout(ctx, tt.req)
				require.ErrorIs(t, err, tt.wantErr)
			})
		}

		listings, err := e.Inventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), listings[0].Item.Count)
		assert.Empty(t, purchases(t, e))
		assert.True(t, balance(t, e, "carol").IsZero())
	})

	t.Run("total too large to represent", func(t *testing.T) {
		e := newTestEngine(t, "alice", "carol")
		_, err := e.Restock(ctx, RestockRequest{
			Item:      "gold",
			Sellers:   []calculator.Share{calculator.Remainder("alice")},
			Count:     10000,
			UnitPrice: money.MustParse("9999999999999.99"),
		})
		require.NoError(t, err)

		_, err = e.Checkout(ctx, CheckoutRequest{Item: "gold", Buyer: "carol", Count: 10000})
		require.ErrorIs(t, err, ledger.ErrInvalidAmount)

		assert.True(t, balance(t, e, "carol").IsZero())
		assert.True(t, balance(t, e, "alice").IsZero())
		assert.Empty(t, purchases(t, e))
		listings, err := e.Inventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), listings[0].Item.Count)
	})

	t.Run("two buyers racing for the last unit", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob", "carol", "dave")
		stockWidget(t, e)
		_, err := e.AdjustStock(ctx, AdjustStockRequest{Item: "widget", Delta: -9})
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, buyer := range []string{"carol", "dave"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = e.Checkout(ctx, CheckoutRequest{Item: "widget", Buyer: buyer, Count: 1})
			}()
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, ledger.IsNotFound(err) || ledger.IsValidation(err), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, succeeded)
		assert.Len(t, purchases(t, e), 2)
		assert.Equal(t, money.MustParse("-1.00"), balance(t, e, "carol").Add(balance(t, e, "dave")))
	})
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("restock and remove record old and new counts", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob")
		stockWidget(t, e)

		res, err := e.AdjustStock(ctx, AdjustStockRequest{Item: "widget", Delta: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(10), res.OldCount)
		assert.Equal(t, int64(15), res.NewCount)
		assert.False(t, res.Removed)

		rows := stockingRows(t, e)
		require.Len(t, rows, 4)
		for _, r := range rows[2:] {
			assert.Equal(t, res.EventID, r.EventID)
			assert.Equal(t, int64(10), r.OldCount)
			assert.Equal(t, int64(15), r.NewCount)
		}
	})

	t.Run("removing everything deletes the item and its sellers", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob", "carol")
		stockWidget(t, e)

		res, err := e.AdjustStock(ctx, AdjustStockRequest{Item: "widget", Delta: -10})
		require.NoError(t, err)
		assert.True(t, res.Removed)
		assert.Len(t, stockingRows(t, e), 4)

		snapshot(t, e, func(tx storage.Tx) error {
			sellers, err := tx.Sellers().List(ctx)
			assert.Empty(t, sellers)
			return err
		})

		_, err = e.AdjustStock(ctx, AdjustStockRequest{Item: "widget", Delta: 1})
		require.ErrorIs(t, err, ledger.ErrUnknownItem)
		_, err = e.Checkout(ctx, CheckoutRequest{Item: "widget", Buyer: "carol", Count: 1})
		require.ErrorIs(t, err, ledger.ErrUnknownItem)

		// The name is free again.
		stockWidget(t, e)
	})

	t.Run("cannot remove more than is in stock", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob")
		stockWidget(t, e)

		_, err := e.AdjustStock(ctx, AdjustStockRequest{Item: "widget", Delta: -11})
		require.ErrorIs(t, err, ledger.ErrInsufficientStock)
		assert.Len(t, stockingRows(t, e), 2)
	})

	t.Run("count overflow is rejected", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob")
		stockWidget(t, e)

		_, err := e.AdjustStock(ctx, AdjustStockRequest{Item: "widget", Delta: math.MaxInt64})
		require.ErrorIs(t, err, ledger.ErrInvalidAmount)
		assert.Len(t, stockingRows(t, e), 2)

		listings, err := e.Inventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(10), listings[0].Item.Count)
	})

	t.Run("zero delta records nothing", func(t *testing.T) {
		e := newTestEngine(t, "alice", "bob")
		stockWidget(t, e)

		res, err := e.AdjustStock(ctx, AdjustStockRequest{Item: "widget", Delta: 0})
		require.NoError(t, err)
		assert.Equal(t, int64(10), res.NewCount)
		assert.Empty(t, res.EventID)
		assert.Len(t, stockingRows(t, e), 2)
	})
}
