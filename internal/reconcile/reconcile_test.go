package reconcile

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/engine"
	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/metrics"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
	"github.com/mmynk/limbo/internal/storage/sqlite"
)

var reportDate = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, accounts ...string) (*engine.Engine, *Reconciler) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := func() time.Time { return reportDate }
	e := engine.New(store, engine.WithClock(clock))
	for _, name := range accounts {
		_, err := e.CreateAccount(context.Background(), engine.CreateAccountRequest{Name: name})
		require.NoError(t, err)
	}
	return e, New(store, WithClock(clock), WithMetrics(metrics.New()))
}

// trade runs a mix of every balance-affecting operation.
func trade(t *testing.T, e *engine.Engine) {
	t.Helper()
	ctx := context.Background()
	f := money.MustFraction

	_, err := e.ChangeBalance(ctx, engine.ChangeBalanceRequest{Account: "carol", Amount: money.MustParse("10.00")})
	require.NoError(t, err)
	_, err = e.ChangeBalance(ctx, engine.ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("-1.00")})
	require.NoError(t, err)
	_, err = e.Restock(ctx, engine.RestockRequest{
		Item:      "widget",
		Sellers:   []calculator.Share{calculator.Fixed("alice", f("0.45")), calculator.Fixed("bob", f("0.45"))},
		Count:     10,
		UnitPrice: money.MustParse("1.00"),
		Tax:       f("0.10"),
	})
	require.NoError(t, err)
	_, err = e.Restock(ctx, engine.RestockRequest{
		Item:      "gum",
		Sellers:   []calculator.Share{calculator.Fixed("alice", f("0.3333")), calculator.Fixed("bob", f("0.3333")), calculator.Remainder("dave")},
		Count:     5,
		UnitPrice: money.MustParse("0.33"),
	})
	require.NoError(t, err)
	_, err = e.Checkout(ctx, engine.CheckoutRequest{Item: "widget", Buyer: "carol", Count: 3})
	require.NoError(t, err)
	// Same instant as the first checkout: must still be debited separately.
	_, err = e.Checkout(ctx, engine.CheckoutRequest{Item: "gum", Buyer: "carol", Count: 3})
	require.NoError(t, err)
	_, err = e.Transfer(ctx, engine.TransferRequest{Sender: "carol", Receiver: "dave", Amount: money.MustParse("2.00")})
	require.NoError(t, err)
	_, err = e.Donate(ctx, engine.DonateRequest{Amount: money.MustParse("5.00")})
	require.NoError(t, err)
}

func TestReport(t *testing.T) {
	ctx := context.Background()

	t.Run("history replays to the stored balances", func(t *testing.T) {
		e, r := setup(t, "alice", "bob", "carol", "dave", "erin")
		trade(t, e)

		report, err := r.Report(ctx)
		require.NoError(t, err)
		assert.True(t, report.Clean(), "unexpected drift: %+v", report.Drifts)
		assert.Len(t, report.Balances, 5)

		cash, err := e.TotalCash(ctx)
		require.NoError(t, err)
		assert.Equal(t, cash, report.Summary.ExpectedCash())
		assert.Equal(t, money.MustParse("9.00"), report.Summary.Deposits)
		assert.Equal(t, money.MustParse("5.00"), report.Summary.Donations)
		// widget: 3.00 - 2×1.35; gum: 0.99 - (0.32 + 0.32 + 0.33)
		assert.Equal(t, money.MustParse("0.32"), report.Summary.Retained)
		// Money only leaves through the retained residual.
		assert.Equal(t, report.Summary.Deposits.Sub(report.Summary.Retained), report.Summary.Balances)
	})

	t.Run("tampered balance shows up as drift", func(t *testing.T) {
		e, r := setup(t, "alice", "bob", "carol", "dave")
		trade(t, e)
		require.NoError(t, e.Store().Update(ctx, func(tx storage.Tx) error {
			return tx.Accounts().SetBalance(ctx, "bob", money.MustParse("100.00"))
		}))

		report, err := r.Report(ctx)
		require.NoError(t, err)
		require.Len(t, report.Drifts, 1)
		d := report.Drifts[0]
		assert.Equal(t, "bob", d.Account)
		assert.Equal(t, money.MustParse("100.00"), d.Stored)
		assert.Equal(t, money.MustParse("1.67"), d.Expected)
		assert.Equal(t, money.MustParse("98.33"), d.Difference())
	})
}

func TestRepair(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites drifted balances", func(t *testing.T) {
		e, r := setup(t, "alice", "bob", "carol", "dave")
		trade(t, e)
		require.NoError(t, e.Store().Update(ctx, func(tx storage.Tx) error {
			if err := tx.Accounts().SetBalance(ctx, "alice", money.Zero); err != nil {
				return err
			}
			return tx.Accounts().SetBalance(ctx, "carol", money.MustParse("-50.00"))
		}))

		report, err := r.Report(ctx)
		require.NoError(t, err)
		require.Len(t, report.Drifts, 2)

		n, err := r.Repair(ctx, report.Drifts)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		after, err := r.Report(ctx)
		require.NoError(t, err)
		assert.True(t, after.Clean())
	})

	t.Run("refuses a stale report", func(t *testing.T) {
		e, r := setup(t, "alice", "bob", "carol", "dave")
		trade(t, e)
		require.NoError(t, e.Store().Update(ctx, func(tx storage.Tx) error {
			return tx.Accounts().SetBalance(ctx, "alice", money.Zero)
		}))

		report, err := r.Report(ctx)
		require.NoError(t, err)
		require.Len(t, report.Drifts, 1)

		// Activity between report and repair.
		_, err = e.ChangeBalance(ctx, engine.ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("1.00")})
		require.NoError(t, err)

		_, err = r.Repair(ctx, report.Drifts)
		require.ErrorIs(t, err, ledger.ErrStaleReport)

		a, err := e.Account(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, money.MustParse("1.00"), a.Balance, "stale repair must not write")
	})

	t.Run("refuses an expected balance the history does not give", func(t *testing.T) {
		e, r := setup(t, "alice")
		_, err := e.ChangeBalance(ctx, engine.ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("10.00")})
		require.NoError(t, err)

		report, err := r.Report(ctx)
		require.NoError(t, err)
		require.True(t, report.Clean())

		forged := []Drift{{Account: "alice", Stored: money.MustParse("10.00"), Expected: money.MustParse("1000000.00")}}
		n, err := r.Repair(ctx, forged)
		require.ErrorIs(t, err, ledger.ErrStaleReport)
		assert.Zero(t, n)

		a, err := e.Account(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, money.MustParse("10.00"), a.Balance)

		after, err := r.Report(ctx)
		require.NoError(t, err)
		assert.True(t, after.Clean())
	})

	t.Run("nothing to repair", func(t *testing.T) {
		_, r := setup(t, "alice")
		n, err := r.Repair(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestWriteText(t *testing.T) {
	tests := []struct {
		name   string
		report *Report
	}{
		{
			name: "drift",
			report: &Report{
				Date: reportDate,
				Drifts: []Drift{
					{Account: "alice", Stored: money.MustParse("0.85"), Expected: money.MustParse("0.50")},
					{Account: "carol", Stored: money.MustParse("-3.00"), Expected: money.MustParse("-2.00")},
				},
				Summary: Summary{
					Accounts:  5,
					Balances:  money.MustParse("8.70"),
					Donations: money.MustParse("5.00"),
					Deposits:  money.MustParse("9.00"),
					Retained:  money.MustParse("0.30"),
				},
			},
		},
		{
			name: "clean",
			report: &Report{
				Date: reportDate,
				Summary: Summary{
					Accounts: 3,
					Balances: money.MustParse("12.00"),
					Deposits: money.MustParse("12.00"),
				},
			},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteText(&buf, tt.report))
			g.Assert(t, "report_"+tt.name, buf.Bytes())
		})
	}
}
