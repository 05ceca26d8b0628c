// Package reconcile recomputes every account's balance from history and
// compares it with the stored balance.
//
// Reporting and repairing are separate calls. Report never writes. Repair
// takes the drifts an operator has reviewed and overwrites exactly those
// balances, refusing to run if any of them moved since the report.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/metrics"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
)

// Drift is an account whose stored balance disagrees with its history.
type Drift struct {
	Account  string
	Stored   money.Money
	Expected money.Money
}

// Difference is how much more the account holds than its history explains.
func (d Drift) Difference() money.Money { return d.Stored.Sub(d.Expected) }

// Summary holds system-wide totals.
type Summary struct {
	Accounts  int
	Balances  money.Money // sum of stored balances
	Donations money.Money
	Deposits  money.Money // net of withdrawals

	// Retained is what buyers paid that no seller was credited: tax plus
	// rounding residue.
	Retained money.Money
}

// ExpectedCash is the cash the store should hold.
func (s Summary) ExpectedCash() money.Money { return s.Balances.Add(s.Donations) }

// Report is the result of a reconciliation.
type Report struct {
	Date     time.Time
	Drifts   []Drift // ordered by account
	Balances []calculator.AccountBalance
	Summary  Summary
}

// Clean reports whether every account matched its history.
func (r *Report) Clean() bool { return len(r.Drifts) == 0 }

// Reconciler produces reports and applies repairs.
type Reconciler struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithMetrics records report and repair results in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithClock sets the report date source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates a Reconciler.
func New(store storage.Store, opts ...Option) *Reconciler {
	r := &Reconciler{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report replays every account's history. It never writes.
func (r *Reconciler) Report(ctx context.Context) (*Report, error) {
	report := &Report{Date: r.now().UTC()}

	err := r.store.View(ctx, func(tx storage.Tx) error {
		return replay(ctx, tx, report)
	})
	if err != nil {
		return nil, err
	}

	r.metrics.ObserveReport(len(report.Drifts))
	slog.Info("Reconciliation finished", "accounts", report.Summary.Accounts, "drifted", len(report.Drifts))
	return report, nil
}

// replay fills report from the history and balances visible in tx.
func replay(ctx context.Context, tx storage.Tx, report *Report) error {
	accounts, err := tx.Accounts().List(ctx)
	if err != nil {
		return err
	}
	changes, err := tx.BalanceChanges().List(ctx)
	if err != nil {
		return err
	}
	purchases, err := tx.Purchases().List(ctx)
	if err != nil {
		return err
	}
	transfers, err := tx.Transfers().List(ctx)
	if err != nil {
		return err
	}
	donated, err := tx.Donations().Total(ctx)
	if err != nil {
		return err
	}

	names := make([]string, len(accounts))
	stored := make(map[string]money.Money, len(accounts))
	for i, a := range accounts {
		names[i] = a.Name
		stored[a.Name] = a.Balance
		report.Summary.Balances = report.Summary.Balances.Add(a.Balance)
	}

	replayChanges := make([]calculator.ChangeForBalance, len(changes))
	for i, c := range changes {
		replayChanges[i] = calculator.ChangeForBalance{Account: c.Account, Amount: c.Amount}
		report.Summary.Deposits = report.Summary.Deposits.Add(c.Amount)
	}
	sales := make([]calculator.SaleForBalance, len(purchases))
	for i, p := range purchases {
		sales[i] = calculator.SaleForBalance{
			EventID:     p.EventID,
			Date:        p.Date,
			Buyer:       p.Buyer,
			Seller:      p.Seller,
			PriceEach:   p.PriceEach,
			Count:       p.Count,
			ProfitSplit: p.ProfitSplit,
		}
	}
	moves := make([]calculator.TransferForBalance, len(transfers))
	for i, t := range transfers {
		moves[i] = calculator.TransferForBalance{Sender: t.Sender, Receiver: t.Receiver, Amount: t.Amount}
	}

	replayed := calculator.ReplayBalances(names, replayChanges, sales, moves)
	report.Balances = replayed.Balances
	report.Summary.Accounts = len(accounts)
	report.Summary.Donations = donated
	report.Summary.Retained = replayed.Retained

	for _, b := range replayed.Balances {
		s, ok := stored[b.Account]
		if !ok {
			// History names an account that no longer exists.
			s = money.Zero
		}
		if s != b.Expected {
			report.Drifts = append(report.Drifts, Drift{Account: b.Account, Stored: s, Expected: b.Expected})
		}
	}
	return nil
}

// Repair overwrites each drifted account's stored balance with its expected
// balance, in one transaction. The history is replayed again inside that
// transaction; if any stored or expected balance no longer equals the value
// in drifts, nothing is written and ledger.ErrStaleReport is returned.
func (r *Reconciler) Repair(ctx context.Context, drifts []Drift) (int, error) {
	if len(drifts) == 0 {
		return 0, nil
	}

	err := r.store.Update(ctx, func(tx storage.Tx) error {
		current := &Report{}
		if err := replay(ctx, tx, current); err != nil {
			return err
		}
		expected := make(map[string]money.Money, len(current.Balances))
		for _, b := range current.Balances {
			expected[b.Account] = b.Expected
		}

		for _, d := range drifts {
			account, err := tx.Accounts().Get(ctx, d.Account)
			if err != nil {
				return err
			}
			if account.Balance != d.Stored {
				return fmt.Errorf("%w: %s holds %s, report said %s",
					ledger.ErrStaleReport, d.Account, account.Balance, d.Stored)
			}
			if want := expected[d.Account]; want != d.Expected {
				return fmt.Errorf("%w: history gives %s %s, report said %s",
					ledger.ErrStaleReport, d.Account, want, d.Expected)
			}
			if err := tx.Accounts().SetBalance(ctx, d.Account, d.Expected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, d := range drifts {
		slog.Info("Balance repaired", "account", d.Account, "from", d.Stored.String(), "to", d.Expected.String())
	}
	r.metrics.ObserveRepair(len(drifts))
	return len(drifts), nil
}
