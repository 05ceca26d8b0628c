package engine

import (
	"context"
	"log/slog"

	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
)

// RecordStatistics appends a snapshot of the average balance, the expected
// cash and the number of history rows written since the previous snapshot.
// Rows are counted by insertion, not by date, so a row stamped before the
// previous snapshot but committed after it is counted once.
func (e *Engine) RecordStatistics(ctx context.Context) (*models.StatisticsRecord, error) {
	rec := &models.StatisticsRecord{}

	err := e.update(ctx, "record_statistics", func(tx storage.Tx) error {
		rec.Date = e.Now()
		accounts, err := tx.Accounts().List(ctx)
		if err != nil {
			return err
		}
		var sum money.Money
		for _, a := range accounts {
			sum = sum.Add(a.Balance)
		}
		if n := int64(len(accounts)); n > 0 {
			// Integer division truncates toward zero, which is rounding down.
			rec.AverageBalance = money.Cents(sum.Cents() / n)
		}
		if rec.ExpectedCash, err = totalCash(ctx, tx); err != nil {
			return err
		}
		if rec.Transactions, err = countNew(ctx, tx); err != nil {
			return err
		}
		return tx.Statistics().Insert(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Statistics recorded",
		"average_balance", rec.AverageBalance.String(),
		"expected_cash", rec.ExpectedCash.String(),
		"transactions", rec.Transactions,
	)
	return rec, nil
}

type counter interface {
	CountAfter(ctx context.Context, afterID int64) (n, lastID int64, err error)
}

// countNew counts rows added to every history log since its watermark and
// advances the watermarks.
func countNew(ctx context.Context, tx storage.Tx) (int64, error) {
	logs := []struct {
		name string
		log  counter
	}{
		{"purchases", tx.Purchases()},
		{"transfers", tx.Transfers()},
		{"balance_changes", tx.BalanceChanges()},
		{"stocking", tx.Stocking()},
		{"donations", tx.Donations()},
		{"expiry_events", tx.ExpiryEvents()},
	}

	marks, err := tx.Statistics().Watermarks(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, l := range logs {
		n, lastID, err := l.log.CountAfter(ctx, marks[l.name])
		if err != nil {
			return 0, err
		}
		total += n
		if n > 0 {
			if err := tx.Statistics().SetWatermark(ctx, l.name, lastID); err != nil {
				return 0, err
			}
		}
	}
	return total, nil
}
