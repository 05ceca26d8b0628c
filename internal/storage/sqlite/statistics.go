package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
)

type statistics struct {
	tx *sql.Tx
}

const statisticsColumns = "date, average_balance_cents, expected_cash_cents, transactions"

// Insert appends a statistics snapshot.
func (r statistics) Insert(ctx context.Context, rec *models.StatisticsRecord) error {
	_, err := r.tx.ExecContext(ctx,
		"INSERT INTO statistics ("+statisticsColumns+") VALUES (?, ?, ?, ?)",
		toNanos(rec.Date), rec.AverageBalance.Cents(), rec.ExpectedCash.Cents(), rec.Transactions,
	)
	if err != nil {
		return fmt.Errorf("failed to insert statistics: %w", err)
	}
	return nil
}

// List returns every snapshot, oldest first.
func (r statistics) List(ctx context.Context) ([]models.StatisticsRecord, error) {
	rows, err := r.tx.QueryContext(ctx, "SELECT "+statisticsColumns+" FROM statistics ORDER BY date, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list statistics: %w", err)
	}
	defer rows.Close()

	var result []models.StatisticsRecord
	for rows.Next() {
		rec, err := scanStatistics(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statistics: %w", err)
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistics: %w", err)
	}
	return result, nil
}

// Watermarks returns the last row id counted in each history log.
func (r statistics) Watermarks(ctx context.Context) (map[string]int64, error) {
	rows, err := r.tx.QueryContext(ctx, "SELECT log, last_id FROM statistics_watermarks")
	if err != nil {
		return nil, fmt.Errorf("failed to list watermarks: %w", err)
	}
	defer rows.Close()

	marks := make(map[string]int64)
	for rows.Next() {
		var (
			log    string
			lastID int64
		)
		if err := rows.Scan(&log, &lastID); err != nil {
			return nil, fmt.Errorf("failed to scan watermark: %w", err)
		}
		marks[log] = lastID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watermarks: %w", err)
	}
	return marks, nil
}

// SetWatermark records the last row id counted in a history log.
func (r statistics) SetWatermark(ctx context.Context, log string, lastID int64) error {
	_, err := r.tx.ExecContext(ctx,
		"INSERT INTO statistics_watermarks (log, last_id) VALUES (?, ?) ON CONFLICT (log) DO UPDATE SET last_id = excluded.last_id",
		log, lastID,
	)
	if err != nil {
		return fmt.Errorf("failed to set watermark: %w", err)
	}
	return nil
}

func scanStatistics(row scanner) (*models.StatisticsRecord, error) {
	var (
		rec                  models.StatisticsRecord
		date, average, total int64
	)
	if err := row.Scan(&date, &average, &total, &rec.Transactions); err != nil {
		return nil, err
	}
	rec.Date = fromNanos(date)
	rec.AverageBalance = money.Cents(average)
	rec.ExpectedCash = money.Cents(total)
	return &rec, nil
}
