package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
)

// logTable is an append-only history table. Rows are read back ordered by
// date, then by insertion id.
type logTable[T any] struct {
	tx      *sql.Tx
	table   string
	columns []string
	values  func(row *T) []any
	scan    func(s scanner) (T, error)
}

func (l logTable[T]) Insert(ctx context.Context, row *T) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(l.columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		l.table, strings.Join(l.columns, ", "), placeholders)
	if _, err := l.tx.ExecContext(ctx, query, l.values(row)...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", l.table, err)
	}
	return nil
}

func (l logTable[T]) List(ctx context.Context) ([]T, error) {
	return l.where(ctx, "1 = 1")
}

func (l logTable[T]) CountAfter(ctx context.Context, afterID int64) (int64, int64, error) {
	var n, lastID int64
	query := fmt.Sprintf("SELECT COUNT(*), COALESCE(MAX(id), ?) FROM %s WHERE id > ?", l.table)
	if err := l.tx.QueryRowContext(ctx, query, afterID, afterID).Scan(&n, &lastID); err != nil {
		return 0, 0, fmt.Errorf("failed to count %s: %w", l.table, err)
	}
	return n, lastID, nil
}

func (l logTable[T]) where(ctx context.Context, cond string, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY date, id",
		strings.Join(l.columns, ", "), l.table, cond)
	rows, err := l.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", l.table, err)
	}
	defer rows.Close()

	var result []T
	for rows.Next() {
		row, err := l.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", l.table, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", l.table, err)
	}
	return result, nil
}

// Purchases

type purchases struct {
	logTable[models.Purchase]
}

func (r purchases) ListByAccount(ctx context.Context, name string) ([]models.Purchase, error) {
	return r.where(ctx, "buyer = ? OR seller = ?", name, name)
}

func purchaseLog(tx *sql.Tx) logTable[models.Purchase] {
	return logTable[models.Purchase]{
		tx:    tx,
		table: "purchases",
		columns: []string{"event_id", "item_name", "date", "stock_date", "expiry_date",
			"buyer", "seller", "profit_split", "price_each_cents", "count", "tax"},
		values: func(p *models.Purchase) []any {
			return []any{p.EventID, p.ItemName, toNanos(p.Date), toNanos(p.StockDate), toNanos(p.ExpiryDate),
				p.Buyer, p.Seller, p.ProfitSplit.String(), p.PriceEach.Cents(), p.Count, p.Tax.String()}
		},
		scan: func(s scanner) (models.Purchase, error) {
			var (
				p                       models.Purchase
				date, stockDate, expiry int64
				split, tax              string
				priceCents              int64
			)
			err := s.Scan(&p.EventID, &p.ItemName, &date, &stockDate, &expiry,
				&p.Buyer, &p.Seller, &split, &priceCents, &p.Count, &tax)
			if err != nil {
				return p, err
			}
			p.Date, p.StockDate, p.ExpiryDate = fromNanos(date), fromNanos(stockDate), fromNanos(expiry)
			p.PriceEach = money.Cents(priceCents)
			if p.ProfitSplit, err = parseFraction(split); err != nil {
				return p, err
			}
			p.Tax, err = parseFraction(tax)
			return p, err
		},
	}
}

// Transfers

type transfers struct {
	logTable[models.Transfer]
}

func (r transfers) ListByAccount(ctx context.Context, name string) ([]models.Transfer, error) {
	return r.where(ctx, "sender = ? OR receiver = ?", name, name)
}

func transferLog(tx *sql.Tx) logTable[models.Transfer] {
	return logTable[models.Transfer]{
		tx:      tx,
		table:   "transfers",
		columns: []string{"event_id", "date", "sender", "receiver", "amount_cents"},
		values: func(t *models.Transfer) []any {
			return []any{t.EventID, toNanos(t.Date), t.Sender, t.Receiver, t.Amount.Cents()}
		},
		scan: func(s scanner) (models.Transfer, error) {
			var (
				t           models.Transfer
				date, cents int64
			)
			err := s.Scan(&t.EventID, &date, &t.Sender, &t.Receiver, &cents)
			t.Date, t.Amount = fromNanos(date), money.Cents(cents)
			return t, err
		},
	}
}

// Balance changes

type balanceChanges struct {
	logTable[models.BalanceChange]
}

func (r balanceChanges) ListByAccount(ctx context.Context, name string) ([]models.BalanceChange, error) {
	return r.where(ctx, "account = ?", name)
}

func balanceChangeLog(tx *sql.Tx) logTable[models.BalanceChange] {
	return logTable[models.BalanceChange]{
		tx:      tx,
		table:   "balance_changes",
		columns: []string{"event_id", "date", "account", "amount_cents"},
		values: func(c *models.BalanceChange) []any {
			return []any{c.EventID, toNanos(c.Date), c.Account, c.Amount.Cents()}
		},
		scan: func(s scanner) (models.BalanceChange, error) {
			var (
				c           models.BalanceChange
				date, cents int64
			)
			err := s.Scan(&c.EventID, &date, &c.Account, &cents)
			c.Date, c.Amount = fromNanos(date), money.Cents(cents)
			return c, err
		},
	}
}

// Stocking

type stocking struct {
	logTable[models.Stocking]
}

func (r stocking) ListBySeller(ctx context.Context, seller string) ([]models.Stocking, error) {
	return r.where(ctx, "seller = ?", seller)
}

func stockingLog(tx *sql.Tx) logTable[models.Stocking] {
	return logTable[models.Stocking]{
		tx:    tx,
		table: "stocking",
		columns: []string{"event_id", "item_name", "date", "stock_date", "expiry_date",
			"seller", "profit_split", "price_each_cents", "old_count", "new_count", "tax"},
		values: func(r *models.Stocking) []any {
			return []any{r.EventID, r.ItemName, toNanos(r.Date), toNanos(r.StockDate), toNanos(r.ExpiryDate),
				r.Seller, r.ProfitSplit.String(), r.PriceEach.Cents(), r.OldCount, r.NewCount, r.Tax.String()}
		},
		scan: func(s scanner) (models.Stocking, error) {
			var (
				r                       models.Stocking
				date, stockDate, expiry int64
				split, tax              string
				priceCents              int64
			)
			err := s.Scan(&r.EventID, &r.ItemName, &date, &stockDate, &expiry,
				&r.Seller, &split, &priceCents, &r.OldCount, &r.NewCount, &tax)
			if err != nil {
				return r, err
			}
			r.Date, r.StockDate, r.ExpiryDate = fromNanos(date), fromNanos(stockDate), fromNanos(expiry)
			r.PriceEach = money.Cents(priceCents)
			if r.ProfitSplit, err = parseFraction(split); err != nil {
				return r, err
			}
			r.Tax, err = parseFraction(tax)
			return r, err
		},
	}
}

// Donations

type donations struct {
	logTable[models.Donation]
}

func (r donations) Total(ctx context.Context) (money.Money, error) {
	var cents int64
	err := r.tx.QueryRowContext(ctx, "SELECT COALESCE(SUM(amount_cents), 0) FROM donations").Scan(&cents)
	if err != nil {
		return money.Zero, fmt.Errorf("failed to total donations: %w", err)
	}
	return money.Cents(cents), nil
}

func donationLog(tx *sql.Tx) logTable[models.Donation] {
	return logTable[models.Donation]{
		tx:      tx,
		table:   "donations",
		columns: []string{"event_id", "date", "amount_cents"},
		values: func(d *models.Donation) []any {
			return []any{d.EventID, toNanos(d.Date), d.Amount.Cents()}
		},
		scan: func(s scanner) (models.Donation, error) {
			var (
				d           models.Donation
				date, cents int64
			)
			err := s.Scan(&d.EventID, &date, &cents)
			d.Date, d.Amount = fromNanos(date), money.Cents(cents)
			return d, err
		},
	}
}

// Expiry events

type expiryEvents struct {
	logTable[models.ExpiryEvent]
}

func (r expiryEvents) ListBySeller(ctx context.Context, seller string) ([]models.ExpiryEvent, error) {
	return r.where(ctx, "seller = ?", seller)
}

func expiryEventLog(tx *sql.Tx) logTable[models.ExpiryEvent] {
	return logTable[models.ExpiryEvent]{
		tx:    tx,
		table: "expiry_events",
		columns: []string{"event_id", "item_name", "date", "stock_date", "expiry_date",
			"seller", "profit_split", "price_each_cents", "count", "tax"},
		values: func(e *models.ExpiryEvent) []any {
			return []any{e.EventID, e.ItemName, toNanos(e.Date), toNanos(e.StockDate), toNanos(e.ExpiryDate),
				e.Seller, e.ProfitSplit.String(), e.PriceEach.Cents(), e.Count, e.Tax.String()}
		},
		scan: func(s scanner) (models.ExpiryEvent, error) {
			var (
				e                       models.ExpiryEvent
				date, stockDate, expiry int64
				split, tax              string
				priceCents              int64
			)
			err := s.Scan(&e.EventID, &e.ItemName, &date, &stockDate, &expiry,
				&e.Seller, &split, &priceCents, &e.Count, &tax)
			if err != nil {
				return e, err
			}
			e.Date, e.StockDate, e.ExpiryDate = fromNanos(date), fromNanos(stockDate), fromNanos(expiry)
			e.PriceEach = money.Cents(priceCents)
			if e.ProfitSplit, err = parseFraction(split); err != nil {
				return e, err
			}
			e.Tax, err = parseFraction(tax)
			return e, err
		},
	}
}
