// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
//
// The pool is limited to a single connection: SQLite allows one writer at a
// time, and funnelling every transaction through one connection serializes
// operations that touch the same account or item. Transactions begin
// IMMEDIATE so a writer holds the lock from its first read.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Update runs fn in a transaction and commits it if fn succeeds.
func (s *SQLiteStore) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Storage(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(&sqliteTx{tx: tx}); err != nil {
		return ledger.Storage(err)
	}

	if err := tx.Commit(); err != nil {
		return ledger.Storage(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// View runs fn in a transaction that is always rolled back.
func (s *SQLiteStore) View(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Storage(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	return ledger.Storage(fn(&sqliteTx{tx: tx}))
}

// sqliteTx hands out repositories bound to one *sql.Tx.
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Accounts() storage.Accounts             { return accounts{t.tx} }
func (t *sqliteTx) Items() storage.Items                   { return items{t.tx} }
func (t *sqliteTx) Sellers() storage.Sellers               { return sellers{t.tx} }
func (t *sqliteTx) Purchases() storage.Purchases           { return purchases{purchaseLog(t.tx)} }
func (t *sqliteTx) Transfers() storage.Transfers           { return transfers{transferLog(t.tx)} }
func (t *sqliteTx) BalanceChanges() storage.BalanceChanges { return balanceChanges{balanceChangeLog(t.tx)} }
func (t *sqliteTx) Stocking() storage.Stocking             { return stocking{stockingLog(t.tx)} }
func (t *sqliteTx) Donations() storage.Donations           { return donations{donationLog(t.tx)} }
func (t *sqliteTx) ExpiryEvents() storage.ExpiryEvents     { return expiryEvents{expiryEventLog(t.tx)} }
func (t *sqliteTx) Statistics() storage.Statistics         { return statistics{t.tx} }

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// toNanos maps the zero time to the smallest date so it sorts before every row.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return math.MinInt64
	}
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func parseFraction(s string) (money.Fraction, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return money.NoFraction, fmt.Errorf("failed to parse stored fraction %q: %w", s, err)
	}
	return money.FractionOf(d), nil
}
