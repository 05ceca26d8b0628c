package sqlite

import (
	"context"
	"database/sql"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money columns hold whole cents, fraction columns hold exact decimal text,
// dates hold UTC unix nanoseconds.
// IMPORTANT: accounts and items must be created BEFORE sellers due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    name TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    balance_cents INTEGER NOT NULL DEFAULT 0,
    external_id INTEGER NOT NULL DEFAULT 0,
    join_date INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    name TEXT PRIMARY KEY,
    count INTEGER NOT NULL CHECK (count > 0),
    price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
    tax TEXT NOT NULL,
    stock_date INTEGER NOT NULL,
    expiry_date INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sellers (
    item_name TEXT NOT NULL,
    seller TEXT NOT NULL,
    profit_split TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (item_name, seller),
    FOREIGN KEY (item_name) REFERENCES items(name) ON DELETE CASCADE,
    FOREIGN KEY (seller) REFERENCES accounts(name)
);

CREATE TABLE IF NOT EXISTS purchases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL,
    item_name TEXT NOT NULL,
    date INTEGER NOT NULL,
    stock_date INTEGER NOT NULL,
    expiry_date INTEGER NOT NULL,
    buyer TEXT NOT NULL,
    seller TEXT NOT NULL,
    profit_split TEXT NOT NULL,
    price_each_cents INTEGER NOT NULL,
    count INTEGER NOT NULL,
    tax TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transfers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL,
    date INTEGER NOT NULL,
    sender TEXT NOT NULL,
    receiver TEXT NOT NULL,
    amount_cents INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS balance_changes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL,
    date INTEGER NOT NULL,
    account TEXT NOT NULL,
    amount_cents INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS stocking (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL,
    item_name TEXT NOT NULL,
    date INTEGER NOT NULL,
    stock_date INTEGER NOT NULL,
    expiry_date INTEGER NOT NULL,
    seller TEXT NOT NULL,
    profit_split TEXT NOT NULL,
    price_each_cents INTEGER NOT NULL,
    old_count INTEGER NOT NULL,
    new_count INTEGER NOT NULL,
    tax TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS donations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL,
    date INTEGER NOT NULL,
    amount_cents INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS expiry_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL,
    item_name TEXT NOT NULL,
    date INTEGER NOT NULL,
    stock_date INTEGER NOT NULL,
    expiry_date INTEGER NOT NULL,
    seller TEXT NOT NULL,
    profit_split TEXT NOT NULL,
    price_each_cents INTEGER NOT NULL,
    count INTEGER NOT NULL,
    tax TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS statistics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date INTEGER NOT NULL,
    average_balance_cents INTEGER NOT NULL,
    expected_cash_cents INTEGER NOT NULL,
    transactions INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS statistics_watermarks (
    log TEXT PRIMARY KEY,
    last_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_expiry_date ON items(expiry_date);
CREATE INDEX IF NOT EXISTS idx_sellers_seller ON sellers(seller);
CREATE INDEX IF NOT EXISTS idx_purchases_buyer ON purchases(buyer);
CREATE INDEX IF NOT EXISTS idx_purchases_seller ON purchases(seller);
CREATE INDEX IF NOT EXISTS idx_transfers_sender ON transfers(sender);
CREATE INDEX IF NOT EXISTS idx_transfers_receiver ON transfers(receiver);
CREATE INDEX IF NOT EXISTS idx_balance_changes_account ON balance_changes(account);
CREATE INDEX IF NOT EXISTS idx_stocking_seller ON stocking(seller);
CREATE INDEX IF NOT EXISTS idx_expiry_events_seller ON expiry_events(seller);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
