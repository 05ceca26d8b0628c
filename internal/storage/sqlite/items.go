package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
)

type items struct {
	tx *sql.Tx
}

const itemColumns = "name, count, price_cents, tax, stock_date, expiry_date, description"

// Create inserts a new active item.
func (r items) Create(ctx context.Context, item *models.Item) error {
	var exists int
	err := r.tx.QueryRowContext(ctx, "SELECT 1 FROM items WHERE name = ?", item.Name).Scan(&exists)
	if err == nil {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateItem, item.Name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check item existence: %w", err)
	}

	_, err = r.tx.ExecContext(ctx,
		"INSERT INTO items ("+itemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		item.Name,
		item.Count,
		item.UnitPrice.Cents(),
		item.Tax.String(),
		toNanos(item.StockDate),
		toNanos(item.ExpiryDate),
		item.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Get retrieves an active item by name.
func (r items) Get(ctx context.Context, name string) (*models.Item, error) {
	row := r.tx.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE name = ?", name)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownItem, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// List retrieves all active items ordered by name.
func (r items) List(ctx context.Context) ([]models.Item, error) {
	return r.query(ctx, "SELECT "+itemColumns+" FROM items ORDER BY name")
}

// ListExpired retrieves items whose expiry date is strictly before now.
func (r items) ListExpired(ctx context.Context, now time.Time) ([]models.Item, error) {
	return r.query(ctx,
		"SELECT "+itemColumns+" FROM items WHERE expiry_date < ? ORDER BY expiry_date, name",
		toNanos(now),
	)
}

// SetCount overwrites an item's count.
func (r items) SetCount(ctx context.Context, name string, count int64) error {
	if count <= 0 {
		return fmt.Errorf("%w: item count must stay positive, got %d", ledger.ErrInsufficientStock, count)
	}
	res, err := r.tx.ExecContext(ctx, "UPDATE items SET count = ? WHERE name = ?", count, name)
	if err != nil {
		return fmt.Errorf("failed to set item count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set item count: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrUnknownItem, name)
	}
	return nil
}

// Delete removes an item and its seller assignments.
func (r items) Delete(ctx context.Context, name string) error {
	// Sellers first so the delete does not depend on the cascade pragma.
	if _, err := r.tx.ExecContext(ctx, "DELETE FROM sellers WHERE item_name = ?", name); err != nil {
		return fmt.Errorf("failed to delete sellers: %w", err)
	}
	res, err := r.tx.ExecContext(ctx, "DELETE FROM items WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrUnknownItem, name)
	}
	return nil
}

func (r items) query(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var result []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return result, nil
}

func scanItem(row scanner) (*models.Item, error) {
	var (
		item       models.Item
		priceCents int64
		tax        string
		stockDate  int64
		expiryDate int64
	)
	if err := row.Scan(&item.Name, &item.Count, &priceCents, &tax, &stockDate, &expiryDate, &item.Description); err != nil {
		return nil, err
	}
	f, err := parseFraction(tax)
	if err != nil {
		return nil, err
	}
	item.UnitPrice = money.Cents(priceCents)
	item.Tax = f
	item.StockDate = fromNanos(stockDate)
	item.ExpiryDate = fromNanos(expiryDate)
	return &item, nil
}

type sellers struct {
	tx *sql.Tx
}

// Add appends a seller assignment after any existing ones for the item.
func (r sellers) Add(ctx context.Context, a *models.SellerAssignment) error {
	_, err := r.tx.ExecContext(ctx, `
		INSERT INTO sellers (item_name, seller, profit_split, position)
		VALUES (?, ?, ?, (SELECT COUNT(*) FROM sellers WHERE item_name = ?))
	`, a.ItemName, a.Seller, a.ProfitSplit.String(), a.ItemName)
	if err != nil {
		return fmt.Errorf("failed to add seller: %w", err)
	}
	return nil
}

// ListByItem returns an item's sellers in the order they were added.
func (r sellers) ListByItem(ctx context.Context, itemName string) ([]models.SellerAssignment, error) {
	return r.query(ctx,
		"SELECT item_name, seller, profit_split FROM sellers WHERE item_name = ? ORDER BY position",
		itemName,
	)
}

// ListBySeller returns every active assignment of one seller.
func (r sellers) ListBySeller(ctx context.Context, seller string) ([]models.SellerAssignment, error) {
	return r.query(ctx,
		"SELECT item_name, seller, profit_split FROM sellers WHERE seller = ? ORDER BY item_name",
		seller,
	)
}

// List returns every active assignment.
func (r sellers) List(ctx context.Context) ([]models.SellerAssignment, error) {
	return r.query(ctx, "SELECT item_name, seller, profit_split FROM sellers ORDER BY item_name, position")
}

func (r sellers) query(ctx context.Context, query string, args ...any) ([]models.SellerAssignment, error) {
	rows, err := r.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}
	defer rows.Close()

	var result []models.SellerAssignment
	for rows.Next() {
		var (
			a     models.SellerAssignment
			split string
		)
		if err := rows.Scan(&a.ItemName, &a.Seller, &split); err != nil {
			return nil, fmt.Errorf("failed to scan seller: %w", err)
		}
		if a.ProfitSplit, err = parseFraction(split); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sellers: %w", err)
	}
	return result, nil
}
