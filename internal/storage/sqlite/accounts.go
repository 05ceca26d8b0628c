package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
)

type accounts struct {
	tx *sql.Tx
}

const accountColumns = "name, email, balance_cents, external_id, join_date"

// Create inserts a new account into the database.
func (r accounts) Create(ctx context.Context, account *models.Account) error {
	var exists int
	err := r.tx.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE name = ?", account.Name).Scan(&exists)
	if err == nil {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateAccount, account.Name)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check account existence: %w", err)
	}

	_, err = r.tx.ExecContext(ctx,
		"INSERT INTO accounts ("+accountColumns+") VALUES (?, ?, ?, ?, ?)",
		account.Name,
		account.Email,
		account.Balance.Cents(),
		account.ExternalID,
		toNanos(account.JoinDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// Get retrieves an account by name.
func (r accounts) Get(ctx context.Context, name string) (*models.Account, error) {
	row := r.tx.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE name = ?",
		name,
	)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownAccount, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// List retrieves all accounts ordered by name.
func (r accounts) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.tx.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		result = append(result, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return result, nil
}

// AddToBalance credits (or, for a negative delta, debits) an account. A
// result that would overflow fails with ledger.ErrInvalidAmount.
func (r accounts) AddToBalance(ctx context.Context, name string, delta money.Money) (money.Money, error) {
	var cents int64
	err := r.tx.QueryRowContext(ctx,
		"SELECT balance_cents FROM accounts WHERE name = ?", name,
	).Scan(&cents)
	if errors.Is(err, sql.ErrNoRows) {
		return money.Zero, fmt.Errorf("%w: %s", ledger.ErrUnknownAccount, name)
	}
	if err != nil {
		return money.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	balance, err := money.Cents(cents).CheckedAdd(delta)
	if err != nil {
		return money.Zero, fmt.Errorf("balance of %s: %w", name, err)
	}
	if err := r.SetBalance(ctx, name, balance); err != nil {
		return money.Zero, err
	}
	return balance, nil
}

// SetBalance overwrites an account's balance.
func (r accounts) SetBalance(ctx context.Context, name string, balance money.Money) error {
	res, err := r.tx.ExecContext(ctx,
		"UPDATE accounts SET balance_cents = ? WHERE name = ?",
		balance.Cents(), name,
	)
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrUnknownAccount, name)
	}
	return nil
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		account  models.Account
		cents    int64
		joinDate int64
	)
	if err := row.Scan(&account.Name, &account.Email, &cents, &account.ExternalID, &joinDate); err != nil {
		return nil, err
	}
	account.Balance = money.Cents(cents)
	account.JoinDate = fromNanos(joinDate)
	return &account, nil
}
