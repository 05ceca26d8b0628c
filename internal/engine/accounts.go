package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
)

// CreateAccount opens an account with a zero balance.
func (e *Engine) CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	name := req.Name
	if name == "" {
		return nil, fmt.Errorf("%w: account name is empty", ledger.ErrInvalidAccount)
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return nil, fmt.Errorf("%w: account name %q contains whitespace", ledger.ErrInvalidAccount, name)
	}

	account := &models.Account{
		Name:       name,
		Email:      strings.TrimSpace(req.Email),
		Balance:    money.Zero,
		ExternalID: req.ExternalID,
		JoinDate:   e.Now(),
	}
	err := e.update(ctx, "create_account", func(tx storage.Tx) error {
		return tx.Accounts().Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Account created", "account", account.Name)
	return account, nil
}

// Account looks up one account.
func (e *Engine) Account(ctx context.Context, name string) (*models.Account, error) {
	var account *models.Account
	err := e.view(ctx, "get_account", func(tx storage.Tx) error {
		var err error
		account, err = tx.Accounts().Get(ctx, name)
		return err
	})
	return account, err
}

// Accounts lists every account ordered by name.
func (e *Engine) Accounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := e.view(ctx, "list_accounts", func(tx storage.Tx) error {
		var err error
		accounts, err = tx.Accounts().List(ctx)
		return err
	})
	return accounts, err
}

// AccountNames lists every account name in order.
func (e *Engine) AccountNames(ctx context.Context) ([]string, error) {
	accounts, err := e.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	return namesOf(accounts), nil
}

// Transfer moves req.Amount from sender to receiver. Nothing is lost to
// rounding: the sum of the two balances is unchanged.
func (e *Engine) Transfer(ctx context.Context, req TransferRequest) (*models.Transfer, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive, got %s", ledger.ErrInvalidAmount, req.Amount)
	}
	if req.Sender == req.Receiver {
		return nil, fmt.Errorf("%w: cannot transfer from %s to itself", ledger.ErrInvalidAmount, req.Sender)
	}

	transfer := &models.Transfer{
		EventID:  e.newEventID(),
		Date:     e.Now(),
		Sender:   req.Sender,
		Receiver: req.Receiver,
		Amount:   req.Amount,
	}
	err := e.update(ctx, "transfer", func(tx storage.Tx) error {
		if _, err := tx.Accounts().Get(ctx, req.Sender); err != nil {
			return err
		}
		if _, err := tx.Accounts().Get(ctx, req.Receiver); err != nil {
			return err
		}

		if _, err := tx.Accounts().AddToBalance(ctx, req.Sender, req.Amount.Neg()); err != nil {
			return err
		}
		if _, err := tx.Accounts().AddToBalance(ctx, req.Receiver, req.Amount); err != nil {
			return err
		}
		return tx.Transfers().Insert(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Transfer completed", "sender", req.Sender, "receiver", req.Receiver, "amount", req.Amount.String())
	return transfer, nil
}

// Donate records cash given to the store. No account balance changes.
func (e *Engine) Donate(ctx context.Context, req DonateRequest) (*models.Donation, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: donation must be positive, got %s", ledger.ErrInvalidAmount, req.Amount)
	}

	donation := &models.Donation{
		EventID: e.newEventID(),
		Date:    e.Now(),
		Amount:  req.Amount,
	}
	err := e.update(ctx, "donate", func(tx storage.Tx) error {
		return tx.Donations().Insert(ctx, donation)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Donation recorded", "amount", req.Amount.String())
	return donation, nil
}

// ChangeBalance deposits or withdraws cash and records a BalanceChange. A
// zero amount is a no-op: the account is returned unchanged and no history
// is written.
func (e *Engine) ChangeBalance(ctx context.Context, req ChangeBalanceRequest) (*models.Account, error) {
	if req.Amount.IsZero() {
		return e.Account(ctx, req.Account)
	}

	var account *models.Account
	err := e.update(ctx, "change_balance", func(tx storage.Tx) error {
		var err error
		if account, err = tx.Accounts().Get(ctx, req.Account); err != nil {
			return err
		}
		if account.Balance, err = tx.Accounts().AddToBalance(ctx, req.Account, req.Amount); err != nil {
			return err
		}
		return tx.BalanceChanges().Insert(ctx, &models.BalanceChange{
			EventID: e.newEventID(),
			Date:    e.Now(),
			Account: req.Account,
			Amount:  req.Amount,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Balance changed", "account", req.Account, "amount", req.Amount.String(), "balance", account.Balance.String())
	return account, nil
}

// TotalCash is the cash the store should hold: every balance plus every
// donation.
func (e *Engine) TotalCash(ctx context.Context) (money.Money, error) {
	var total money.Money
	err := e.view(ctx, "total_cash", func(tx storage.Tx) error {
		var err error
		total, err = totalCash(ctx, tx)
		return err
	})
	return total, err
}

func totalCash(ctx context.Context, tx storage.Tx) (money.Money, error) {
	accounts, err := tx.Accounts().List(ctx)
	if err != nil {
		return money.Zero, err
	}
	donated, err := tx.Donations().Total(ctx)
	if err != nil {
		return money.Zero, err
	}
	total := donated
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total, nil
}

func namesOf(accounts []models.Account) []string {
	names := make([]string, len(accounts))
	for i, a := range accounts {
		names[i] = a.Name
	}
	return names
}
