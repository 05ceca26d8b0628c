package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/limbo/internal/ledger"
	"github.com/mmynk/limbo/internal/models"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
)

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "alice")

	account, err := e.CreateAccount(ctx, CreateAccountRequest{Name: "bob", Email: " bob@example.com ", ExternalID: 7})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", account.Email)
	assert.True(t, account.Balance.IsZero())
	assert.Equal(t, testNow, account.JoinDate)

	_, err = e.CreateAccount(ctx, CreateAccountRequest{Name: "alice"})
	require.ErrorIs(t, err, ledger.ErrDuplicateAccount)

	for _, name := range []string{"", "two words", " padded"} {
		_, err = e.CreateAccount(ctx, CreateAccountRequest{Name: name})
		require.ErrorIs(t, err, ledger.ErrInvalidAccount, "name %q", name)
	}

	names, err := e.AccountNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)

	_, err = e.Account(ctx, "mallory")
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "alice", "bob")
	_, err := e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("10.00")})
	require.NoError(t, err)

	transfer, err := e.Transfer(ctx, TransferRequest{Sender: "alice", Receiver: "bob", Amount: money.MustParse("2.50")})
	require.NoError(t, err)
	assert.NotEmpty(t, transfer.EventID)
	assert.Equal(t, money.MustParse("7.50"), balance(t, e, "alice"))
	assert.Equal(t, money.MustParse("2.50"), balance(t, e, "bob"))

	tests := []struct {
		name    string
		req     TransferRequest
		wantErr error
	}{
		{name: "zero amount", req: TransferRequest{Sender: "alice", Receiver: "bob", Amount: money.Zero}, wantErr: ledger.ErrInvalidAmount},
		{name: "negative amount", req: TransferRequest{Sender: "alice", Receiver: "bob", Amount: money.MustParse("-1.00")}, wantErr: ledger.ErrInvalidAmount},
		{name: "to self", req: TransferRequest{Sender: "alice", Receiver: "alice", Amount: money.MustParse("1.00")}, wantErr: ledger.ErrInvalidAmount},
		{name: "unknown receiver", req: TransferRequest{Sender: "alice", Receiver: "mallory", Amount: money.MustParse("1.00")}, wantErr: ledger.ErrUnknownAccount},
		{name: "unknown sender", req: TransferRequest{Sender: "mallory", Receiver: "bob", Amount: money.MustParse("1.00")}, wantErr: ledger.ErrUnknownAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Transfer(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, money.MustParse("10.00"), balance(t, e, "alice").Add(balance(t, e, "bob")))
		})
	}

	history, err := e.AccountHistory(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, history.Transfers, 1)
}

func TestDonate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "alice")
	_, err := e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("3.00")})
	require.NoError(t, err)

	before, err := e.TotalCash(ctx)
	require.NoError(t, err)

	_, err = e.Donate(ctx, DonateRequest{Amount: money.MustParse("5.00")})
	require.NoError(t, err)

	after, err := e.TotalCash(ctx)
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("5.00"), after.Sub(before))
	assert.Equal(t, money.MustParse("3.00"), balance(t, e, "alice"))

	for _, amount := range []string{"0", "-5.00"} {
		_, err = e.Donate(ctx, DonateRequest{Amount: money.MustParse(amount)})
		require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	}
}

func TestChangeBalance(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "alice")

	account, err := e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("4.00")})
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("4.00"), account.Balance)

	account, err = e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("-6.25")})
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("-2.25"), account.Balance, "balances may go negative")

	account, err = e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "alice", Amount: money.Zero})
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("-2.25"), account.Balance)

	history, err := e.AccountHistory(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, history.BalanceChanges, 2, "a zero change must not be recorded")

	_, err = e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "mallory", Amount: money.MustParse("1.00")})
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)
	_, err = e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "mallory", Amount: money.Zero})
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)

	require.NoError(t, e.Store().Update(ctx, func(tx storage.Tx) error {
		return tx.Accounts().SetBalance(ctx, "alice", money.Cents(math.MaxInt64-50))
	}))
	_, err = e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("1.00")})
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	assert.Equal(t, money.Cents(math.MaxInt64-50), balance(t, e, "alice"))
	history, err = e.AccountHistory(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, history.BalanceChanges, 2)
}

func TestStoreInfo(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "alice", "bob", "carol")
	stockWidget(t, e)
	_, err := e.Checkout(ctx, CheckoutRequest{Item: "widget", Buyer: "carol", Count: 1})
	require.NoError(t, err)

	info, err := e.StoreInfo(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Account.Name)
	assert.Equal(t, []string{"alice", "bob", "carol"}, info.AccountNames)
	assert.Equal(t, []string{"widget"}, info.OwnItems)
	require.Len(t, info.Inventory, 1)
	assert.Len(t, info.Inventory[0].Sellers, 2)
	assert.Len(t, info.History.Purchases, 1)
	assert.Len(t, info.History.Stocking, 1)

	_, err = e.StoreInfo(ctx, "mallory")
	require.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestRecordStatistics(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, "alice", "bob", "carol")
	clock := testNow
	e.now = func() time.Time { return clock }

	_, err := e.ChangeBalance(ctx, ChangeBalanceRequest{Account: "alice", Amount: money.MustParse("10.00")})
	require.NoError(t, err)
	_, err = e.Donate(ctx, DonateRequest{Amount: money.MustParse("1.00")})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	first, err := e.RecordStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("3.33"), first.AverageBalance)
	assert.Equal(t, money.MustParse("11.00"), first.ExpectedCash)
	assert.Equal(t, int64(2), first.Transactions)

	clock = clock.Add(time.Hour)
	_, err = e.Transfer(ctx, TransferRequest{Sender: "alice", Receiver: "bob", Amount: money.MustParse("1.00")})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second, err := e.RecordStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.Transactions, "counts only rows since the previous record")

	// A row dated before the previous record but written after it.
	clock = second.Date.Add(-30 * time.Minute)
	_, err = e.Donate(ctx, DonateRequest{Amount: money.MustParse("0.50")})
	require.NoError(t, err)

	clock = second.Date.Add(time.Hour)
	third, err := e.RecordStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), third.Transactions)

	clock = clock.Add(time.Hour)
	fourth, err := e.RecordStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, fourth.Transactions)

	var records []models.StatisticsRecord
	snapshot(t, e, func(tx storage.Tx) error {
		records, err = tx.Statistics().List(ctx)
		return err
	})
	assert.Len(t, records, 4)
}
