package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/limbo/internal/calculator"
	"github.com/mmynk/limbo/internal/engine"
	"github.com/mmynk/limbo/internal/money"
	"github.com/mmynk/limbo/internal/storage"
	"github.com/mmynk/limbo/internal/storage/sqlite"
)

// execute runs limboctl with args against the database at dbPath.
func execute(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func newTestDB(t *testing.T, accounts ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "limbo.db")
	_, err := execute(t, dbPath, "", "init")
	require.NoError(t, err)
	for _, name := range accounts {
		_, err := execute(t, dbPath, "", "account", "add", name, "--email", name+"@example.com")
		require.NoError(t, err)
	}
	return dbPath
}

// withStore opens the database directly, for setting up state the CLI
// cannot produce.
func withStore(t *testing.T, dbPath string, fn func(store *sqlite.SQLiteStore)) {
	t.Helper()
	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()
	fn(store)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "limbo.db")
	cfgPath := filepath.Join(dir, "limbo.yaml")

	out, err := execute(t, dbPath, "", "init", "--write-config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized ledger at "+dbPath)

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), dbPath)
}

func TestAccountCommands(t *testing.T) {
	dbPath := newTestDB(t, "alice", "bob")

	_, err := execute(t, dbPath, "", "account", "add", "alice")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, dbPath, "", "account", "deposit", "alice", "10.00")
	require.NoError(t, err)
	assert.Contains(t, out, "alice balance: $10.00")

	out, err = execute(t, dbPath, "", "account", "withdraw", "alice", "2.50")
	require.NoError(t, err)
	assert.Contains(t, out, "alice balance: $7.50")

	_, err = execute(t, dbPath, "", "account", "deposit", "alice", "zero")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err = execute(t, dbPath, "", "account", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "alice")
	assert.Contains(t, lines[1], "$7.50")
	assert.Contains(t, lines[2], "bob")

	out, err = execute(t, dbPath, "", "cash")
	require.NoError(t, err)
	assert.Equal(t, "Total cash: $7.50\n", out)
}

func TestReconcileCommand(t *testing.T) {
	dbPath := newTestDB(t, "alice")
	_, err := execute(t, dbPath, "", "account", "deposit", "alice", "4.00")
	require.NoError(t, err)

	out, err := execute(t, dbPath, "", "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "No drift")

	ctx := context.Background()
	withStore(t, dbPath, func(store *sqlite.SQLiteStore) {
		require.NoError(t, store.Update(ctx, func(tx storage.Tx) error {
			return tx.Accounts().SetBalance(ctx, "alice", money.MustParse("9.00"))
		}))
	})

	out, err = execute(t, dbPath, "", "reconcile")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "1 of 1 accounts drifted")

	_, err = execute(t, dbPath, "", "reconcile", "--repair")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err = execute(t, dbPath, "", "reconcile", "--repair", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Repaired 1 accounts")

	out, err = execute(t, dbPath, "", "account", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "$4.00")
}

func TestExpireCommand(t *testing.T) {
	dbPath := newTestDB(t, "bob")

	// Stock milk three weeks ago with a one-week shelf life.
	stocked := time.Now().Add(-21 * 24 * time.Hour)
	withStore(t, dbPath, func(store *sqlite.SQLiteStore) {
		e := engine.New(store, engine.WithClock(func() time.Time { return stocked }))
		_, err := e.Restock(context.Background(), engine.RestockRequest{
			Item:        "milk",
			Sellers:     []calculator.Share{calculator.Remainder("bob")},
			Count:       2,
			UnitPrice:   money.MustParse("0.80"),
			ExpiryWeeks: 1,
		})
		require.NoError(t, err)
	})

	out, err := execute(t, dbPath, "", "expire", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would expire milk (2 left")

	out, err = execute(t, dbPath, "", "expire")
	require.NoError(t, err)
	assert.Contains(t, out, "Expired milk")

	out, err = execute(t, dbPath, "", "expire")
	require.NoError(t, err)
	assert.Equal(t, "Nothing to expire\n", out)

	out, err = execute(t, dbPath, "", "export", "bob")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "kind,date,event_id"))
	assert.True(t, strings.HasPrefix(lines[1], "stocking,"))
	assert.True(t, strings.HasPrefix(lines[2], "expiry,"))
}

func TestExportCommand_ToFile(t *testing.T) {
	dbPath := newTestDB(t, "alice")
	_, err := execute(t, dbPath, "", "account", "deposit", "alice", "1.00")
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "alice.csv")
	out, err := execute(t, dbPath, "", "export", "alice", "-o", outPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "balance_change,")

	_, err = execute(t, dbPath, "", "export", "mallory")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestStatsCommand(t *testing.T) {
	dbPath := newTestDB(t, "alice", "bob")
	_, err := execute(t, dbPath, "", "account", "deposit", "alice", "3.00")
	require.NoError(t, err)

	out, err := execute(t, dbPath, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Average balance: $1.50")
	assert.Contains(t, out, "Expected cash:   $3.00")
	assert.Contains(t, out, "Transactions:    1")
}

func TestHashPasswordCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "limbo.db")

	out, err := execute(t, dbPath, "correct horse battery\n", "hash-password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "$2a$"), "got %q", out)

	_, err = execute(t, dbPath, "short\n", "hash-password")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	wrapped := WrapExitError(ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
}
