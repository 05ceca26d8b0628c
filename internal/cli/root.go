// Package cli implements limboctl, the operator command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/limbo/internal/config"
	"github.com/mmynk/limbo/internal/engine"
	"github.com/mmynk/limbo/internal/storage/sqlite"
	"github.com/mmynk/limbo/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Database   string // overrides the configured path
	Verbose    bool

	cfg *config.Config
}

// NewRootCommand creates the root command for limboctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "limboctl",
		Short: "Operate a limbo store ledger",
		Long: `limboctl works directly on the ledger database: it creates accounts,
reconciles balances against history, sweeps expired stock and exports
account history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level))

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if opts.Database != "" {
				cfg.Database.Path = opts.Database
			}
			opts.cfg = cfg
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAccountCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))
	cmd.AddCommand(NewExpireCommand(opts))
	cmd.AddCommand(NewCashCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand(opts))

	return cmd
}

// openEngine opens the configured database. The caller closes the store.
func openEngine(opts *RootOptions) (*engine.Engine, *sqlite.SQLiteStore, error) {
	if opts.cfg.Database.Path == "" {
		return nil, nil, NewExitError(ExitCommandError, "no database configured (use --db)")
	}
	store, err := sqlite.New(opts.cfg.Database.Path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to open %s", opts.cfg.Database.Path), err)
	}
	e := engine.New(store, engine.WithDefaultExpiryWeeks(opts.cfg.Engine.DefaultExpiryWeeks))
	return e, store, nil
}
