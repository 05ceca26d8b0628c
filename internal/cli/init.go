package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	WriteConfig string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the ledger database",
		Long: `Create the ledger database and its tables. Running init on an existing
database is safe; missing tables are created and nothing else changes.

Examples:
  limboctl init --db ./data/limbo.db
  limboctl init --write-config ./limbo.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.WriteConfig, "write-config", "", "also write the effective config to this path")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	_, store, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.WriteConfig != "" {
		if err := opts.cfg.Save(opts.WriteConfig); err != nil {
			return WrapExitError(ExitCommandError, "failed to write config", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", opts.WriteConfig)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger at %s\n", opts.cfg.Database.Path)
	return nil
}
