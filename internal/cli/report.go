package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/limbo/internal/history"
)

// NewCashCommand creates the cash command.
func NewCashCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cash",
		Short: "Print the cash the store should hold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, store, err := openEngine(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			total, err := e.TotalCash(context.Background())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to total cash", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total cash: %s\n", total)
			return nil
		},
	}
}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Export an account's history as CSV",
		Long: `Write every history row that mentions an account as CSV, oldest first.

Examples:
  limboctl export alice
  limboctl export alice -o alice.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, store, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer store.Close()

			h, err := e.AccountHistory(context.Background(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read history", err)
			}

			w := cmd.OutOrStdout()
			if opts.Output != "" {
				f, err := os.Create(opts.Output)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to create output file", err)
				}
				defer f.Close()
				w = f
			}
			return history.WriteCSV(w, h)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Record a statistics snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, store, err := openEngine(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			record, err := e.RecordStatistics(context.Background())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to record statistics", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Average balance: %s\n", record.AverageBalance)
			fmt.Fprintf(out, "Expected cash:   %s\n", record.ExpectedCash)
			fmt.Fprintf(out, "Transactions:    %d\n", record.Transactions)
			return nil
		},
	}
}
