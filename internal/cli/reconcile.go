package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/limbo/internal/reconcile"
)

// ReconcileOptions holds flags for the reconcile command.
type ReconcileOptions struct {
	*RootOptions
	Repair bool
	Yes    bool
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReconcileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored balances with history",
		Long: `Recompute every account's balance from its history and report the
accounts whose stored balance differs.

With --repair --yes, the drifted balances are overwritten with the values
from history. The repair is refused if any of those balances changed after
the report was produced.

Exit codes:
  0 - No drift, or drift repaired
  1 - Drift found and not repaired
  2 - Command error

Examples:
  limboctl reconcile
  limboctl reconcile --repair --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Repair, "repair", false, "overwrite drifted balances with their history")
	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm the repair")

	return cmd
}

func runReconcile(opts *ReconcileOptions, cmd *cobra.Command) error {
	if opts.Repair && !opts.Yes {
		return NewExitError(ExitCommandError, "refusing to repair without --yes")
	}

	_, store, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	r := reconcile.New(store)
	report, err := r.Report(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "reconciliation failed", err)
	}
	if err := reconcile.WriteText(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.Clean() {
		return nil
	}

	if !opts.Repair {
		return NewExitError(ExitFailure, fmt.Sprintf("%d accounts drifted", len(report.Drifts)))
	}
	n, err := r.Repair(ctx, report.Drifts)
	if err != nil {
		return WrapExitError(ExitFailure, "repair failed", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nRepaired %d accounts\n", n)
	return nil
}
