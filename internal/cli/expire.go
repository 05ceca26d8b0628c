package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/limbo/internal/expiry"
)

// ExpireOptions holds flags for the expire command.
type ExpireOptions struct {
	*RootOptions
	DryRun bool
}

// NewExpireCommand creates the expire command.
func NewExpireCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpireOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Remove items past their expiry date",
		Long: `Remove every item whose expiry date has passed. Each removal is recorded
in the sellers' history; balances are not touched.

Examples:
  limboctl expire --dry-run
  limboctl expire`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpire(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "list expired items without removing them")

	return cmd
}

func runExpire(opts *ExpireOptions, cmd *cobra.Command) error {
	_, store, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := expiry.NewSweeper(store).Sweep(context.Background(), expiry.Options{DryRun: opts.DryRun})
	if result != nil {
		verb := "Expired"
		if result.DryRun {
			verb = "Would expire"
		}
		for _, r := range result.Removed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d left, expired %s)\n",
				verb, r.Item.Name, r.Item.Count, r.Item.ExpiryDate.Format("2006-01-02"))
		}
		if len(result.Removed) == 0 && err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to expire")
		}
	}
	if err != nil {
		return WrapExitError(ExitFailure, "expiry sweep failed", err)
	}
	return nil
}
