package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/limbo/internal/engine"
	"github.com/mmynk/limbo/internal/money"
)

// AccountOptions holds flags for the account add command.
type AccountOptions struct {
	*RootOptions
	Email      string
	ExternalID int64
}

// NewAccountCommand creates the account command and its subcommands.
func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage member accounts",
	}

	cmd.AddCommand(newAccountAddCommand(rootOpts))
	cmd.AddCommand(newAccountListCommand(rootOpts))
	cmd.AddCommand(newBalanceChangeCommand(rootOpts, "deposit", "Record cash paid in by a member", false))
	cmd.AddCommand(newBalanceChangeCommand(rootOpts, "withdraw", "Record cash paid out to a member", true))

	return cmd
}

func newAccountAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AccountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create an account with a zero balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, store, err := openEngine(opts.RootOptions)
			if err != nil {
				return err
			}
			defer store.Close()

			account, err := e.CreateAccount(context.Background(), engine.CreateAccountRequest{
				Name:       args[0],
				Email:      opts.Email,
				ExternalID: opts.ExternalID,
			})
			if err != nil {
				return WrapExitError(ExitFailure, "failed to create account", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %s\n", account.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "contact email")
	cmd.Flags().Int64Var(&opts.ExternalID, "external-id", 0, "id in an external member directory")

	return cmd
}

func newAccountListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, store, err := openEngine(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			accounts, err := e.Accounts(context.Background())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to list accounts", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBALANCE\tEMAIL")
			for _, a := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, a.Balance, a.Email)
			}
			return w.Flush()
		},
	}
}

// newBalanceChangeCommand takes a positive amount; withdraw negates it.
func newBalanceChangeCommand(opts *RootOptions, use, short string, negate bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME AMOUNT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[1])
			if err != nil || !amount.IsPositive() {
				return NewExitError(ExitCommandError, fmt.Sprintf("amount must be positive, got %q", args[1]))
			}
			if negate {
				amount = amount.Neg()
			}

			e, store, err := openEngine(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			account, err := e.ChangeBalance(context.Background(), engine.ChangeBalanceRequest{Account: args[0], Amount: amount})
			if err != nil {
				return WrapExitError(ExitFailure, "failed to change balance", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s balance: %s\n", account.Name, account.Balance)
			return nil
		},
	}
}
