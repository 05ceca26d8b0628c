package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/limbo/internal/auth"
)

// NewHashPasswordCommand creates the hash-password command.
func NewHashPasswordCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an operator password read from stdin",
		Long: `Read a password from the first line of stdin and print its bcrypt hash,
for use as LIMBO_OPERATOR_PASSWORD_HASH.

Example:
  read -rs PW && echo "$PW" | limboctl hash-password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return WrapExitError(ExitCommandError, "failed to read password", err)
			}
			hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to hash password", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
