package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Assure-Desk/assuredesk/internal/domain/auth"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Generate an argon2id hash for a password",
	Long: `Generate an argon2id hash of a password for use in fixture files.

The output is a standard argon2id encoded string which can be placed in
the users[].password field of a seed fixture file instead of a plain
password.

Example:
  assuredesk hash-password "correct horse battery staple"

Security note: The password will appear in shell history.
Consider clearing history after use or using an environment variable:
  assuredesk hash-password "$SEED_PASSWORD"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
