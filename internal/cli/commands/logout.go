package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(env.Out, "✓ Signed out")
			return nil
		},
	}
}
