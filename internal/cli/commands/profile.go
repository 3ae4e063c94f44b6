package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/prompt"
	"github.com/cropwise-dev/cropwise/internal/cli/render"
)

// NewProfileCmd creates the profile command
func NewProfileCmd(env *Env) *cobra.Command {
	var name, email string
	var edit bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := env.Client.Me(cmd.Context())
			if err != nil {
				return err
			}

			if !edit && name == "" && email == "" {
				render.Profile(env.Out, user)
				return nil
			}

			if edit {
				if name, err = env.Prompter.Input("Full name", firstNonEmpty(name, user.FullName), prompt.ValidateRequired); err != nil {
					return err
				}
				if email, err = env.Prompter.Input("Email", firstNonEmpty(email, user.Email), prompt.ValidateEmail); err != nil {
					return err
				}
			}
			name = firstNonEmpty(name, user.FullName)
			email = firstNonEmpty(email, user.Email)
			if err := prompt.ValidateEmail(email); err != nil {
				return err
			}

			msg, err := env.Client.UpdateProfile(cmd.Context(), name, email)
			if err != nil {
				return fmt.Errorf("profile update failed: %w", err)
			}
			fmt.Fprintf(env.Out, "✓ %s\n", firstNonEmpty(msg, "Profile updated"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New full name")
	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().BoolVar(&edit, "edit", false, "Edit interactively")

	return cmd
}
