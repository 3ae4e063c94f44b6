package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/prompt"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(env *Env) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a Cropwise account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name == "" {
				if name, err = env.Prompter.Input("Full name", "", prompt.ValidateRequired); err != nil {
					return fmt.Errorf("full name is required (use --name flag)")
				}
			}
			if email == "" {
				if email, err = env.Prompter.Input("Email", "", prompt.ValidateEmail); err != nil {
					return fmt.Errorf("email is required (use --email flag)")
				}
			}
			if password == "" {
				if password, err = readNewPassword(env); err != nil {
					return err
				}
			}

			if err := prompt.ValidateEmail(email); err != nil {
				return err
			}
			if err := prompt.ValidatePassword(password); err != nil {
				return err
			}

			msg, err := env.Client.Register(cmd.Context(), name, email, password)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Fprintf(env.Out, "✓ %s\n", firstNonEmpty(msg, "Registration successful"))
			fmt.Fprintln(env.Out, "\nSign in with: cropwise login")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

// readNewPassword prompts for a new password twice
func readNewPassword(env *Env) (string, error) {
	password, err := env.Prompter.Password("New password")
	if err != nil {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag)")
	}
	if err := prompt.ValidatePassword(password); err != nil {
		return "", err
	}

	confirm, err := env.Prompter.Password("Confirm password")
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}
