package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/prompt"
)

// NewChangePasswordCmd creates the change-password command
func NewChangePasswordCmd(env *Env) *cobra.Command {
	var oldPassword, newPassword string

	cmd := &cobra.Command{
		Use:   "change-password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if oldPassword == "" {
				if oldPassword, err = env.Prompter.Password("Current password"); err != nil {
					return fmt.Errorf("current password is required in non-interactive mode (use --old flag)")
				}
			}
			if newPassword == "" {
				if newPassword, err = readNewPassword(env); err != nil {
					return err
				}
			}
			if err := prompt.ValidatePassword(newPassword); err != nil {
				return err
			}

			msg, err := env.Client.ChangePassword(cmd.Context(), oldPassword, newPassword)
			if err != nil {
				return fmt.Errorf("password change failed: %w", err)
			}
			fmt.Fprintf(env.Out, "✓ %s\n", firstNonEmpty(msg, "Password changed"))
			return nil
		},
	}

	cmd.Flags().StringVar(&oldPassword, "old", "", "Current password (will prompt if not provided)")
	cmd.Flags().StringVar(&newPassword, "new", "", "New password (will prompt if not provided)")

	return cmd
}

// NewForgotPasswordCmd creates the forgot-password command
func NewForgotPasswordCmd(env *Env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = env.Prompter.Input("Email", "", prompt.ValidateEmail); err != nil {
					return fmt.Errorf("email is required (use --email flag)")
				}
			}

			resp, err := env.Client.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return err
			}

			fmt.Fprintln(env.Out, resp.Message)
			if resp.ResetToken != "" {
				fmt.Fprintf(env.Out, "\nReset token: %s\n", resp.ResetToken)
				fmt.Fprintf(env.Out, "Run: cropwise reset-password --token %s\n", resp.ResetToken)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account")

	return cmd
}

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd(env *Env) *cobra.Command {
	var token, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if token == "" {
				if token, err = env.Prompter.Input("Reset token", "", prompt.ValidateRequired); err != nil {
					return fmt.Errorf("reset token is required (use --token flag)")
				}
			}
			if password == "" {
				if password, err = readNewPassword(env); err != nil {
					return err
				}
			}
			if err := prompt.ValidatePassword(password); err != nil {
				return err
			}

			msg, err := env.Client.ResetPassword(cmd.Context(), token, password)
			if err != nil {
				return fmt.Errorf("password reset failed: %w", err)
			}
			fmt.Fprintf(env.Out, "✓ %s\n", firstNonEmpty(msg, "Password reset"))
			fmt.Fprintln(env.Out, "\nSign in with: cropwise login")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Reset token from forgot-password")
	cmd.Flags().StringVar(&password, "password", "", "New password (will prompt if not provided)")

	return cmd
}
