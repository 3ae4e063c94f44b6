package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/prompt"
	"github.com/cropwise-dev/cropwise/internal/cli/userconfig"
)

const (
	emailEnv    = "CROPWISE_EMAIL"
	passwordEnv = "CROPWISE_PASSWORD"
)

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Cropwise",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, env, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set CROPWISE_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set CROPWISE_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, env *Env, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	email = firstNonEmpty(email, os.Getenv(emailEnv))
	if password == "" {
		password = os.Getenv(passwordEnv)
	}

	if email == "" {
		lastEmail, err := userconfig.GetLastEmail()
		if err != nil {
			env.Logger.Debug().Err(err).Msg("Could not read last email")
		}
		email, err = env.Prompter.Input("Email", lastEmail, prompt.ValidateEmail)
		if err != nil {
			return fmt.Errorf("email is required (use --email flag or %s env var)", emailEnv)
		}
	}

	if password == "" {
		var err error
		password, err = env.Prompter.Password("Password")
		if err != nil {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or %s env var)", passwordEnv)
		}
	}

	fmt.Fprintf(env.Out, "Signing in to %s...\n", env.Client.BaseURL())

	loginResp, err := env.Client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := userconfig.SetLastEmail(email); err != nil {
		env.Logger.Warn().Err(err).Msg("Failed to remember email")
	}

	fmt.Fprintln(env.Out, "✓ Login successful!")
	fmt.Fprintf(env.Out, "  User: %s (%s)\n", loginResp.User.FullName, loginResp.User.Email)
	if loginResp.User.IsAdmin {
		fmt.Fprintln(env.Out, "  Role: Admin")
	}

	return nil
}
