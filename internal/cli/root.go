package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/client"
	"github.com/cropwise-dev/cropwise/internal/cli/commands"
	"github.com/cropwise-dev/cropwise/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree around env. Commands run only after
// the route guard has allowed their page.
func NewRootCmd(env *commands.Env) *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "cropwise",
		Short: "Cropwise - crop recommendations from soil data",
		Long: `Cropwise CLI - Get crop recommendations for your soil.

Enter nitrogen, phosphorus, potassium, temperature, humidity, pH and
rainfall readings and Cropwise compares several models to pick a crop.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !env.Ready() {
				level := "warn"
				if debug {
					level = "debug"
				}
				if err := env.Setup(logger.New(os.Stderr, level, "console")); err != nil {
					return err
				}
			}

			return env.CheckAccess(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log requests and guard decisions to stderr")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cropwise version %s\n", version)
		},
	})

	// Public pages
	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewRegisterCmd(env))
	rootCmd.AddCommand(commands.NewForgotPasswordCmd(env))
	rootCmd.AddCommand(commands.NewResetPasswordCmd(env))

	// Pages behind the guard
	rootCmd.AddCommand(commands.NewDashboardCmd(env))
	rootCmd.AddCommand(commands.NewPredictCmd(env))
	rootCmd.AddCommand(commands.NewHistoryCmd(env))
	rootCmd.AddCommand(commands.NewProfileCmd(env))
	rootCmd.AddCommand(commands.NewChangePasswordCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewAdminCmd(env))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	env := &commands.Env{}
	if err := NewRootCmd(env).ExecuteContext(ctx); err != nil {
		// The guard already told the user where to go
		if !errors.Is(err, commands.ErrRedirected) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", client.UserMessage(err))
		}
		return err
	}
	return nil
}
