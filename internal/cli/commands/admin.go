package commands

import (
	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/render"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator tools",
	}

	cmd.AddCommand(newAdminUsersCmd(env))
	cmd.AddCommand(newAdminPredictionsCmd(env))

	return cmd
}

type pageFlags struct {
	page    int
	perPage int
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", 1, "Page number")
	cmd.Flags().IntVar(&p.perPage, "per-page", 20, "Rows per page (max 100)")
}

func newAdminUsersCmd(env *Env) *cobra.Command {
	var pf pageFlags

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := env.Client.AdminUsers(cmd.Context(), pf.page, pf.perPage)
			if err != nil {
				return err
			}
			render.Users(env.Out, users)
			return nil
		},
	}
	pf.register(cmd)

	return cmd
}

func newAdminPredictionsCmd(env *Env) *cobra.Command {
	var pf pageFlags

	cmd := &cobra.Command{
		Use:   "predictions",
		Short: "List predictions from all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := env.Client.AdminPredictions(cmd.Context(), pf.page, pf.perPage)
			if err != nil {
				return err
			}
			render.AdminPredictions(env.Out, records)
			return nil
		},
	}
	pf.register(cmd)

	return cmd
}
