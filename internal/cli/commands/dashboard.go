package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/render"
	"github.com/cropwise-dev/cropwise/internal/cli/userconfig"
)

type menuItem struct {
	Label string
	Page  string
}

var dashboardMenu = []menuItem{
	{Label: "Predict a crop", Page: "predict"},
	{Label: "Prediction history", Page: "history"},
	{Label: "Profile", Page: "profile"},
	{Label: "Change password", Page: "change-password"},
	{Label: "Sign out", Page: "logout"},
	{Label: "Quit"},
}

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd(env *Env) *cobra.Command {
	var noMenu bool

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show your account overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := env.Client.Me(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(env.Out, "Welcome, %s!\n\n", firstNonEmpty(user.FullName, user.Email))
			render.Profile(env.Out, user)

			if local, err := userconfig.GetHistory(); err == nil && len(local) > 0 {
				last := local[0]
				fmt.Fprintf(env.Out, "\nLast prediction on this machine: %s\n", last.RecommendedCrop)
			}

			if noMenu || !env.Prompter.Interactive() {
				return nil
			}

			labels := make([]string, 0, len(dashboardMenu)+1)
			items := dashboardMenu
			if user.IsAdmin {
				items = append([]menuItem{{Label: "Manage users", Page: "admin users"}}, items...)
			}
			for _, item := range items {
				labels = append(labels, item.Label)
			}

			fmt.Fprintln(env.Out)
			index, err := env.Prompter.Select("What would you like to do?", labels)
			if err != nil {
				return err
			}
			if items[index].Page == "" {
				return nil
			}
			return runPage(cmd, items[index].Page)
		},
	}

	cmd.Flags().BoolVar(&noMenu, "no-menu", false, "Do not show the interactive menu")

	return cmd
}
