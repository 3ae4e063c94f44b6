package commands

import (
	"github.com/spf13/cobra"

	"github.com/cropwise-dev/cropwise/internal/cli/render"
	"github.com/cropwise-dev/cropwise/internal/cli/userconfig"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(env *Env) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show your recent predictions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				entries, err := userconfig.GetHistory()
				if err != nil {
					return err
				}
				render.LocalHistory(env.Out, entries)
				return nil
			}

			records, err := env.Client.History(cmd.Context())
			if err != nil {
				return err
			}
			render.History(env.Out, records)
			return nil
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Show predictions made from this machine instead")

	return cmd
}
