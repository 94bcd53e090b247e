package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nhle/production-calendar/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print today's progress, recent trend and top products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		snap, err := dashboard.New(db, dashboard.Options{
			WeekStartsOn: cfg.WeekStart(),
			Logger:       log.Logger,
		}).Build(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), dashboard.Render(snap))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
