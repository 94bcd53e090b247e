package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/report"
)

var reportFlags struct {
	status string
	search string
	limit  int
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List work items by status",
	Long: `List work items in one status together with per-status counts.
Without --status the status of the previous report is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := report.Query{Search: reportFlags.search, Limit: reportFlags.limit}
		if reportFlags.status != "" {
			st, err := model.ParseStatus(reportFlags.status)
			if err != nil {
				return fmt.Errorf("invalid --status: %w", err)
			}
			q.Status = st
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := report.New(db, db, log.Logger).Run(ctx, q)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), report.Render(res))
		return nil
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportFlags.status, "status", "s", "", "PENDING, IN_PRODUCTION or COMPLETED")
	f.StringVarP(&reportFlags.search, "search", "q", "", "match code, product, batch or department")
	f.IntVar(&reportFlags.limit, "limit", 0, "maximum items (0 means all)")

	rootCmd.AddCommand(reportCmd)
}
