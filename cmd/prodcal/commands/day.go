package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/production-calendar/internal/aggregate"
	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/ordering"
	"github.com/nhle/production-calendar/internal/store"
	"github.com/nhle/production-calendar/internal/theme"
)

var dayCmd = &cobra.Command{
	Use:   "day [YYYY-MM-DD]",
	Short: "Print a day's ordered work items",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := datebucket.Normalize(time.Now())
		if len(args) == 1 {
			d, err := datebucket.ParseDay(args[0], time.Local)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			day = d
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		items, err := db.SearchItems(ctx, store.ItemFilter{From: &day, To: &day})
		if err != nil {
			return err
		}
		list := ordering.FromItems(items)
		summary := aggregate.Aggregate(list.Items())

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.HeaderStyle.Render(datebucket.Label(datebucket.Day, datebucket.DayWindow(day))))
		if list.Len() == 0 {
			fmt.Fprintln(out, theme.DimmedStyle.Render("Nothing scheduled."))
			return nil
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorLine)).
			Headers("#", "Code", "Product", "Department", "Qty", "Status")
		for i, it := range list.Items() {
			t.Row(strconv.Itoa(i+1), it.Code, it.ProductName, it.Department,
				strconv.Itoa(it.Quantity), it.Status.Label())
		}
		fmt.Fprintln(out, t.String())
		fmt.Fprintf(out, "%d/%d completed (%.0f%%), %d in production\n",
			summary.Completed, summary.Total, summary.CompletionRate*100, summary.InProgress)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dayCmd)
}
