package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
)

var addFlags struct {
	date       string
	code       string
	name       string
	quantity   int
	department string
	batch      string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Schedule a work item on a production day",
	Example: `  prodcal add --date 2026-03-13 --code P-100 --name "Widget" --qty 250 --dept Assembly`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day := datebucket.Normalize(time.Now())
		if addFlags.date != "" {
			d, err := datebucket.ParseDay(addFlags.date, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			day = d
		}
		if addFlags.quantity < 0 {
			return fmt.Errorf("--qty must not be negative")
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		item, err := db.CreateItem(ctx, model.WorkItem{
			Day:         day,
			Code:        addFlags.code,
			ProductName: addFlags.name,
			Department:  addFlags.department,
			BatchNumber: addFlags.batch,
			Quantity:    addFlags.quantity,
		})
		if err != nil {
			return err
		}

		log.Info().
			Str("item", item.ID).
			Str("day", datebucket.DayKey(item.Day)).
			Msg("work item scheduled")
		fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s (%s) on %s as %s\n",
			item.Code, item.ProductName, datebucket.DayKey(item.Day), item.ID)
		return nil
	},
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addFlags.date, "date", "", "production day YYYY-MM-DD (default today)")
	f.StringVar(&addFlags.code, "code", "", "product code")
	f.StringVar(&addFlags.name, "name", "", "product name")
	f.IntVar(&addFlags.quantity, "qty", 0, "programmed quantity")
	f.StringVar(&addFlags.department, "dept", "", "department")
	f.StringVar(&addFlags.batch, "batch", "", "batch number")
	_ = addCmd.MarkFlagRequired("code")
	_ = addCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(addCmd)
}
