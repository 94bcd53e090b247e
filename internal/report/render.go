package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/theme"
)

// Render formats a report for the terminal.
func Render(r Result) string {
	var tabs []string
	for _, st := range model.Statuses {
		label := fmt.Sprintf("%s (%d)", st.Label(), r.Counts[st])
		if st == r.Status {
			tabs = append(tabs, theme.StatusStyle(st).Underline(true).Render(label))
		} else {
			tabs = append(tabs, theme.DimmedStyle.Padding(0, 1).Render(label))
		}
	}

	header := theme.HeaderStyle.Render("Production report")
	if r.Search != "" {
		header += " " + theme.HelpStyle.Render("search: "+r.Search)
	}

	body := theme.DimmedStyle.Render("No items.")
	if len(r.Items) > 0 {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorLine)).
			Headers("Day", "Code", "Product", "Department", "Batch", "Qty", "Planned").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return lipgloss.NewStyle().Bold(true).Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
		for _, it := range r.Items {
			qty := strconv.Itoa(it.Quantity)
			if it.HasDivergence {
				qty += "*"
			}
			t.Row(
				datebucket.DayKey(it.Day),
				it.Code,
				it.ProductName,
				it.Department,
				it.BatchNumber,
				qty,
				strconv.Itoa(it.ProgrammedQuantity),
			)
		}
		body = t.String()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Join(tabs, " "),
		body,
	)
}
