package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/production-calendar/internal/aggregate"
	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/theme"
)

// Render formats a snapshot for the terminal.
func Render(s Snapshot) string {
	sections := []string{
		theme.HeaderStyle.Render("Production dashboard " + datebucket.DayKey(s.Date)),
		renderToday(s.Today),
		theme.TitleStyle.Render(fmt.Sprintf("Last %d days", len(s.Trend))),
		dayTable(s.Trend),
		theme.TitleStyle.Render(datebucket.Label(datebucket.Week, s.Week)),
		dayTable(s.WeekDays),
		theme.TitleStyle.Render(fmt.Sprintf("Top products (%d days)", HistoryDays)),
		productTable(s.TopProducts),
		theme.TitleStyle.Render("Departments"),
		departmentTable(s.Departments),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderToday(a aggregate.WindowAggregate) string {
	if a.Total == 0 {
		return theme.DimmedStyle.Render("Nothing scheduled today.")
	}
	lines := []string{
		fmt.Sprintf("Completed %d/%d  %s",
			a.Completed, a.Total,
			theme.RateStyle(a.CompletionRate).Render(percent(a.CompletionRate))),
		fmt.Sprintf("In production %d  Pending %d", a.InProgress, a.Pending),
		fmt.Sprintf("Quantity %d of %d programmed", a.Quantity, a.ProgrammedQuantity),
	}
	if a.Divergences > 0 {
		lines = append(lines, theme.DivergenceStyle.Render(
			fmt.Sprintf("%d item(s) with divergent quantity", a.Divergences)))
	}
	return strings.Join(lines, "\n") + "\n"
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorLine)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func dayTable(days []aggregate.DayAggregate) string {
	t := newTable("Day", "Pending", "In production", "Completed", "Rate", "Quantity")
	for _, d := range days {
		t.Row(
			d.Date.Format("Mon 02/01"),
			strconv.Itoa(d.Pending),
			strconv.Itoa(d.InProgress),
			strconv.Itoa(d.Completed),
			percent(d.CompletionRate),
			strconv.Itoa(d.Quantity),
		)
	}
	return t.String()
}

func productTable(products []aggregate.ProductTotal) string {
	if len(products) == 0 {
		return theme.DimmedStyle.Render("No production recorded.") + "\n"
	}
	t := newTable("#", "Product", "Quantity")
	for i, p := range products {
		t.Row(strconv.Itoa(i+1), p.Name, strconv.Itoa(p.Quantity))
	}
	return t.String()
}

func departmentTable(departments []aggregate.DepartmentTotal) string {
	if len(departments) == 0 {
		return theme.DimmedStyle.Render("No departments.") + "\n"
	}
	t := newTable("Department", "Completed", "Open")
	for _, d := range departments {
		t.Row(d.Name, strconv.Itoa(d.Completed), strconv.Itoa(d.Open))
	}
	return t.String()
}

func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}
