package calendarview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/aggregate"
	"github.com/nhle/production-calendar/internal/calendar"
	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/theme"
)

// Title returns the label of the displayed window.
func (m Model) Title() string {
	g := datebucket.Month
	switch m.ctrl.Mode() {
	case calendar.ModeWeek:
		g = datebucket.Week
	case calendar.ModeDay:
		g = datebucket.Day
	}
	return datebucket.Label(g, m.ctrl.Window())
}

// Status summarises the loaded window for the header.
func (m Model) Status() string {
	switch {
	case m.ctrl.Loading():
		return "loading..."
	case m.ctrl.Saving():
		return "saving..."
	}
	s := m.ctrl.Summary()
	return fmt.Sprintf("%d/%d done (%.0f%%)", s.Completed, s.Total, s.CompletionRate*100)
}

// Hint returns the hint left by a rejected action or the controller's
// failure notice.
func (m Model) Hint() string {
	if m.hint != "" {
		return m.hint
	}
	return m.ctrl.Notice()
}

// View renders the active calendar view.
func (m Model) View() string {
	if err := m.ctrl.Err(); err != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			theme.NoticeStyle.Render("Could not load "+m.ctrl.Window().String()),
			theme.DimmedStyle.Render(err.Error()),
			theme.HelpStyle.Render("press r to retry"),
		)
	}

	var body string
	switch m.ctrl.Mode() {
	case calendar.ModeMonth:
		body = m.monthView()
	case calendar.ModeWeek:
		body = m.weekView()
	default:
		body = m.dayView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.legend())
}

func (m Model) cellWidth() int {
	w := m.width/7 - 2
	if w < 8 {
		w = 8
	}
	return w
}

func (m Model) weekdayHeader() string {
	var cells []string
	start := m.ctrl.WeekStartsOn()
	for i := 0; i < 7; i++ {
		day := time.Weekday((int(start) + i) % 7)
		cells = append(cells, lipgloss.NewStyle().
			Width(m.cellWidth()+2).
			Align(lipgloss.Center).
			Bold(true).
			Render(day.String()[:3]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) bucketsByDay() map[string]model.DayBucket {
	out := make(map[string]model.DayBucket)
	for _, b := range m.ctrl.Buckets() {
		out[datebucket.DayKey(b.Date)] = b
	}
	return out
}

func (m Model) monthView() string {
	buckets := m.bucketsByDay()
	month := m.ctrl.Window()
	today := datebucket.DayKey(m.today())

	rows := []string{m.weekdayHeader()}
	for _, week := range datebucket.Weeks(m.ctrl.Grid()) {
		var cells []string
		for _, d := range week {
			key := datebucket.DayKey(d)
			label := fmt.Sprintf("%2d", d.Day())
			if key == today {
				label = theme.TodayStyle.Render(label)
			}

			summary := ""
			if b, ok := buckets[key]; ok && len(b.Items) > 0 {
				a := aggregate.Aggregate(b.Items)
				summary = fmt.Sprintf("%d/%d", a.Completed, a.Total)
			}

			style := theme.CellStyle
			if key == datebucket.DayKey(m.cursor) {
				style = theme.CursorCellStyle
			}
			content := label + "\n" + summary
			if !month.Contains(d) {
				content = theme.DimmedStyle.Render(fmt.Sprintf("%2d", d.Day())) + "\n"
			}
			cells = append(cells, style.Width(m.cellWidth()).Render(content))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) weekView() string {
	buckets := m.bucketsByDay()
	today := datebucket.DayKey(m.today())

	var cols []string
	for _, d := range m.ctrl.Window().Days() {
		key := datebucket.DayKey(d)
		header := d.Format("Mon 02")
		if key == today {
			header = theme.TodayStyle.Render(header)
		}

		lines := []string{header}
		b := buckets[key]
		for _, it := range b.Items {
			lines = append(lines, theme.StatusStyle(it.Status).
				Padding(0).
				Render(truncate(it.Code, m.cellWidth())))
		}
		if len(b.Items) == 0 {
			lines = append(lines, theme.DimmedStyle.Render("-"))
		}

		style := theme.CellStyle
		if key == datebucket.DayKey(m.cursor) {
			style = theme.CursorCellStyle
		}
		cols = append(cols, style.Width(m.cellWidth()).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) dayView() string {
	items := m.ctrl.DayItems()
	if len(items) == 0 {
		if m.ctrl.Loading() {
			return theme.DimmedStyle.Render("Loading...")
		}
		return theme.DimmedStyle.Render("Nothing scheduled for this day.")
	}

	selected, _ := m.ctrl.Selected()
	lines := make([]string, 0, len(items))
	for i, it := range items {
		qty := fmt.Sprintf("%d/%d", it.Quantity, it.ProgrammedQuantity)
		if it.HasDivergence {
			qty = theme.DivergenceStyle.Render(qty + " !")
		}
		line := fmt.Sprintf("%2d. %-12s %-28s %s %s",
			i+1,
			truncate(it.Code, 12),
			truncate(it.ProductName, 28),
			theme.StatusStyle(it.Status).Render(it.Status.Label()),
			qty,
		)
		if it.Department != "" {
			line += theme.DimmedStyle.Render("  " + it.Department)
		}
		if it.ID == selected.ID {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) legend() string {
	var parts []string
	for _, st := range model.Statuses {
		parts = append(parts, theme.StatusStyle(st).Render("■ "+st.Label()))
	}
	return "\n" + strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
