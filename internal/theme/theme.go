package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/model"
)

// Palette roles as (dark terminal, light terminal) pairs. Status colors
// follow the shop-floor convention: amber waiting, blue running, green done.
var (
	ColorPending      = lipgloss.AdaptiveColor{Dark: "#F2B84B", Light: "#A86A00"}
	ColorInProduction = lipgloss.AdaptiveColor{Dark: "#4EA1F3", Light: "#1D5FA8"}
	ColorCompleted    = lipgloss.AdaptiveColor{Dark: "#5CC98A", Light: "#227A4B"}
	ColorAlert        = lipgloss.AdaptiveColor{Dark: "#F0625D", Light: "#B42A25"}
	ColorDivergence   = lipgloss.AdaptiveColor{Dark: "#C77DFF", Light: "#7339AC"}
	ColorToday        = lipgloss.AdaptiveColor{Dark: "#FF9F5A", Light: "#B4541A"}

	ColorText    = lipgloss.AdaptiveColor{Dark: "#ECEFF3", Light: "#1B2430"}
	ColorMuted   = lipgloss.AdaptiveColor{Dark: "#8A94A3", Light: "#6A7482"}
	ColorSurface = lipgloss.AdaptiveColor{Dark: "#3A4250", Light: "#D5DBE3"}
	ColorLine    = lipgloss.AdaptiveColor{Dark: "#4A5363", Light: "#C9D1DB"}
)

// Apply forces the dark or light palette. "default" and unknown names keep
// the terminal background detection.
func Apply(name string) {
	switch name {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// HeaderStyle is the title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorText).
	Background(ColorInProduction).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Background(ColorSurface).
	Padding(0, 1)

// PanelStyle wraps forms and overlays.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorLine)

// ListItemStyle is an unfocused row of the day list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle is the focused row of the day list.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorInProduction).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorInProduction)

// HelpStyle is for hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorMuted).
	Italic(true)

// DimmedStyle renders days outside the displayed month and empty states.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorMuted)

// TitleStyle is used for section titles inside a view.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorText).
	MarginBottom(1)

// CellStyle is a calendar grid cell.
var CellStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.NormalBorder()).
	BorderForeground(ColorLine)

// CursorCellStyle is the calendar cell under the cursor.
var CursorCellStyle = CellStyle.
	BorderForeground(ColorInProduction).
	Bold(true)

// TodayStyle marks today's date.
var TodayStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorToday)

// NoticeStyle renders transient failure notices.
var NoticeStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorAlert)

// DivergenceStyle flags items whose realised quantity differs from plan.
var DivergenceStyle = lipgloss.NewStyle().
	Foreground(ColorDivergence)

// StatusStyle returns a color-coded style for a work item status.
func StatusStyle(status model.Status) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusPending:
		return base.Foreground(ColorPending)
	case model.StatusInProduction:
		return base.Foreground(ColorInProduction)
	case model.StatusCompleted:
		return base.Foreground(ColorCompleted)
	default:
		return base.Foreground(ColorMuted)
	}
}

// RateStyle colors a completion rate: red below a third, yellow below two
// thirds, green above.
func RateStyle(rate float64) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch {
	case rate < 1.0/3:
		return base.Foreground(ColorAlert)
	case rate < 2.0/3:
		return base.Foreground(ColorPending)
	default:
		return base.Foreground(ColorCompleted)
	}
}
