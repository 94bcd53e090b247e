package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/calendar"
	"github.com/nhle/production-calendar/internal/keys"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/theme"
)

// Model is the help overlay. It lists the bindings that act in the calendar
// mode it was opened from, then the global ones.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	mode   calendar.Mode
	width  int
	height int
}

// New creates a help overlay.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	m := Model{keys: k, help: h}
	m.SetSize(width, height)
	return m
}

// SetMode selects the calendar mode whose bindings are listed first.
func (m *Model) SetMode(mode calendar.Mode) {
	m.mode = mode
}

// ModeBindings returns the bindings that act in mode, in display groups.
func (m Model) ModeBindings() [][]key.Binding {
	k := m.keys
	switch m.mode {
	case calendar.ModeDay:
		return [][]key.Binding{
			{k.Up, k.Down, k.Select, k.Back},
			{k.MoveUp, k.MoveDown},
			{k.Start, k.Finalize, k.Delete, k.New},
		}
	case calendar.ModeWeek:
		return [][]key.Binding{
			{k.Left, k.Right, k.Select, k.Back},
			{k.Prev, k.Next, k.Today, k.New},
		}
	default:
		return [][]key.Binding{
			{k.Left, k.Right, k.Up, k.Down, k.Select},
			{k.Prev, k.Next, k.Today, k.New},
		}
	}
}

func (m Model) globalBindings() [][]key.Binding {
	k := m.keys
	return [][]key.Binding{{k.Command, k.Dashboard, k.Settings}, {k.Refresh, k.Help, k.Quit}}
}

// View renders the overlay.
func (m Model) View() string {
	lifecycle := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.StatusStyle(model.StatusPending).Render(model.StatusPending.Label()),
		" s → ",
		theme.StatusStyle(model.StatusInProduction).Render(model.StatusInProduction.Label()),
		" f → ",
		theme.StatusStyle(model.StatusCompleted).Render(model.StatusCompleted.Label()),
	)

	sections := []string{
		theme.TitleStyle.Render("Keys in " + m.mode.String() + " view"),
		m.help.FullHelpView(m.ModeBindings()),
		"",
		theme.TitleStyle.Render("Everywhere"),
		m.help.FullHelpView(m.globalBindings()),
		"",
		theme.TitleStyle.Render("Item lifecycle"),
		lifecycle,
	}
	if m.mode != calendar.ModeDay {
		sections = append(sections,
			theme.HelpStyle.Render("Open a day to reorder items or change their status."))
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
