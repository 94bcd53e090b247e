package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/theme"
)

// Kind identifies a palette command.
type Kind int

const (
	KindGotoDay Kind = iota
	KindGotoWeek
	KindGotoMonth
	KindToday
	KindDashboard
	KindNew
	KindSettings
)

// Command is a parsed palette entry.
type Command struct {
	Kind Kind
	Date time.Time
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Command Command
}

// ErrorMsg is emitted when the entry cannot be parsed.
type ErrorMsg struct {
	Input string
	Err   error
}

// Parse reads a palette entry:
//
//	2026-03-13        open that day
//	week 2026-03-13   open the week containing it
//	2026-03           open that month
//	today | dashboard | new | settings
func Parse(input string, loc *time.Location) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "today", "t":
		return Command{Kind: KindToday}, nil
	case "dashboard", "dash":
		return Command{Kind: KindDashboard}, nil
	case "new", "add":
		return Command{Kind: KindNew}, nil
	case "settings", "config":
		return Command{Kind: KindSettings}, nil
	case "week", "w":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: week YYYY-MM-DD")
		}
		d, err := datebucket.ParseDay(fields[1], loc)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindGotoWeek, Date: d}, nil
	}

	if len(fields) != 1 {
		return Command{}, fmt.Errorf("unknown command %q", input)
	}
	if d, err := datebucket.ParseDay(fields[0], loc); err == nil {
		return Command{Kind: KindGotoDay, Date: d}, nil
	}
	if m, err := time.ParseInLocation("2006-01", fields[0], loc); err == nil {
		return Command{Kind: KindGotoMonth, Date: m}, nil
	}
	return Command{}, fmt.Errorf("unknown command %q", input)
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "YYYY-MM-DD, YYYY-MM, week YYYY-MM-DD, today, dashboard, new, settings"
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Open resets the input and starts the cursor blinking.
func (m *Model) Open() tea.Cmd {
	m.input.Reset()
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		raw := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if raw == "" {
			return m, nil
		}
		cmd, err := Parse(raw, time.Local)
		if err != nil {
			return m, func() tea.Msg { return ErrorMsg{Input: raw, Err: err} }
		}
		return m, func() tea.Msg { return CommandMsg{Command: cmd} }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorText).
		MarginBottom(1)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Go to"),
		m.input.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}
