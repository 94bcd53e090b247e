package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/keys"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm   Mode = iota // Editing
	ModeSaving             // Writing the config file
	ModeResult             // Showing the save result
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg carries the configuration that was written.
type SavedMsg struct {
	Config *model.AppConfig
}

// savedInternalMsg is sent after the config file is written.
type savedInternalMsg struct {
	cfg *model.AppConfig
	err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	weekStart       string
	theme           string
	atomicReorder   bool
	refreshInterval string
	logLevel        string
}

// Model is the Bubble Tea model of the settings form.
type Model struct {
	mode    Mode
	path    string
	current *model.AppConfig
	form    *huh.Form
	fb      *formBindings
	spinner spinner.Model
	saveErr error

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view writing to path.
func New(path string, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		path:    path,
		fb:      &formBindings{},
		spinner: sp,
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Start opens the form prefilled from cfg.
func (m *Model) Start(cfg *model.AppConfig) tea.Cmd {
	m.current = cfg
	m.mode = ModeForm
	m.saveErr = nil
	*m.fb = formBindings{
		weekStart:       strings.ToLower(cfg.WeekStart().String()),
		theme:           cfg.Display.Theme,
		atomicReorder:   cfg.Calendar.AtomicReorder,
		refreshInterval: strconv.Itoa(cfg.Display.RefreshIntervalSec),
		logLevel:        cfg.Logging.Level,
	}
	if m.fb.theme == "" {
		m.fb.theme = "default"
	}
	if m.fb.logLevel == "" {
		m.fb.logLevel = "info"
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedInternalMsg:
		m.mode = ModeResult
		m.saveErr = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.current = msg.cfg
		cfg := msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }

	case spinner.TickMsg:
		if m.mode == ModeSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeResult:
			if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Select) {
				return m, func() tea.Msg { return DoneMsg{} }
			}
			return m, nil
		case ModeSaving:
			return m, nil
		}
	}

	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		m.mode = ModeSaving
		return m, tea.Batch(m.spinner.Tick, m.save(m.buildConfig()))
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return DoneMsg{} }
	}
	return m, cmd
}

func (m *Model) buildForm() *huh.Form {
	weekdays := make([]huh.Option[string], 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		weekdays = append(weekdays, huh.NewOption(d.String(), strings.ToLower(d.String())))
	}

	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Week starts on").
				Options(weekdays...).
				Value(&m.fb.weekStart),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Follow terminal", "default"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&m.fb.theme),
			huh.NewInput().
				Title("Refresh interval (seconds, 0 disables)").
				Value(&m.fb.refreshInterval).
				Validate(validateNonNegative),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Commit reorders in one transaction").
				Value(&m.fb.atomicReorder),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&m.fb.logLevel),
		),
	).WithWidth(m.formWidth()).
		WithKeyMap(km)
}

// buildConfig copies the current config and applies the form values.
func (m Model) buildConfig() *model.AppConfig {
	cfg := *m.current
	cfg.Calendar.WeekStartsOn = m.fb.weekStart
	cfg.Calendar.AtomicReorder = m.fb.atomicReorder
	cfg.Display.Theme = m.fb.theme
	if n, err := strconv.Atoi(strings.TrimSpace(m.fb.refreshInterval)); err == nil {
		cfg.Display.RefreshIntervalSec = n
	}
	cfg.Logging.Level = m.fb.logLevel
	return &cfg
}

// save returns a command that writes cfg to the config file.
func (m Model) save(cfg *model.AppConfig) tea.Cmd {
	path := m.path
	return func() tea.Msg {
		err := model.SaveConfig(path, cfg)
		return savedInternalMsg{cfg: cfg, err: err}
	}
}

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	switch m.mode {
	case ModeForm:
		if m.form == nil {
			return ""
		}
		return style.Render(theme.TitleStyle.Render("Settings") + "\n" + m.form.View())

	case ModeSaving:
		return style.Render(fmt.Sprintf("%s Saving %s...", m.spinner.View(), m.path))

	case ModeResult:
		hint := lipgloss.NewStyle().Foreground(theme.ColorMuted).Render("enter/esc back")
		if m.saveErr != nil {
			errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorAlert)
			return style.Render(errStyle.Render("Saving failed") + "\n\n" +
				m.saveErr.Error() + "\n\n" + hint)
		}
		okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorCompleted)
		return style.Render(okStyle.Render("Settings saved") + "\n\n" +
			"Theme and refresh interval apply now; the rest on next start.\n\n" + hint)
	}
	return ""
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateNonNegative(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number, 0 or more")
	}
	return nil
}
