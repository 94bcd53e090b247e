package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/production-calendar/internal/calendar"
	"github.com/nhle/production-calendar/internal/keys"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/store"
	"github.com/nhle/production-calendar/internal/theme"
	"github.com/nhle/production-calendar/internal/ui"
	"github.com/nhle/production-calendar/internal/ui/calendarview"
	"github.com/nhle/production-calendar/internal/ui/command"
	"github.com/nhle/production-calendar/internal/ui/config"
	"github.com/nhle/production-calendar/internal/ui/confirm"
	"github.com/nhle/production-calendar/internal/ui/detail"
	"github.com/nhle/production-calendar/internal/ui/finalize"
	helpview "github.com/nhle/production-calendar/internal/ui/help"
	"github.com/nhle/production-calendar/internal/ui/itemform"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewCalendar ViewState = iota
	ViewDetail
	ViewDashboard
	ViewItemForm
	ViewFinalize
	ViewConfirmDelete
	ViewCommand
	ViewSettings
	ViewHelp
)

// Options configures the root model.
type Options struct {
	// Config is the loaded configuration, edited by the settings view.
	Config *model.AppConfig

	// ConfigPath is where the settings view writes Config.
	ConfigPath string

	// RefreshInterval reloads the displayed window periodically. Zero
	// disables it.
	RefreshInterval time.Duration

	// RequestTimeout bounds store calls made by the root model.
	RequestTimeout time.Duration

	Logger zerolog.Logger
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and the flows that leave the calendar: planning, finalizing,
// deleting, settings and the dashboard.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        store.Store
	keys         *keys.KeyMap
	opts         Options
	log          zerolog.Logger

	calendarView calendarview.Model
	detailView   detail.Model
	itemForm     itemform.Model
	finalizeView finalize.Model
	confirmView  confirm.Model
	commandView  command.Model
	settingsView config.Model
	helpView     helpview.Model

	// notice is the last failure of a flow run by the root model.
	notice string
	ready  bool

	// ticking is set while a refresh tick is scheduled.
	ticking bool
}

// New creates a new root application model.
func New(s store.Store, ctrl *calendar.Controller, opts Options) Model {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = model.DefaultConfigPath()
	}
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewCalendar,
		store:        s,
		keys:         k,
		opts:         opts,
		log:          opts.Logger.With().Str("component", "app").Logger(),
		calendarView: calendarview.New(ctrl, k, 80, 24),
		detailView:   detail.New(k, 80, 24),
		itemForm:     itemform.New(80, 24),
		finalizeView: finalize.New(80, 24),
		confirmView:  confirm.New(80),
		commandView:  command.New(80, 24),
		settingsView: config.New(opts.ConfigPath, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		ticking:      opts.RefreshInterval > 0,
	}
}

// Init returns the initial commands to load the calendar and start the
// refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.calendarView.Init(),
		m.scheduleRefresh(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.calendarView.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.itemForm.SetSize(contentWidth, contentHeight)
		m.finalizeView.SetSize(contentWidth, contentHeight)
		m.confirmView.SetSize(contentWidth)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	// Controller results apply whatever view is on top.
	case calendar.ItemsLoadedMsg, calendar.OrderCommittedMsg,
		calendar.StatusUpdatedMsg, calendar.ItemDeletedMsg:
		var cmd tea.Cmd
		m.calendarView, cmd = m.calendarView.Update(msg)
		return m, cmd

	case refreshTickMsg:
		var cmd tea.Cmd
		if m.currentView == ViewCalendar {
			cmd = m.calendarView.Reload()
		}
		next := m.scheduleRefresh()
		m.ticking = next != nil
		return m, tea.Batch(cmd, next)

	// --- Item detail ---

	case calendarview.DetailRequestedMsg:
		m.detailView.SetItem(msg.Item)
		m.currentView = ViewDetail
		return m, nil

	case detail.ActionMsg:
		m.currentView = ViewCalendar
		var cmd tea.Cmd
		switch msg.Action {
		case detail.ActionStart:
			m.calendarView, cmd = m.calendarView.StartProduction(msg.ItemID)
		case detail.ActionFinalize:
			m.calendarView, cmd = m.calendarView.Finalize(msg.ItemID)
		}
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewCalendar
		return m, nil

	// --- Dashboard ---

	case dashboardLoadedMsg:
		if m.currentView != ViewDashboard {
			return m, nil
		}
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("building dashboard failed")
			m.notice = "Dashboard unavailable"
			m.currentView = ViewCalendar
			return m, nil
		}
		m.detailView.SetPage(msg.content)
		return m, nil

	// --- Planning ---

	case calendarview.NewItemRequestedMsg:
		m.itemForm.SetDepartments(m.calendarView.Controller().Items())
		m.currentView = ViewItemForm
		cmd := m.itemForm.Start(msg.Day)
		return m, cmd

	case itemform.CreatedMsg:
		m.currentView = ViewCalendar
		return m, m.createItem(msg.Item)

	case itemform.CancelMsg:
		m.currentView = ViewCalendar
		return m, nil

	case itemCreatedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("planning item failed")
			m.notice = "Planning failed: " + msg.err.Error()
			return m, nil
		}
		m.notice = "Planned " + msg.item.Code
		return m, m.calendarView.Controller().Reload()

	// --- Finalization ---

	case calendar.FinalizeRequestedMsg:
		item, ok := m.findDayItem(msg.ItemID)
		if !ok {
			return m, nil
		}
		m.currentView = ViewFinalize
		cmd := m.finalizeView.Start(item)
		return m, cmd

	case finalize.SubmittedMsg:
		m.currentView = ViewCalendar
		return m, m.finalizeItem(msg.ItemID, msg.Finalization)

	case finalize.CancelMsg:
		m.currentView = ViewCalendar
		return m, nil

	case finalizedResultMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Str("item", msg.itemID).Msg("finalizing item failed")
			m.notice = "Finalizing failed; reloading"
		}
		return m, m.calendarView.Controller().Reload()

	// --- Deletion ---

	case calendarview.DeleteRequestedMsg:
		m.currentView = ViewConfirmDelete
		cmd := m.confirmView.Start(
			msg.Item.ID,
			"Delete "+msg.Item.Code+"?",
			msg.Item.ProductName+" ("+msg.Item.Status.Label()+")",
		)
		return m, cmd

	case confirm.ResultMsg:
		m.currentView = ViewCalendar
		if !msg.Confirmed {
			return m, nil
		}
		var cmd tea.Cmd
		m.calendarView, cmd = m.calendarView.ConfirmDelete(msg.ID)
		return m, cmd

	// --- Command palette ---

	case command.CommandMsg:
		m.currentView = ViewCalendar
		return m.runCommand(msg.Command)

	case command.ErrorMsg:
		m.currentView = ViewCalendar
		m.notice = msg.Err.Error()
		return m, nil

	// --- Settings ---

	case config.SavedMsg:
		m.applySettings(msg.Config)
		return m, nil

	case config.DoneMsg:
		m.currentView = ViewCalendar
		cmd := m.restartRefresh()
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.currentView {
		case ViewCalendar:
			m.notice = ""
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.previousView = m.currentView
				m.helpView.SetMode(m.calendarView.Controller().Mode())
				m.currentView = ViewHelp
				return m, nil
			case key.Matches(msg, m.keys.Command):
				m.currentView = ViewCommand
				cmd := m.commandView.Open()
				return m, cmd
			case key.Matches(msg, m.keys.Dashboard):
				return m.openDashboard()
			case key.Matches(msg, m.keys.Settings):
				return m.openSettings()
			}
		case ViewHelp:
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.currentView = m.previousView
				return m, nil
			}
		case ViewCommand:
			if msg.String() == "esc" {
				m.currentView = ViewCalendar
				return m, nil
			}
		case ViewDashboard:
			if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Dashboard) {
				m.currentView = ViewCalendar
				return m, nil
			}
			if key.Matches(msg, m.keys.Refresh) {
				return m.openDashboard()
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewCalendar:
		m.calendarView, cmd = m.calendarView.Update(msg)
	case ViewDetail, ViewDashboard:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewItemForm:
		m.itemForm, cmd = m.itemForm.Update(msg)
	case ViewFinalize:
		m.finalizeView, cmd = m.finalizeView.Update(msg)
	case ViewConfirmDelete:
		m.confirmView, cmd = m.confirmView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// runCommand executes a palette command.
func (m Model) runCommand(c command.Command) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch c.Kind {
	case command.KindGotoDay:
		m.calendarView, cmd = m.calendarView.JumpTo(calendar.ModeDay, c.Date)
	case command.KindGotoWeek:
		m.calendarView, cmd = m.calendarView.JumpTo(calendar.ModeWeek, c.Date)
	case command.KindGotoMonth:
		m.calendarView, cmd = m.calendarView.JumpTo(calendar.ModeMonth, c.Date)
	case command.KindToday:
		mode := m.calendarView.Controller().Mode()
		m.calendarView, cmd = m.calendarView.JumpTo(mode, time.Now())
	case command.KindDashboard:
		return m.openDashboard()
	case command.KindNew:
		day := m.calendarView.FocusedDay()
		return m, func() tea.Msg { return calendarview.NewItemRequestedMsg{Day: day} }
	case command.KindSettings:
		return m.openSettings()
	}
	return m, cmd
}

func (m Model) openDashboard() (tea.Model, tea.Cmd) {
	m.currentView = ViewDashboard
	m.detailView.SetLoading(true)
	cmd := m.buildDashboard()
	return m, cmd
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	if m.opts.Config == nil {
		m.notice = "No configuration loaded"
		return m, nil
	}
	m.currentView = ViewSettings
	cmd := m.settingsView.Start(m.opts.Config)
	return m, cmd
}

// applySettings takes over the parts of cfg that can change at runtime.
func (m *Model) applySettings(cfg *model.AppConfig) {
	m.opts.Config = cfg
	m.opts.RefreshInterval = cfg.RefreshInterval()
	theme.Apply(cfg.Display.Theme)
	m.log.Info().
		Str("path", m.opts.ConfigPath).
		Dur("refresh", m.opts.RefreshInterval).
		Msg("settings saved")
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	return m.layout.Render(ui.Frame{
		Title:  "Production Calendar | " + m.title(),
		Status: m.calendarView.Status(),
		Body:   m.renderContent(),
		Hints:  m.keyHints(),
		Notice: m.currentNotice(),
	})
}

func (m Model) title() string {
	switch m.currentView {
	case ViewDashboard:
		return "Dashboard"
	case ViewSettings:
		return "Settings"
	default:
		return m.calendarView.Title()
	}
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCalendar:
		return m.calendarView.View()
	case ViewDetail, ViewDashboard:
		return m.detailView.View()
	case ViewItemForm:
		return m.itemForm.View()
	case ViewFinalize:
		return m.finalizeView.View()
	case ViewConfirmDelete:
		return m.confirmView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

func (m Model) currentNotice() string {
	if m.notice != "" {
		return m.notice
	}
	if m.currentView == ViewCalendar {
		return m.calendarView.Hint()
	}
	return ""
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "esc back | s start | f finalize | j/k scroll"
	case ViewDashboard:
		return "esc back | r refresh | j/k scroll"
	case ViewItemForm, ViewFinalize, ViewSettings:
		return "enter submit | esc cancel"
	case ViewConfirmDelete:
		return "←/→ choose | enter confirm"
	case ViewCommand:
		return "enter go | esc close"
	}

	switch m.calendarView.Controller().Mode() {
	case calendar.ModeDay:
		return "esc back | enter details | J/K reorder | s start | f finalize | d delete | n plan | ? help"
	case calendar.ModeWeek:
		return "enter open day | esc month | h/l day | [/] week | n plan | : go to | q quit"
	default:
		return "enter open week | h/j/k/l move | [/] month | t today | : go to | D dashboard | q quit"
	}
}

// findDayItem returns an item of the displayed day.
func (m Model) findDayItem(id string) (model.WorkItem, bool) {
	for _, it := range m.calendarView.Controller().DayItems() {
		if it.ID == id {
			return it, true
		}
	}
	return model.WorkItem{}, false
}
