package calendarview

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/production-calendar/internal/calendar"
	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/keys"
	"github.com/nhle/production-calendar/internal/model"
)

// DeleteRequestedMsg asks the host to confirm deleting an item.
type DeleteRequestedMsg struct {
	Item model.WorkItem
}

// DetailRequestedMsg asks the host to show an item.
type DetailRequestedMsg struct {
	Item model.WorkItem
}

// NewItemRequestedMsg asks the host to plan a new item on Day.
type NewItemRequestedMsg struct {
	Day time.Time
}

// Model is the calendar view. It owns the cursor; the controller owns the
// window, the loaded items and the selection.
type Model struct {
	ctrl *calendar.Controller
	keys *keys.KeyMap

	// cursor is the focused day in Month and Week view.
	cursor time.Time
	// row is the focused item in Day view.
	row int

	// hint explains the last rejected action.
	hint string

	today  func() time.Time
	width  int
	height int
}

// New creates a calendar view driving ctrl.
func New(ctrl *calendar.Controller, k *keys.KeyMap, width, height int) Model {
	return Model{
		ctrl:   ctrl,
		keys:   k,
		cursor: ctrl.Anchor(),
		today:  time.Now,
		width:  width,
		height: height,
	}
}

// Init loads the initial window.
func (m Model) Init() tea.Cmd {
	return m.ctrl.Init()
}

// Controller returns the underlying controller.
func (m Model) Controller() *calendar.Controller {
	return m.ctrl
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles controller results and key presses.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case calendar.ItemsLoadedMsg, calendar.OrderCommittedMsg,
		calendar.StatusUpdatedMsg, calendar.ItemDeletedMsg:
		cmd := m.ctrl.Update(msg)
		m.syncRow()
		return m, cmd

	case tea.KeyMsg:
		m.hint = ""
		return m.handleKey(msg)
	}
	return m, nil
}

// ConfirmDelete deletes an item after the host confirmed it.
func (m Model) ConfirmDelete(id string) (Model, tea.Cmd) {
	cmd, err := m.ctrl.Delete(id)
	if err != nil {
		m.hint = describe(err)
		return m, nil
	}
	m.syncRow()
	return m, cmd
}

// StartProduction starts an item from outside the day list.
func (m Model) StartProduction(id string) (Model, tea.Cmd) {
	cmd, err := m.ctrl.StartProduction(id)
	if err != nil {
		m.hint = describe(err)
		return m, nil
	}
	return m, cmd
}

// Finalize requests the finalization form from outside the day list.
func (m Model) Finalize(id string) (Model, tea.Cmd) {
	cmd, err := m.ctrl.Finalize(id)
	if err != nil {
		m.hint = describe(err)
		return m, nil
	}
	return m, cmd
}

// JumpTo shows the window of mode containing d and focuses d.
func (m Model) JumpTo(mode calendar.Mode, d time.Time) (Model, tea.Cmd) {
	cmd := m.ctrl.JumpTo(mode, d)
	m.cursor = m.ctrl.Anchor()
	m.row = 0
	return m, cmd
}

// FocusedDay is the day new items are planned on: the cursor in Month and
// Week view, the shown day in Day view.
func (m Model) FocusedDay() time.Time {
	if m.ctrl.Mode() == calendar.ModeDay {
		return m.ctrl.Anchor()
	}
	return m.cursor
}

// Reload fetches the current window again unless writes are pending.
func (m Model) Reload() tea.Cmd {
	if m.ctrl.Saving() {
		return nil
	}
	return m.ctrl.Reload()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		cmd := m.ctrl.Back()
		m.cursor = m.ctrl.Anchor()
		return m, cmd

	case key.Matches(msg, m.keys.Prev):
		return m.navigate(datebucket.Prev)

	case key.Matches(msg, m.keys.Next):
		return m.navigate(datebucket.Next)

	case key.Matches(msg, m.keys.Today):
		cmd := m.ctrl.Today()
		m.cursor = m.ctrl.Anchor()
		m.row = 0
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.DismissNotice()
		return m, m.ctrl.Reload()

	case key.Matches(msg, m.keys.New):
		day := m.FocusedDay()
		return m, func() tea.Msg { return NewItemRequestedMsg{Day: day} }
	}

	if m.ctrl.Mode() == calendar.ModeDay {
		return m.handleDayKey(msg)
	}
	return m.handlePeriodKey(msg)
}

// handlePeriodKey moves the day cursor in Month and Week view.
func (m Model) handlePeriodKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	step := 0
	switch {
	case key.Matches(msg, m.keys.Left):
		step = -1
	case key.Matches(msg, m.keys.Right):
		step = 1
	case key.Matches(msg, m.keys.Up):
		if m.ctrl.Mode() == calendar.ModeMonth {
			step = -7
		}
	case key.Matches(msg, m.keys.Down):
		if m.ctrl.Mode() == calendar.ModeMonth {
			step = 7
		}
	case key.Matches(msg, m.keys.Select):
		cmd := m.ctrl.SelectDay(m.cursor)
		m.cursor = m.ctrl.Anchor()
		m.row = 0
		return m, cmd
	}
	if step == 0 {
		return m, nil
	}

	m.cursor = datebucket.AddDays(m.cursor, step)
	w := m.ctrl.Window()
	switch {
	case datebucket.DayKey(m.cursor) < datebucket.DayKey(w.Start):
		return m, m.ctrl.Navigate(datebucket.Prev)
	case datebucket.DayKey(m.cursor) > datebucket.DayKey(w.End):
		return m, m.ctrl.Navigate(datebucket.Next)
	}
	return m, nil
}

func (m Model) navigate(dir datebucket.Direction) (Model, tea.Cmd) {
	cmd := m.ctrl.Navigate(dir)
	if cmd != nil {
		m.cursor = m.ctrl.Anchor()
	}
	return m, cmd
}

// handleDayKey runs the item actions of Day view.
func (m Model) handleDayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.syncRow()
	items := m.ctrl.DayItems()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.row--
		m.syncRow()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.row++
		m.syncRow()
		return m, nil
	}

	if len(items) == 0 {
		return m, nil
	}
	current := items[m.row]

	var (
		cmd tea.Cmd
		err error
	)
	switch {
	case key.Matches(msg, m.keys.MoveUp):
		cmd, err = m.ctrl.Move(current.ID, m.row-1)
		m.follow(current.ID)
	case key.Matches(msg, m.keys.MoveDown):
		cmd, err = m.ctrl.Move(current.ID, m.row+1)
		m.follow(current.ID)
	case key.Matches(msg, m.keys.Start):
		cmd, err = m.ctrl.StartProduction(current.ID)
	case key.Matches(msg, m.keys.Finalize):
		cmd, err = m.ctrl.Finalize(current.ID)
	case key.Matches(msg, m.keys.Delete):
		return m, func() tea.Msg { return DeleteRequestedMsg{Item: current} }
	case key.Matches(msg, m.keys.Select):
		return m, func() tea.Msg { return DetailRequestedMsg{Item: current} }
	}
	if err != nil {
		m.hint = describe(err)
		return m, nil
	}
	m.syncRow()
	return m, cmd
}

// follow keeps the cursor on id after a reorder.
func (m *Model) follow(id string) {
	for i, it := range m.ctrl.DayItems() {
		if it.ID == id {
			m.row = i
			return
		}
	}
}

// syncRow clamps the item cursor and selects the item under it.
func (m *Model) syncRow() {
	if m.ctrl.Mode() != calendar.ModeDay {
		m.row = 0
		return
	}
	items := m.ctrl.DayItems()
	if m.row >= len(items) {
		m.row = len(items) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if len(items) == 0 {
		m.ctrl.ClearSelection()
		return
	}
	m.ctrl.Select(items[m.row].ID)
}

// describe turns a rejected action into a short hint.
func describe(err error) string {
	switch {
	case errors.Is(err, model.ErrTransitionNotAllowed):
		return "Not allowed from the item's current status"
	case errors.Is(err, calendar.ErrItemNotFound):
		return "The item is no longer on this day"
	case errors.Is(err, calendar.ErrNotInDayView):
		return "Open a day first"
	default:
		return err.Error()
	}
}
