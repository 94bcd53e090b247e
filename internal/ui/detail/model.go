package detail

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/keys"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/theme"
)

// BackMsg signals the parent to navigate back to the calendar.
type BackMsg struct{}

// Action is a lifecycle step requested from the detail view.
type Action int

const (
	ActionStart Action = iota
	ActionFinalize
)

// ActionMsg signals the parent to run an action on the shown item.
type ActionMsg struct {
	Action Action
	ItemID string
}

// Model is a scrollable page showing either one work item or a
// pre-rendered document such as the dashboard.
type Model struct {
	item     *model.WorkItem
	page     string
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Start):
			if m.item != nil && model.CanTransition(m.item.Status, model.StatusInProduction) {
				return m, m.action(ActionStart)
			}

		case key.Matches(msg, m.keys.Finalize):
			if m.item != nil && model.CanTransition(m.item.Status, model.StatusCompleted) {
				return m, m.action(ActionFinalize)
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(a Action) tea.Cmd {
	id := m.item.ID
	return func() tea.Msg { return ActionMsg{Action: a, ItemID: id} }
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorMuted)

	if m.loading {
		return placeholder.Render("Loading...")
	}
	if m.item == nil && m.page == "" {
		return placeholder.Render("Nothing to show")
	}
	return m.viewport.View()
}

// Item returns the shown work item, if any.
func (m Model) Item() (model.WorkItem, bool) {
	if m.item == nil {
		return model.WorkItem{}, false
	}
	return *m.item, true
}

// SetItem shows item.
func (m *Model) SetItem(item model.WorkItem) {
	m.item = &item
	m.page = ""
	m.loading = false
	m.viewport.SetContent(m.renderItem())
	m.viewport.GotoTop()
}

// SetPage shows pre-rendered content.
func (m *Model) SetPage(content string) {
	m.item = nil
	m.page = content
	m.loading = false
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// renderItem builds the item page for the viewport.
func (m Model) renderItem() string {
	it := m.item
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorText)
	sections = append(sections, titleStyle.Render(it.Code+"  "+it.ProductName))

	badges := []string{theme.StatusStyle(it.Status).Render(it.Status.Label())}
	if it.HasDivergence {
		badges = append(badges, "  ", theme.DivergenceStyle.Render("quantity diverges"))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, badges...), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorMuted).Width(14)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorText)
	row := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, metaStyle.Render(label)+valStyle.Render(value))
	}

	row("Day", datebucket.DayKey(it.Day))
	row("Department", it.Department)
	row("Batch", it.BatchNumber)
	row("Planned", strconv.Itoa(it.ProgrammedQuantity))
	if it.Status == model.StatusCompleted {
		row("Produced", strconv.Itoa(it.Quantity))
	}
	row("Transaction", it.TransactionNumber)
	if it.OrderIndex != nil {
		row("Position", strconv.Itoa(*it.OrderIndex+1))
	} else {
		row("Position", "unordered")
	}
	if !it.CreatedAt.IsZero() {
		row("Created", it.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSurface)
	sections = append(sections, "", sepStyle.Render(strings.Repeat("─", min(max(m.width-4, 0), 60))), "")

	var next string
	switch it.Status {
	case model.StatusPending:
		next = fmt.Sprintf("%s start production", m.keys.Start.Help().Key)
	case model.StatusInProduction:
		next = fmt.Sprintf("%s record the produced quantity", m.keys.Finalize.Help().Key)
	default:
		next = "Completed."
	}
	sections = append(sections, theme.HelpStyle.Render(next))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
