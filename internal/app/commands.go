package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/production-calendar/internal/dashboard"
	"github.com/nhle/production-calendar/internal/model"
)

// refreshTickMsg triggers a periodic reload of the displayed window.
type refreshTickMsg struct{}

// finalizedResultMsg is sent after a finalization is persisted.
type finalizedResultMsg struct {
	itemID string
	err    error
}

// itemCreatedMsg is sent after a planned item is stored.
type itemCreatedMsg struct {
	item model.WorkItem
	err  error
}

// dashboardLoadedMsg carries a rendered dashboard.
type dashboardLoadedMsg struct {
	content string
	err     error
}

// scheduleRefresh returns the next refresh tick, or nil when periodic
// refresh is disabled.
func (m Model) scheduleRefresh() tea.Cmd {
	if m.opts.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.opts.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// restartRefresh starts the tick chain when settings enabled it while no
// chain was running.
func (m *Model) restartRefresh() tea.Cmd {
	if m.ticking || m.opts.RefreshInterval <= 0 {
		return nil
	}
	m.ticking = true
	return m.scheduleRefresh()
}

// finalizeItem completes an in-production item in the store.
func (m Model) finalizeItem(id string, f model.Finalization) tea.Cmd {
	s := m.store
	timeout := m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := s.FinalizeItem(ctx, id, f)
		return finalizedResultMsg{itemID: id, err: err}
	}
}

// createItem stores a manually planned item.
func (m Model) createItem(item model.WorkItem) tea.Cmd {
	s := m.store
	timeout := m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		created, err := s.CreateItem(ctx, item)
		return itemCreatedMsg{item: created, err: err}
	}
}

// buildDashboard computes and renders the dashboard.
func (m Model) buildDashboard() tea.Cmd {
	b := dashboard.New(m.store, dashboard.Options{
		WeekStartsOn: m.calendarView.Controller().WeekStartsOn(),
		Logger:       m.log,
	})
	timeout := m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := b.Build(ctx)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		return dashboardLoadedMsg{content: dashboard.Render(snap)}
	}
}
