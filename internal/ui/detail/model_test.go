package detail

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/production-calendar/internal/keys"
	"github.com/nhle/production-calendar/internal/model"
)

func press(m Model, r rune) tea.Msg {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	if cmd == nil {
		return nil
	}
	return cmd()
}

func item(status model.Status) model.WorkItem {
	return model.WorkItem{
		ID:                 "w1",
		Day:                time.Date(2024, time.March, 13, 0, 0, 0, 0, time.Local),
		Code:               "A-100",
		ProductName:        "Bracket",
		Department:         "Stamping",
		Quantity:           8,
		ProgrammedQuantity: 10,
		Status:             status,
	}
}

func TestActionsFollowStatus(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)

	m.SetItem(item(model.StatusPending))
	assert.Equal(t, ActionMsg{Action: ActionStart, ItemID: "w1"}, press(m, 's'))
	_, isAction := press(m, 'f').(ActionMsg)
	assert.False(t, isAction, "pending items cannot be finalized")

	m.SetItem(item(model.StatusInProduction))
	assert.Equal(t, ActionMsg{Action: ActionFinalize, ItemID: "w1"}, press(m, 'f'))

	m.SetItem(item(model.StatusCompleted))
	_, isAction = press(m, 's').(ActionMsg)
	assert.False(t, isAction)
}

func TestBack(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestSetPageDropsItem(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 30)
	assert.Contains(t, m.View(), "Nothing to show")

	m.SetItem(item(model.StatusPending))
	got, ok := m.Item()
	require.True(t, ok)
	assert.Equal(t, "w1", got.ID)
	assert.Contains(t, m.View(), "Bracket")

	m.SetPage("Production dashboard")
	_, ok = m.Item()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "Production dashboard")
}
