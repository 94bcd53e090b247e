package command

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		input string
		want  Command
	}{
		{"2026-03-13", Command{Kind: KindGotoDay, Date: time.Date(2026, 3, 13, 0, 0, 0, 0, loc)}},
		{"  2026-03  ", Command{Kind: KindGotoMonth, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, loc)}},
		{"week 2026-03-13", Command{Kind: KindGotoWeek, Date: time.Date(2026, 3, 13, 0, 0, 0, 0, loc)}},
		{"W 2026-03-13", Command{Kind: KindGotoWeek, Date: time.Date(2026, 3, 13, 0, 0, 0, 0, loc)}},
		{"today", Command{Kind: KindToday}},
		{"Dashboard", Command{Kind: KindDashboard}},
		{"add", Command{Kind: KindNew}},
		{"settings", Command{Kind: KindSettings}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.True(t, tt.want.Date.Equal(got.Date), "got %v", got.Date)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, input := range []string{"", "   ", "2026-13-01", "2026-02-30", "week", "week soon", "go 2026-03-13", "tomorrow"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input, time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestUpdate_EmitsParsedCommand(t *testing.T) {
	m := New(80, 10)
	m.input.SetValue("2026-03")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(CommandMsg)
	require.True(t, ok)
	assert.Equal(t, KindGotoMonth, msg.Command.Kind)
	assert.Empty(t, m.input.Value(), "input resets after submit")

	m.input.SetValue("later")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	errMsg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.Equal(t, "later", errMsg.Input)
}
