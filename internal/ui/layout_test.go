package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRender_KeepsStatusBarOnLastLine(t *testing.T) {
	l := NewLayout(60, 10)
	out := l.Render(Frame{
		Title:  "Production Calendar | March 2024",
		Status: "1/2 done (50%)",
		Body:   "one\ntwo",
		Hints:  "? help",
		Notice: "Reorder failed; reloading",
	})

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 10)
	assert.Contains(t, lines[0], "March 2024")
	assert.Contains(t, lines[0], "50%")
	assert.Contains(t, lines[len(lines)-1], "Reorder failed")
	assert.Contains(t, lines[len(lines)-1], "? help")
}

func TestRender_NarrowTerminal(t *testing.T) {
	l := NewLayout(12, 4)
	out := l.Render(Frame{Title: "Production Calendar", Status: "loading...", Hints: "q quit"})

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 12)
	}
	assert.Equal(t, 2, l.ContentHeight())
	assert.Zero(t, NewLayout(10, 1).ContentHeight())
}
