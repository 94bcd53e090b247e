package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/theme"
)

// Frame is one screen: a header line, the active page and a status line.
type Frame struct {
	Title  string
	Status string
	Body   string
	Hints  string
	Notice string
}

// Layout splits the terminal into header, body and status bar.
type Layout struct {
	Width  int
	Height int
}

const (
	headerLines    = 1
	statusBarLines = 1
)

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth is the width pages may use.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight is the height left between header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-headerLines-statusBarLines, 0)
}

// Render draws f. The body is clipped or padded to the content height so
// the status bar stays on the last line.
func (l Layout) Render(f Frame) string {
	body := lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(f.Body)

	return lipgloss.JoinVertical(lipgloss.Left,
		l.header(f.Title, f.Status),
		body,
		l.statusBar(f.Hints, f.Notice),
	)
}

// header puts title on the left and status on the right.
func (l Layout) header(title, status string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(status)
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		// Narrow terminal: the title wins.
		return theme.HeaderStyle.MaxWidth(l.Width).Render(title)
	}
	return left + l.pad(theme.HeaderStyle, gap) + right
}

// statusBar shows the notice, if any, ahead of the key hints.
func (l Layout) statusBar(hints, notice string) string {
	line := theme.StatusBarStyle.Render(hints)
	if notice != "" {
		line = theme.StatusBarStyle.Inherit(theme.NoticeStyle).Render(notice) + line
	}
	if w := lipgloss.Width(line); w < l.Width {
		return line + l.pad(theme.StatusBarStyle, l.Width-w)
	}
	return lipgloss.NewStyle().MaxWidth(l.Width).Render(line)
}

// pad renders n blank columns in the background of style.
func (l Layout) pad(style lipgloss.Style, n int) string {
	return lipgloss.NewStyle().
		Width(n).
		Background(style.GetBackground()).
		Render("")
}
