package confirm

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ResultMsg reports the answer. ID echoes what Start was given.
type ResultMsg struct {
	ID        string
	Confirmed bool
}

// Model is a yes/no question.
type Model struct {
	form   *huh.Form
	answer *bool
	id     string
	width  int
}

// New creates a confirmation model.
func New(width int) Model {
	return Model{answer: new(bool), width: width}
}

// Start asks question about id. The answer defaults to no.
func (m *Model) Start(id, question, detail string) tea.Cmd {
	m.id = id
	*m.answer = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Description(detail).
				Affirmative("Delete").
				Negative("Keep").
				Value(m.answer),
		),
	).WithWidth(m.formWidth()).
		WithKeyMap(cancelKeyMap())
	return m.form.Init()
}

// Update handles messages for the confirmation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		res := ResultMsg{ID: m.id, Confirmed: *m.answer}
		m.form = nil
		return m, func() tea.Msg { return res }
	case huh.StateAborted:
		res := ResultMsg{ID: m.id}
		m.form = nil
		return m, func() tea.Msg { return res }
	}
	return m, cmd
}

// View renders the question.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
}

// SetSize updates the width.
func (m *Model) SetSize(width int) {
	m.width = width
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 30 {
		w = 30
	}
	if w > 70 {
		w = 70
	}
	return w
}

// cancelKeyMap lets esc abort the form.
func cancelKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"))
	return km
}
