package finalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/theme"
)

// SubmittedMsg is dispatched when the user completes the form.
type SubmittedMsg struct {
	ItemID       string
	Finalization model.Finalization
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	quantity    string
	transaction string
}

// Model is the Bubble Tea model of the finalization form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	item   model.WorkItem
	width  int
	height int
}

// New creates a new finalization form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form for item, prefilling the programmed quantity.
func (m *Model) Start(item model.WorkItem) tea.Cmd {
	m.item = item
	m.fb.quantity = strconv.Itoa(item.ProgrammedQuantity)
	m.fb.transaction = item.TransactionNumber
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
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
		submit := m.handleSubmit()
		m.form = nil
		return m, submit
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := theme.TitleStyle.Render(fmt.Sprintf("Finalize %s - %s", m.item.Code, m.item.ProductName))
	planned := theme.HelpStyle.Render(fmt.Sprintf("Programmed quantity: %d", m.item.ProgrammedQuantity))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, planned, "", m.form.View()))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Produced quantity").
				Value(&m.fb.quantity).
				Validate(validateQuantity),
			huh.NewInput().
				Title("Transaction number").
				Placeholder("ERP transaction").
				Value(&m.fb.transaction).
				Validate(validateRequired("Transaction number")),
		),
	).WithWidth(m.formWidth()).
		WithKeyMap(cancelKeyMap())
}

func (m Model) handleSubmit() tea.Cmd {
	qty, err := ParseQuantity(m.fb.quantity)
	if err != nil {
		// Validation already rejected this; treat as a cancel.
		return func() tea.Msg { return CancelMsg{} }
	}
	msg := SubmittedMsg{
		ItemID: m.item.ID,
		Finalization: model.Finalization{
			Quantity:          qty,
			TransactionNumber: strings.TrimSpace(m.fb.transaction),
		},
	}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

// ParseQuantity parses a non-negative produced quantity.
func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("quantity must be a whole number")
	}
	if n < 0 {
		return 0, fmt.Errorf("quantity must not be negative")
	}
	return n, nil
}

func validateQuantity(s string) error {
	_, err := ParseQuantity(s)
	return err
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

// cancelKeyMap lets esc abort the form.
func cancelKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"))
	return km
}
