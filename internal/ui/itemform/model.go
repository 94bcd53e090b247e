package itemform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/production-calendar/internal/datebucket"
	"github.com/nhle/production-calendar/internal/model"
	"github.com/nhle/production-calendar/internal/theme"
)

// CreatedMsg is dispatched when the user submits a new work item.
type CreatedMsg struct {
	Item model.WorkItem
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	day         string
	code        string
	productName string
	department  string
	batch       string
	quantity    string
}

// Model is the Bubble Tea model of the manual planning form.
type Model struct {
	form        *huh.Form
	fb          *formBindings
	departments []string
	width       int
	height      int
}

// New creates a new planning form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetDepartments offers the departments seen in items as suggestions.
func (m *Model) SetDepartments(items []model.WorkItem) {
	seen := make(map[string]bool)
	m.departments = m.departments[:0]
	for _, it := range items {
		d := strings.TrimSpace(it.Department)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		m.departments = append(m.departments, d)
	}
	sort.Strings(m.departments)
}

// Start initializes an empty form scheduled on day.
func (m *Model) Start(day time.Time) tea.Cmd {
	*m.fb = formBindings{day: datebucket.DayKey(day)}
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

	content := theme.TitleStyle.Render("Plan work item") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	dept := huh.NewInput().
		Title("Department").
		Placeholder("Optional").
		Value(&m.fb.department)
	if len(m.departments) > 0 {
		dept = dept.Suggestions(m.departments)
	}

	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"))

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Production day").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.day).
				Validate(validateDate),
			huh.NewInput().
				Title("Code").
				Value(&m.fb.code).
				Validate(validateRequired("Code")),
			huh.NewInput().
				Title("Product").
				Value(&m.fb.productName).
				Validate(validateRequired("Product")),
			dept,
			huh.NewInput().
				Title("Batch number").
				Placeholder("Optional").
				Value(&m.fb.batch),
			huh.NewInput().
				Title("Quantity").
				Value(&m.fb.quantity).
				Validate(validateQuantity),
		),
	).WithWidth(m.formWidth()).
		WithHeight(m.formHeight()).
		WithKeyMap(km)
}

func (m Model) handleSubmit() tea.Cmd {
	day, err := datebucket.ParseDay(strings.TrimSpace(m.fb.day), time.Local)
	if err != nil {
		return func() tea.Msg { return CancelMsg{} }
	}
	qty, err := parseQuantity(m.fb.quantity)
	if err != nil {
		return func() tea.Msg { return CancelMsg{} }
	}

	item := model.WorkItem{
		Day:         day,
		Code:        strings.TrimSpace(m.fb.code),
		ProductName: strings.TrimSpace(m.fb.productName),
		Department:  strings.TrimSpace(m.fb.department),
		BatchNumber: strings.TrimSpace(m.fb.batch),
		Quantity:    qty,
	}
	return func() tea.Msg { return CreatedMsg{Item: item} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func parseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("quantity must be a whole number")
	}
	if n < 0 {
		return 0, fmt.Errorf("quantity must not be negative")
	}
	return n, nil
}

func validateQuantity(s string) error {
	_, err := parseQuantity(s)
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

func validateDate(s string) error {
	if _, err := datebucket.ParseDay(strings.TrimSpace(s), time.Local); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
