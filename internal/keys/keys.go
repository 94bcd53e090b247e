package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Cursor
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding

	// Drill down / back out
	Select key.Binding
	Back   key.Binding

	// Period navigation
	Prev  key.Binding
	Next  key.Binding
	Today key.Binding

	// Reordering within a day
	MoveUp   key.Binding
	MoveDown key.Binding

	// Item actions
	Start    key.Binding
	Finalize key.Binding
	Delete   key.Binding

	// Planning
	New key.Binding

	// Manual refresh
	Refresh key.Binding

	// Pages
	Command   key.Binding
	Dashboard key.Binding
	Settings  key.Binding

	// Help toggle
	Help key.Binding

	Quit key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous day"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Prev: key.NewBinding(
			key.WithKeys("[", "pgup"),
			key.WithHelp("[", "previous period"),
		),
		Next: key.NewBinding(
			key.WithKeys("]", "pgdown"),
			key.WithHelp("]", "next period"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move item up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move item down"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start production"),
		),
		Finalize: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "finalize"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "plan item"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "go to"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "dashboard"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Select, k.Back, k.Prev, k.Next,
		k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Select, k.Back, k.Prev, k.Next, k.Today},
		{k.MoveUp, k.MoveDown, k.Start, k.Finalize, k.Delete, k.New},
		{k.Command, k.Dashboard, k.Settings, k.Refresh, k.Help, k.Quit},
	}
}
