package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is shared by the search browser and the dashboard. Close only
// applies to the dashboard, where there is no query input to type "q" into.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Copy       key.Binding
	Quit       key.Binding
	Close      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	NextSender key.Binding
	NextLabel  key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+k"),
		key.WithHelp("up/C-k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+j"),
		key.WithHelp("dn/C-j", "down"),
	),
	Copy: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "copy"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
	Close: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("C-u", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("C-d", "scroll down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	NextSender: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "sender"),
	),
	NextLabel: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "sentiment"),
	),
}
