package tui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeys are always active.
type GlobalKeys struct {
	Quit  key.Binding
	Help  key.Binding
	Focus key.Binding
	Tab1  key.Binding
	Tab2  key.Binding
}

var globalKeys = GlobalKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?", "ctrl+h"),
		key.WithHelp("?", "help"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "switch panel"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "Update"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "Logs"),
	),
}

// ListKeys navigate the left panel lists.
type ListKeys struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
}

var listKeys = ListKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "navigate"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "run"),
	),
}

// LogKeys are active on the Logs tab.
type LogKeys struct {
	PrevMonth key.Binding
	NextMonth key.Binding
	Filter    key.Binding
	Reload    key.Binding
}

var logKeys = LogKeys{
	PrevMonth: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/→", "month"),
	),
	NextMonth: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("←/→", "month"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
}

// ScrollKeys scroll the right panel viewport.
type ScrollKeys struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

var scrollKeys = ScrollKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("PgUp/PgDn", "scroll"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
	),
}

// ConfirmKeys for inline confirmation prompts.
type ConfirmKeys struct {
	Yes    key.Binding
	No     key.Binding
	Cancel key.Binding
}

var confirmKeys = ConfirmKeys{
	Yes: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	No: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "cancel"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
}

// OverlayKeys close an overlay.
var overlayClose = key.NewBinding(
	key.WithKeys("esc", "?", "ctrl+h"),
	key.WithHelp("Esc", "close"),
)
