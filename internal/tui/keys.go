package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Jobs    key.Binding
	Timer   key.Binding
	Draft   key.Binding
	Entries key.Binding

	// Actions
	Select  key.Binding
	New     key.Binding
	Delete  key.Binding
	Start   key.Binding
	Pause   key.Binding
	Stop    key.Binding
	Done    key.Binding
	Add     key.Binding
	Reset   key.Binding
	Save    key.Binding
	Discard key.Binding
	Refresh key.Binding

	// Movement
	Up   key.Binding
	Down key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Jobs:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "jobs")),
	Timer:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "timer")),
	Draft:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "draft")),
	Entries: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "entries")),
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete")),
	Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
	Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
	Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
	Done:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add time")),
	Reset:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset")),
	Save:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save")),
	Discard: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "discard")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
