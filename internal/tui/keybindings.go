package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the TUI responds to.
type KeyMap struct {
	Convert      key.Binding
	SwitchMethod key.Binding
	ClearEditor  key.Binding
	SwitchFocus  key.Binding
	Quit         key.Binding

	// History pane
	Up         key.Binding
	Down       key.Binding
	Protect    key.Binding
	Remove     key.Binding
	ClearAll   key.Binding
	Restore    key.Binding
	QuitPane   key.Binding
	BackToEdit key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Convert: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "convert"),
		),
		SwitchMethod: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "switch method"),
		),
		ClearEditor: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Protect: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "protect"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "d"),
			key.WithHelp("x", "remove"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "clear all"),
		),
		Restore: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "restore input"),
		),
		QuitPane: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		BackToEdit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "editor"),
		),
	}
}

// editorHelp implements help.KeyMap for the editor pane.
type editorHelp KeyMap

func (k editorHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Convert, k.SwitchMethod, k.ClearEditor, k.SwitchFocus, k.Quit}
}

func (k editorHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// historyHelp implements help.KeyMap for the history pane.
type historyHelp KeyMap

func (k historyHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Protect, k.Remove, k.ClearAll, k.Restore, k.SwitchFocus, k.QuitPane}
}

func (k historyHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
