package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Escape   key.Binding
	New      key.Binding
	Toggle   key.Binding
	Up       key.Binding
	Down     key.Binding
	NewEntry key.Binding
	Review   key.Binding
	Void     key.Binding
	Pay      key.Binding
	MarkPaid key.Binding
	Filed    key.Binding
	Refresh  key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select/confirm"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new account"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "activate/deactivate"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("up/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("down/j", "move down"),
	),
	NewEntry: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "new entry"),
	),
	Review: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "review entry"),
	),
	Void: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "void entry"),
	),
	Pay: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "record payment"),
	),
	MarkPaid: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mark paid"),
	),
	Filed: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "mark filed"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "refresh"),
	),
}
