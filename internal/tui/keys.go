package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	all      key.Binding
	active   key.Binding
	inactive key.Binding
	next     key.Binding
	up       key.Binding
	down     key.Binding
	toggle   key.Binding
	remove   key.Binding
	yes      key.Binding
	no       key.Binding
	quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		all: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "all"),
		),
		active: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "active"),
		),
		inactive: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "inactive"),
		),
		next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next filter"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "toggle"),
		),
		remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		no: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.up, k.down, k.toggle, k.remove, k.quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.all, k.active, k.inactive, k.next},
		{k.up, k.down, k.toggle, k.remove},
		{k.quit},
	}
}

// confirmKeys is the help shown while a removal awaits an answer.
type confirmKeys struct{ keyMap }

func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.yes, k.no}
}

func (k confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
