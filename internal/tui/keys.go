package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the demo TUI.
type KeyMap struct {
	// Posting
	ShowShort      key.Binding
	ShowLong       key.Binding
	ShowIndefinite key.Binding
	ShowExplicit   key.Binding

	// Acting on the visible snackbar
	Dismiss key.Binding
	Swipe   key.Binding
	Action  key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ShowShort, k.Dismiss, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ShowShort, k.ShowLong, k.ShowIndefinite, k.ShowExplicit},
		{k.Dismiss, k.Swipe, k.Action},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ShowShort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "show short"),
		),
		ShowLong: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "show long"),
		),
		ShowIndefinite: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "show indefinite"),
		),
		ShowExplicit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "show 5s"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss"),
		),
		Swipe: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "swipe away"),
		),
		Action: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "press action"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}
