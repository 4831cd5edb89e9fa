package types

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the terminal reader.
// It lives in pkg/types to be shared between the model and the help view.
type KeyMap struct {
	// General
	Help key.Binding
	Quit key.Binding

	// Paging. Left and Right follow the reading direction; Next and Prev
	// always mean the same thing.
	Left  key.Binding
	Right key.Binding
	Next  key.Binding
	Prev  key.Binding
	First key.Binding
	Last  key.Binding

	// Command mode
	EnterCmdMode key.Binding // ":"
	ExecuteCmd   key.Binding // Enter
	ExitCmdMode  key.Binding // Esc
	Reload       key.Binding
}

// DefaultKeyMap returns the bindings for a reading direction. With
// nextIsLeft the Left arrow turns to the next page, as in right-to-left
// books.
func DefaultKeyMap(nextIsLeft bool) KeyMap {
	leftHelp, rightHelp := "prev page", "next page"
	if nextIsLeft {
		leftHelp, rightHelp = "next page", "prev page"
	}

	return KeyMap{
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Left:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", leftHelp)),
		Right: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", rightHelp)),
		Next:  key.NewBinding(key.WithKeys(" ", "j", "pgdown"), key.WithHelp("space/j", "next page")),
		Prev:  key.NewBinding(key.WithKeys("k", "pgup", "backspace"), key.WithHelp("k", "prev page")),
		First: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first page")),
		Last:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last page")),

		EnterCmdMode: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		ExecuteCmd:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		ExitCmdMode:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Reload:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.EnterCmdMode, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Next, k.Prev},
		{k.First, k.Last, k.Reload},
		{k.EnterCmdMode, k.Help, k.Quit},
	}
}
