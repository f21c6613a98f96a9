package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the key bindings active while a scrape is running.
type keyMap struct {
	Quit key.Binding
}

// keys is the global key map.
var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel scrape"),
	),
}
