package components

import "github.com/charmbracelet/bubbles/key"

// DetailModalKeyMap defines key bindings for the detail modal
type DetailModalKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Escape key.Binding
}

// DefaultDetailModalKeyMap returns the default detail modal key bindings
func DefaultDetailModalKeyMap() DetailModalKeyMap {
	return DetailModalKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc", "q", "enter", "backspace"),
			key.WithHelp("esc", "close"),
		),
	}
}

// GenrePickerKeyMap defines key bindings for the genre picker
type GenrePickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Escape key.Binding
}

// DefaultGenrePickerKeyMap returns the default genre picker key bindings.
// Letters are left to the filter input.
func DefaultGenrePickerKeyMap() GenrePickerKeyMap {
	return GenrePickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p", "ctrl+k"),
			key.WithHelp("↑/C-p", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n", "ctrl+j"),
			key.WithHelp("↓/C-n", "next"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Package-level key map instances
var (
	DetailModalKeys = DefaultDetailModalKeyMap()
	GenrePickerKeys = DefaultGenrePickerKeyMap()
)
