package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Tables  key.Binding
	Filter  key.Binding
	Sort    key.Binding
	Limit   key.Binding
	Next    key.Binding
	Prev    key.Binding
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Cancel  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		Tables:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tables")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Sort:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort by column")),
		Limit:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "row limit")),
		Next:    key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		Prev:    key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add record")),
		Edit:    key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "update cell")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete record")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Filter, k.Sort, k.Add, k.Edit, k.Delete, k.Tables, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Filter, k.Sort, k.Limit, k.Next, k.Prev},
		{k.Add, k.Edit, k.Delete, k.Refresh},
		{k.Tables, k.Cancel, k.Help, k.Quit},
	}
}
