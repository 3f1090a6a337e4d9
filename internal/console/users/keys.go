package users

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Accept      key.Binding
	Cancel      key.Binding
	Open        key.Binding
	Close       key.Binding
	Delete      key.Binding
	MakeAdmin   key.Binding
	RemoveAdmin key.Binding
	Search      key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	Reload      key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Accept:      key.NewBinding(key.WithKeys("enter", "y", "Y"), key.WithHelp("y/enter", "accept")),
		Cancel:      key.NewBinding(key.WithKeys("esc", "n", "N"), key.WithHelp("n/esc", "cancel")),
		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		MakeAdmin:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "make admin")),
		RemoveAdmin: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove admin")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextPage:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
		PrevPage:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
		Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
	}
}
