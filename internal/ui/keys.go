package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send     key.Binding
	Quit     key.Binding
	Cancel   key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Prev     key.Binding
	Next     key.Binding
	Reply    key.Binding
	Edit     key.Binding
	React    key.Binding
	Resend   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		Prev:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p/n", "select")),
		Next:     key.NewBinding(key.WithKeys("ctrl+n")),
		Reply:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reply")),
		Edit:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "edit")),
		React:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "👍")),
		Resend:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "resend")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Send, k.Prev, k.Reply, k.Edit, k.React, k.Resend, k.Cancel, k.Quit}
}
