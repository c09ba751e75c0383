package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Home    key.Binding
	Create  key.Binding
	Gallery key.Binding
	Quit    key.Binding

	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding
	Right  key.Binding
	Submit key.Binding
	Cancel key.Binding
	Delete key.Binding

	Open    key.Binding
	Edit    key.Binding
	Refresh key.Binding
	Back    key.Binding

	Yes key.Binding
	No  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Home:    key.NewBinding(key.WithKeys("f1", "1"), key.WithHelp("1", "home")),
		Create:  key.NewBinding(key.WithKeys("f2", "2"), key.WithHelp("2", "create")),
		Gallery: key.NewBinding(key.WithKeys("f3", "3"), key.WithHelp("3", "gallery")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Left:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "color")),
		Right:  key.NewBinding(key.WithKeys("right")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Delete: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),

		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),

		Yes: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "delete")),
		No:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n/esc", "keep")),
	}
}

// shortHelp lists the bindings relevant on the current page.
func (m appModel) shortHelp() []key.Binding {
	k := m.keys
	if m.confirm != nil {
		return []key.Binding{k.Yes, k.No}
	}
	switch m.page.(type) {
	case createPage:
		bs := []key.Binding{k.Next, k.Left, k.Submit, k.Cancel}
		if _, ok := m.form.editTarget(); ok {
			bs = append(bs, k.Delete)
		}
		return append(bs, key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1-f3", "pages")))
	case galleryPage:
		return []key.Binding{k.Open, k.Edit, k.Refresh, k.Home, k.Create, k.Quit}
	case detailPage:
		return []key.Binding{k.Edit, k.Back, k.Home, k.Quit}
	}
	return []key.Binding{k.Home, k.Create, k.Gallery, k.Quit}
}
