package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the fleetdesk UI.
type KeyMap struct {
	// Signed-out screen.
	OpenLogin    key.Binding
	OpenRegister key.Binding

	// Dialogs.
	NextField      key.Binding
	PrevField      key.Binding
	Submit         key.Binding
	Cancel         key.Binding
	CycleRole      key.Binding
	ToggleRemember key.Binding

	// Dashboard.
	Portfolio    key.Binding
	Fleet        key.Binding
	Shifts       key.Binding
	Console      key.Binding
	Capabilities key.Binding
	Logout       key.Binding

	// Secret-key modal.
	CopyKey     key.Binding
	DownloadKey key.Binding
	Acknowledge key.Binding

	// Notification tray.
	DismissLatest key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	OpenLogin:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "sign in")),
	OpenRegister: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "register")),

	NextField:      key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField:      key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-tab", "previous field")),
	Submit:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Cancel:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	CycleRole:      key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("C-t", "role")),
	ToggleRemember: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("C-r", "remember me")),

	Portfolio:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "portfolio")),
	Fleet:        key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "fleet")),
	Shifts:       key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "shifts")),
	Console:      key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "console")),
	Capabilities: key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "capabilities")),
	Logout:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sign out")),

	CopyKey:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy key")),
	DownloadKey: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "save key")),
	Acknowledge: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "I stored it")),

	DismissLatest: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),

	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// helpEntries renders bindings as "key description" pairs for the help line.
func helpEntries(bindings ...key.Binding) []string {
	entries := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		entries = append(entries, help.Key+" "+help.Desc)
	}
	return entries
}
