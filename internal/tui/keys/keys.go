package keys

import "github.com/charmbracelet/bubbles/key"

// ViewerKeys are the bindings of the read-only session viewer
type ViewerKeys struct {
	Quit             key.Binding
	Help             key.Binding
	Clear            key.Binding
	ToggleHex        key.Binding
	ToggleASCII      key.Binding
	ToggleTimestamps key.Binding
	Follow           key.Binding
}

func NewViewerKeys() ViewerKeys {
	return ViewerKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear buffer"),
		),
		ToggleHex: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle hex"),
		),
		ToggleASCII: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle ascii"),
		),
		ToggleTimestamps: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle timestamps"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f", "G"),
			key.WithHelp("f", "follow output"),
		),
	}
}

func (k ViewerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Clear, k.Quit}
}

func (k ViewerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Clear, k.ToggleHex, k.ToggleASCII, k.ToggleTimestamps, k.Follow},
		{k.Help, k.Quit},
	}
}
