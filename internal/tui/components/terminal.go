package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is a scrolling view of formatted received data
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	data      []string
	follow    bool
}

func NewTerminal(width, height int, mode DisplayMode) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: NewDataFormatter(mode),
		data:      make([]string, 0),
		follow:    true,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

// Following reports whether new data scrolls the view to the bottom
func (t *Terminal) Following() bool {
	return t.follow
}

func (t *Terminal) Follow() {
	t.follow = true
	t.viewport.GotoBottom()
}

func (t *Terminal) AddMessage(msg DataReceivedMsg) {
	t.data = append(t.data, t.formatter.FormatMessage(msg))
	t.render()
}

// Refresh reformats everything after a display mode change
func (t *Terminal) Refresh(rawData []DataReceivedMsg) {
	t.data = t.formatter.FormatMessages(rawData)
	t.render()
}

func (t *Terminal) render() {
	t.viewport.SetContent(strings.Join(t.data, "\n"))
	if t.follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Clear() {
	t.data = make([]string, 0)
	t.viewport.SetContent("")
}

func (t *Terminal) ToggleHex() {
	t.formatter.ToggleHex()
}

func (t *Terminal) ToggleASCII() {
	t.formatter.ToggleASCII()
}

func (t *Terminal) ToggleTimestamps() {
	t.formatter.ToggleTimestamps()
}

func (t *Terminal) GetDisplayMode() DisplayMode {
	return t.formatter.GetDisplayMode()
}

func (t *Terminal) Update(msg tea.Msg) tea.Cmd {
	// Keys are handled by the model so the viewport only sees resizes and
	// mouse scrolling
	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		t.follow = t.viewport.AtBottom()
		return cmd
	default:
		return nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
