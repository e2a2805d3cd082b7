package styles

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette, trimmed to what the viewer draws with
var (
	Base     = lipgloss.Color("#1e1e2e")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Surface2 = lipgloss.Color("#585b70")
	Subtext0 = lipgloss.Color("#a6adc8")
	Subtext1 = lipgloss.Color("#bac2de")
	Text     = lipgloss.Color("#cdd6f4")

	Blue   = lipgloss.Color("#89b4fa")
	Sky    = lipgloss.Color("#89dceb")
	Green  = lipgloss.Color("#a6e3a1")
	Yellow = lipgloss.Color("#f9e2af")
	Peach  = lipgloss.Color("#fab387")
	Red    = lipgloss.Color("#f38ba8")
	Mauve  = lipgloss.Color("#cba6f7")
)

var (
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(Surface1)

	HelpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Surface2).
			Padding(1, 2).
			Margin(1, 0)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(Subtext0)

	RXStyle = lipgloss.NewStyle().
		Foreground(Sky).
		Bold(true)

	// CLI output
	InfoStyle = lipgloss.NewStyle().
			Foreground(Mauve).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)
)

// StatusType is the connection state shown by the status bar
type StatusType int

const (
	StatusConnecting StatusType = iota
	StatusConnected
	StatusDisconnected
	StatusError
)

// StatusIndicator returns the single glyph and its style for status
func StatusIndicator(status StatusType) (string, lipgloss.Style) {
	switch status {
	case StatusConnected:
		return "●", lipgloss.NewStyle().Foreground(Green)
	case StatusConnecting:
		return "○", lipgloss.NewStyle().Foreground(Yellow)
	case StatusError:
		return "✗", lipgloss.NewStyle().Foreground(Red)
	default:
		return "○", lipgloss.NewStyle().Foreground(Red)
	}
}
