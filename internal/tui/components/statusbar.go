package components

import (
	"fmt"

	"github.com/allbin/go-serialsession"
	"github.com/allbin/go-serialsession/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type StatusBar struct {
	devicePath string
	backend    string
	config     serial.Config
	status     styles.StatusType
	err        error
	bytesRX    int
	width      int
}

func NewStatusBar(devicePath, backend string, config serial.Config) *StatusBar {
	return &StatusBar{
		devicePath: devicePath,
		backend:    backend,
		config:     config,
		status:     styles.StatusConnecting,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnecting() {
	sb.status = styles.StatusConnecting
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = styles.StatusConnected
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	if err != nil {
		sb.status = styles.StatusError
	} else {
		sb.status = styles.StatusDisconnected
	}
	sb.err = err
}

func (sb *StatusBar) Status() styles.StatusType {
	return sb.status
}

func (sb *StatusBar) Err() error {
	return sb.err
}

func (sb *StatusBar) AddReceived(n int) {
	sb.bytesRX += n
}

func (sb *StatusBar) ResetReceived() {
	sb.bytesRX = 0
}

// LineSettings renders the applied settings like "⚡ 9600 7E2 hardware"
func (sb *StatusBar) LineSettings() string {
	return "⚡ " + sb.config.String()
}

// View renders the single status line at the bottom of the viewer
func (sb *StatusBar) View(follow bool, timestamp string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	mode := lipgloss.NewStyle().
		Foreground(styles.Base).
		Background(styles.Blue).
		Bold(true).
		Padding(0, 1).
		Render("LISTEN")

	device := lipgloss.NewStyle().
		Foreground(styles.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.devicePath)

	glyph, glyphStyle := styles.StatusIndicator(sb.status)
	indicator := glyphStyle.Render(glyph)

	divider := lipgloss.NewStyle().
		Foreground(styles.Surface2).
		Padding(0, 1).
		Render("│")

	left := []string{mode, device, indicator}
	if sb.err != nil {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.Red).
			Padding(0, 1).
			Render(sb.err.Error()))
	} else if !follow {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.Peach).
			Padding(0, 1).
			Render("[SCROLL] f to follow"))
	}
	left = append(left, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	details := lipgloss.NewStyle().
		Foreground(styles.Subtext0).
		Padding(0, 1).
		Render(fmt.Sprintf("%s %s RX %d", sb.LineSettings(), sb.backend, sb.bytesRX))

	clock := lipgloss.NewStyle().
		Foreground(styles.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, clock)

	spacerWidth := width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
