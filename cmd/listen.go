/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/allbin/go-serialsession/internal/tui/components"
	"github.com/allbin/go-serialsession/internal/tui/keys"
	"github.com/allbin/go-serialsession/internal/tui/models"
	"github.com/allbin/go-serialsession/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen <device>",
	Short: "Open a session and watch incoming data in a terminal UI",
	Long: `Open a serial session and display everything the device sends in a
read-only terminal UI.

The session is opened with the global line settings. If the device is not
readable and writable, the privileged helper is run first.

Example usage:
  serialsession listen /dev/ttyUSB0
  serialsession listen /dev/ttyUSB0 --baud 9600 --parity even
  serialsession listen /dev/ttyS1 --raw --log-file listen.log`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		devicePath := args[0]

		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
		rawMode, _ := cmd.Flags().GetBool("raw")
		history, _ := cmd.Flags().GetInt("history")
		logFile, _ := cmd.Flags().GetString("log-file")

		mode := components.DisplayMode{
			ShowHex:        !rawMode,
			ShowASCII:      true,
			ShowTimestamps: !noTimestamps && !rawMode,
		}

		if err := runListenTUI(devicePath, mode, history, logFile); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", styles.ErrorStyle.Render("✗"), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().Bool("no-timestamps", false, "Hide timestamps from output")
	listenCmd.Flags().Bool("raw", false, "Raw output mode: ASCII only, no timestamps")
	listenCmd.Flags().Int("history", 10000, "Number of received chunks kept for redisplay (0 = unlimited)")
	listenCmd.Flags().String("log-file", "", "Write session logs to this file instead of discarding them")
}

// listenModel represents the Bubble Tea model for the listen command
type listenModel struct {
	*models.SessionModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.ViewerKeys
}

func newListenModel(devicePath string, mode components.DisplayMode, history int) (*listenModel, error) {
	config, err := lineConfig()
	if err != nil {
		return nil, err
	}

	m := &listenModel{
		SessionModel: models.NewSessionModel(devicePath, history),
		terminal:     components.NewTerminal(80, 20, mode),
		statusBar:    components.NewStatusBar(devicePath, viper.GetString("backend"), config),
		help:         help.New(),
		keys:         keys.NewViewerKeys(),
	}
	m.statusBar.SetConnecting()
	return m, nil
}

func runListenTUI(devicePath string, mode components.DisplayMode, history int, logFile string) error {
	// The alt screen owns stderr, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut)

	m, err := newListenModel(devicePath, mode, history)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Open in the background so the UI can show progress while the helper runs
	go func() {
		s, err := openSession(m.GetContext(), devicePath, logger)
		if err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}
		m.SetSession(s)
		p.Send(models.ConnectionStatusMsg{Connected: true})

		m.ReadLoop(p.Send)
	}()

	_, err = p.Run()

	if cerr := m.Cleanup(); cerr != nil {
		logger.Warn("closing session failed", "error", cerr)
	}
	return err
}

func (m *listenModel) Init() tea.Cmd {
	return tick()
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Status bar is single line
		m.terminal.SetSize(msg.Width, msg.Height-1)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)
		cmds = append(cmds, m.terminal.Update(msg))

	case tea.MouseMsg:
		cmds = append(cmds, m.terminal.Update(msg))

	case tickMsg:
		cmds = append(cmds, tick())

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else if msg.Connected {
			m.statusBar.SetConnected()
		} else {
			m.statusBar.SetDisconnected(nil)
		}

	case components.DataReceivedMsg:
		if !m.IsReady() {
			m.terminal.SetSize(80, 20)
			m.SetReady(true)
		}

		m.statusBar.AddReceived(len(msg.Data))
		if m.AddRawData(msg) {
			m.terminal.Refresh(m.GetRawData())
		} else {
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cancel()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.ClearData()
			m.terminal.Clear()
			m.statusBar.ResetReceived()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()
			m.terminal.Refresh(m.GetRawData())

		case key.Matches(msg, m.keys.ToggleASCII):
			m.terminal.ToggleASCII()
			m.terminal.Refresh(m.GetRawData())

		case key.Matches(msg, m.keys.ToggleTimestamps):
			m.terminal.ToggleTimestamps()
			m.terminal.Refresh(m.GetRawData())

		case key.Matches(msg, m.keys.Follow):
			m.terminal.Follow()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *listenModel) View() string {
	content := "Initializing..."
	if m.IsReady() {
		content = m.terminal.View()
	}

	statusBar := m.statusBar.View(m.terminal.Following(), time.Now().Format("15:04:05"))
	contentWithBorder := styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			styles.HelpBoxStyle.Render(m.help.View(m.keys)),
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		statusBar,
	)
}

