package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-serialsession/internal/tui/styles"
)

// DataReceivedMsg carries one chunk read from the session's input stream
type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	ShowTimestamps bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(mode DisplayMode) *DataFormatter {
	return &DataFormatter{mode: mode}
}

func (df *DataFormatter) SetDisplayMode(mode DisplayMode) {
	df.mode = mode
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

// printable replaces everything outside printable ASCII with a dot so that
// device output cannot inject terminal control sequences
func printable(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	var parts []string

	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+printable(msg.Data))
	}

	// If both are disabled, show raw bytes count
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}

	line := styles.RXStyle.Render("↙ RX") + ": " + strings.Join(parts, "  ")
	if df.mode.ShowTimestamps {
		ts := styles.TimestampStyle.Render("[" + msg.Timestamp.Format("15:04:05.000") + "]")
		line = ts + " " + line
	}
	return line
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.ShowTimestamps = !df.mode.ShowTimestamps
}
