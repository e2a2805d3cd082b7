package models

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/allbin/go-serialsession"
	"github.com/allbin/go-serialsession/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// ConnectionStatusMsg reports the outcome of opening the session, or the
// end of the read loop
type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// SessionModel holds the state shared by the viewer and its read loop
type SessionModel struct {
	devicePath string

	session   *serial.Session
	connected bool
	rawData   []components.DataReceivedMsg
	maxData   int
	err       error
	ready     bool

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

// NewSessionModel keeps at most maxData received chunks; zero means no limit
func NewSessionModel(devicePath string, maxData int) *SessionModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SessionModel{
		devicePath: devicePath,
		rawData:    make([]components.DataReceivedMsg, 0),
		maxData:    maxData,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (m *SessionModel) GetSession() *serial.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *SessionModel) SetSession(s *serial.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
}

func (m *SessionModel) GetDevicePath() string {
	return m.devicePath
}

func (m *SessionModel) IsConnected() bool {
	return m.connected
}

func (m *SessionModel) SetConnected(connected bool) {
	m.connected = connected
}

func (m *SessionModel) GetError() error {
	return m.err
}

func (m *SessionModel) SetError(err error) {
	m.err = err
}

func (m *SessionModel) IsReady() bool {
	return m.ready
}

func (m *SessionModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SessionModel) GetRawData() []components.DataReceivedMsg {
	return m.rawData
}

// AddRawData appends msg and reports whether older chunks were dropped
func (m *SessionModel) AddRawData(msg components.DataReceivedMsg) bool {
	m.rawData = append(m.rawData, msg)
	if m.maxData > 0 && len(m.rawData) > m.maxData {
		m.rawData = append(m.rawData[:0], m.rawData[len(m.rawData)-m.maxData:]...)
		return true
	}
	return false
}

func (m *SessionModel) ClearData() {
	m.rawData = make([]components.DataReceivedMsg, 0)
}

func (m *SessionModel) GetContext() context.Context {
	return m.ctx
}

// ReadLoop forwards everything read from the session's input stream to send
// until the context is cancelled or the stream fails. It reports the end of
// the loop as a ConnectionStatusMsg.
func (m *SessionModel) ReadLoop(send func(tea.Msg)) {
	s := m.GetSession()
	if s == nil {
		return
	}
	in := s.InputStream()
	if in == nil {
		send(ConnectionStatusMsg{Connected: false, Error: serial.ErrPortClosed})
		return
	}

	buffer := make([]byte, 4096)
	for {
		n, err := in.ReadContext(m.ctx, buffer)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])
			send(components.DataReceivedMsg{
				Timestamp: time.Now(),
				Data:      data,
			})
		}
		if err != nil {
			if m.ctx.Err() != nil || errors.Is(err, serial.ErrPortClosed) {
				return
			}
			send(ConnectionStatusMsg{Connected: false, Error: err})
			return
		}
	}
}

func (m *SessionModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Cleanup stops the read loop and closes the session
func (m *SessionModel) Cleanup() error {
	m.Cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Close()
	m.session = nil
	return err
}
