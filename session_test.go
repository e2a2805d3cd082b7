package serial

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// loopbackHandle returns written bytes to its reader, like a TX/RX jumper.
type loopbackHandle struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	closes   int
	closeErr error
}

func (h *loopbackHandle) Read(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buf.Len() == 0 {
		return 0, io.EOF
	}
	return h.buf.Read(p)
}

func (h *loopbackHandle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Write(p)
}

func (h *loopbackHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closes++
	return h.closeErr
}

type openCall struct {
	path                                       string
	baud, stopBits, dataBits, parity, flowCtrl int
}

type fakeConfigurator struct {
	handle Handle
	err    error
	calls  []openCall
}

func (c *fakeConfigurator) ConfigureAndOpen(path string, baud, stopBits, dataBits, parity, flowControl int) (Handle, error) {
	c.calls = append(c.calls, openCall{path, baud, stopBits, dataBits, parity, flowControl})
	return c.handle, c.err
}

type fakeEscalator struct {
	code    int
	err     error
	onRun   func()
	calls   int
	scripts []string
}

func (e *fakeEscalator) Run(ctx context.Context, script string) (int, error) {
	e.calls++
	e.scripts = append(e.scripts, script)
	if e.onRun != nil {
		e.onRun()
	}
	return e.code, e.err
}

// fakeAccess grants access once granted is true.
type fakeAccess struct {
	granted bool
	checks  int
}

func (a *fakeAccess) check(path string) error {
	a.checks++
	if a.granted {
		return nil
	}
	return ErrPermissionDenied
}

type harness struct {
	session *Session
	conf    *fakeConfigurator
	esc     *fakeEscalator
	access  *fakeAccess
	handle  *loopbackHandle
	logs    *bytes.Buffer
}

func newHarness(t *testing.T, granted bool) *harness {
	t.Helper()
	h := &harness{
		handle: &loopbackHandle{},
		esc:    &fakeEscalator{},
		access: &fakeAccess{granted: granted},
		logs:   &bytes.Buffer{},
	}
	h.conf = &fakeConfigurator{handle: h.handle}

	s, err := NewSession(
		WithConfigurator(h.conf),
		WithEscalator(h.esc),
		WithAccessChecker(h.access.check),
		WithLogger(slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
	require.NoError(t, err)
	h.session = s
	return h
}

func (h *harness) open() error {
	return h.session.Open(context.Background(), "/dev/ttyFAKE0",
		B9600, OneStopBit, CS8, ParityNone, FlowControlNone)
}

func requireNoStreams(t *testing.T, s *Session) {
	t.Helper()
	require.Nil(t, s.InputStream())
	require.Nil(t, s.OutputStream())
}

func TestOpen_AccessibleSkipsEscalation(t *testing.T) {
	h := newHarness(t, true)

	require.NoError(t, h.open())
	require.Equal(t, 0, h.esc.calls)
	require.Equal(t, StateOpen, h.session.State())
	require.Equal(t, "/dev/ttyFAKE0", h.session.Device())
	require.NoError(t, h.session.Err())

	require.Len(t, h.conf.calls, 1)
	require.Equal(t, openCall{"/dev/ttyFAKE0", 9600, 1, 8, 0, 0}, h.conf.calls[0])

	in, out := h.session.InputStream(), h.session.OutputStream()
	require.NotNil(t, in)
	require.NotNil(t, out)
	require.Same(t, in.h, out.h)
}

func TestOpen_PassesNativeCodes(t *testing.T) {
	h := newHarness(t, true)

	err := h.session.Open(context.Background(), "/dev/ttyFAKE0",
		B4000000, TwoStopBits, CS5, ParityOdd, FlowControlSoftware)
	require.NoError(t, err)
	require.Equal(t, openCall{"/dev/ttyFAKE0", 4000000, 2, 5, 1, 2}, h.conf.calls[0])
	require.Equal(t, Config{B4000000, CS5, TwoStopBits, ParityOdd, FlowControlSoftware}, h.session.Config())
}

func TestOpen_RepairsPermissions(t *testing.T) {
	h := newHarness(t, false)
	h.esc.onRun = func() { h.access.granted = true }

	require.NoError(t, h.open())
	require.Equal(t, 1, h.esc.calls)
	require.Equal(t, []string{"chmod 666 /dev/ttyFAKE0\nexit\n"}, h.esc.scripts)
	require.Equal(t, 2, h.access.checks)
	require.NotNil(t, h.session.InputStream())
	require.Contains(t, h.logs.String(), "device permissions repaired")
}

func TestOpen_EscalationNonZeroExit(t *testing.T) {
	h := newHarness(t, false)
	h.esc.code = 1

	err := h.open()
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.NotErrorIs(t, err, ErrEscalationFailed)
	require.Equal(t, 1, h.esc.calls)
	require.Empty(t, h.conf.calls)
	require.Equal(t, StateUnopened, h.session.State())
	requireNoStreams(t, h.session)

	require.ErrorIs(t, h.session.Err(), ErrPermissionDenied)
	require.Contains(t, h.logs.String(), "escalation helper failed")
}

func TestOpen_EscalationCannotRun(t *testing.T) {
	h := newHarness(t, false)
	h.esc.err = errors.New("exec: \"su\": executable file not found in $PATH")

	err := h.open()
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.ErrorIs(t, err, ErrEscalationFailed)
	require.Empty(t, h.conf.calls)
	requireNoStreams(t, h.session)
	require.Contains(t, h.logs.String(), "escalation helper could not run")
}

func TestOpen_StillDeniedAfterRepair(t *testing.T) {
	h := newHarness(t, false)

	err := h.open()
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.Equal(t, 1, h.esc.calls)
	require.Equal(t, 2, h.access.checks)
	require.Empty(t, h.conf.calls)
	requireNoStreams(t, h.session)
}

func TestOpen_WithoutEscalation(t *testing.T) {
	h := newHarness(t, false)
	s, err := NewSession(
		WithConfigurator(h.conf),
		WithAccessChecker(h.access.check),
		WithoutEscalation(),
	)
	require.NoError(t, err)

	err = s.Open(context.Background(), "/dev/ttyFAKE0", B9600, OneStopBit, CS8, ParityNone, FlowControlNone)
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.Empty(t, h.conf.calls)
}

func TestOpen_DeviceNotFoundSkipsEscalation(t *testing.T) {
	h := newHarness(t, false)
	missing := func(path string) error { return ErrDeviceNotFound }
	s, err := NewSession(WithConfigurator(h.conf), WithEscalator(h.esc), WithAccessChecker(missing))
	require.NoError(t, err)

	err = s.Open(context.Background(), "/dev/ttyGONE", B9600, OneStopBit, CS8, ParityNone, FlowControlNone)
	require.ErrorIs(t, err, ErrDeviceNotFound)
	require.Equal(t, 0, h.esc.calls)
}

func TestOpen_NativeFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"nil handle", nil},
		{"nil handle with error", errors.New("device busy")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			h.conf.handle = nil
			h.conf.err = tt.err

			err := h.open()
			require.ErrorIs(t, err, ErrNativeOpenFailed)
			require.NotErrorIs(t, err, ErrPermissionDenied)
			require.Equal(t, 0, h.esc.calls)
			require.Equal(t, StateUnopened, h.session.State())
			requireNoStreams(t, h.session)

			// A failed session stays closable
			require.NoError(t, h.session.Close())
		})
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	h := newHarness(t, true)

	err := h.session.Open(context.Background(), "/dev/ttyFAKE0",
		BaudRate(12345), OneStopBit, CS8, ParityNone, FlowControlNone)
	require.ErrorIs(t, err, ErrInvalidBaudRate)
	require.Empty(t, h.conf.calls)
	require.Equal(t, 0, h.access.checks)
}

func TestOpen_Twice(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.open())
	in := h.session.InputStream()

	err := h.open()
	require.ErrorIs(t, err, ErrAlreadyOpen)
	require.Len(t, h.conf.calls, 1)
	require.Same(t, in, h.session.InputStream())
	require.Equal(t, 0, h.handle.closes)
}

func TestSession_WriteThenRead(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.open())

	n, err := h.session.OutputStream().Write([]byte("AT\r\n"))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	buf := make([]byte, 4)
	_, err = io.ReadFull(h.session.InputStream(), buf)
	require.NoError(t, err)
	require.Equal(t, "AT\r\n", string(buf))
}

func TestClose_InvalidatesSession(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.open())
	in, out := h.session.InputStream(), h.session.OutputStream()

	require.NoError(t, h.session.Close())
	require.Equal(t, StateClosed, h.session.State())
	requireNoStreams(t, h.session)
	require.Equal(t, 1, h.handle.closes)

	// Streams held across Close are dead
	_, err := in.Read(make([]byte, 1))
	require.ErrorIs(t, err, ErrPortClosed)
	_, err = out.Write([]byte("x"))
	require.ErrorIs(t, err, ErrPortClosed)

	// Idempotent
	require.NoError(t, h.session.Close())
	require.Equal(t, 1, h.handle.closes)

	// Closed is terminal
	require.ErrorIs(t, h.open(), ErrSessionClosed)
	require.Len(t, h.conf.calls, 1)
}

func TestClose_NeverOpened(t *testing.T) {
	h := newHarness(t, true)

	require.NoError(t, h.session.Close())
	require.NoError(t, h.session.Close())
	require.Equal(t, StateClosed, h.session.State())
	requireNoStreams(t, h.session)
	require.Equal(t, 0, h.handle.closes)
}

func TestClose_ReportsReleaseFailureOnce(t *testing.T) {
	h := newHarness(t, true)
	h.handle.closeErr = errors.New("EIO")
	require.NoError(t, h.open())

	require.Error(t, h.session.Close())
	require.NoError(t, h.session.Close())
	require.Contains(t, h.logs.String(), "closing serial device failed")
}

func TestStreamContextCancelled(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.open())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.session.InputStream().ReadContext(ctx, make([]byte, 1))
	require.ErrorIs(t, err, context.Canceled)
	_, err = h.session.OutputStream().WriteContext(ctx, []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "unopened", StateUnopened.String())
	require.Equal(t, "open", StateOpen.String())
	require.Equal(t, "closed", StateClosed.String())
}
