package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateUnopened State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session owns at most one open device handle and the two streams bound to
// it. A session supports a single successful Open; after Close it is spent.
//
// Callers serialize Open and Close. The accessors may be called from any
// goroutine.
type Session struct {
	mu     sync.RWMutex
	state  State
	device string
	config Config
	handle *sharedHandle
	in     *InputStream
	out    *OutputStream
	err    error

	configurator Configurator
	escalator    Escalator
	access       AccessChecker
	logger       *slog.Logger
}

// SessionOption configures a Session at construction.
type SessionOption func(*Session)

// WithConfigurator replaces the native configurator.
func WithConfigurator(c Configurator) SessionOption {
	return func(s *Session) { s.configurator = c }
}

// WithEscalator replaces the privilege escalation helper.
func WithEscalator(e Escalator) SessionOption {
	return func(s *Session) { s.escalator = e }
}

// WithoutEscalation makes a permission miss fail immediately.
func WithoutEscalation() SessionOption {
	return func(s *Session) { s.escalator = nil }
}

// WithAccessChecker replaces the read/write permission check.
func WithAccessChecker(check AccessChecker) SessionOption {
	return func(s *Session) { s.access = check }
}

// WithLogger sets the logger for open/close diagnostics. Sessions are silent
// by default.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession returns an unopened session. Without WithConfigurator it binds
// the native configurator, running Init if needed.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		escalator: NewCommandEscalator(),
		access:    CheckAccess,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.configurator == nil {
		c, err := NativeConfigurator()
		if err != nil {
			return nil, err
		}
		s.configurator = c
	}
	if s.access == nil {
		s.access = CheckAccess
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// OpenPort opens device with the native configurator and the given line
// options applied over DefaultConfig.
func OpenPort(ctx context.Context, device string, opts ...Option) (*Session, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	s, err := NewSession()
	if err != nil {
		return nil, err
	}
	if err := s.OpenConfig(ctx, device, config); err != nil {
		return nil, err
	}
	return s, nil
}

// Open checks and, if needed, repairs read/write access to device, then
// hands the native codes of the five settings to the configurator. On
// success the session owns the handle and its streams.
//
// Every failure leaves the session without a handle. The returned error
// wraps ErrPermissionDenied (plus ErrEscalationFailed when the helper could
// not run), ErrDeviceNotFound, ErrNativeOpenFailed or ErrInvalidConfig, and
// is also kept for Err.
//
// ctx bounds the escalation helper round trip only; Open has no timeout of
// its own.
func (s *Session) Open(ctx context.Context, device string, baud BaudRate, stop StopBits, data DataBits, parity Parity, flow FlowControl) error {
	return s.OpenConfig(ctx, device, Config{
		BaudRate:    baud,
		StopBits:    stop,
		DataBits:    data,
		Parity:      parity,
		FlowControl: flow,
	})
}

// OpenConfig is Open with the settings carried in a Config.
func (s *Session) OpenConfig(ctx context.Context, device string, config Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateOpen:
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, s.device)
	case StateClosed:
		return ErrSessionClosed
	}

	log := s.logger.With("device", device)

	if err := config.Validate(); err != nil {
		return s.fail(log, "invalid configuration", err)
	}

	if err := s.ensureAccess(ctx, device, log); err != nil {
		return s.fail(log, "device not accessible", err)
	}

	h, err := s.configurator.ConfigureAndOpen(device,
		config.BaudRate.Code(),
		config.StopBits.Code(),
		config.DataBits.Code(),
		config.Parity.Code(),
		config.FlowControl.Code())
	if h == nil {
		if err != nil {
			err = fmt.Errorf("%w: %s: %v", ErrNativeOpenFailed, device, err)
		} else {
			err = fmt.Errorf("%w: %s", ErrNativeOpenFailed, device)
		}
		return s.fail(log, "native open returned no handle", err)
	}
	if err != nil {
		log.Warn("native open reported an error with a usable handle", "error", err)
	}

	sh := &sharedHandle{rw: h}
	s.handle = sh
	s.in = &InputStream{h: sh}
	s.out = &OutputStream{h: sh}
	s.state = StateOpen
	s.device = device
	s.config = config
	s.err = nil

	log.Info("serial session opened", "config", config.String())
	return nil
}

// ensureAccess verifies read/write access and runs one repair attempt
// through the escalator when it is missing.
func (s *Session) ensureAccess(ctx context.Context, device string, log *slog.Logger) error {
	err := s.access(device)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDeviceNotFound) {
		return err
	}

	log.Warn("missing read/write access, trying to chmod", "error", err)

	if s.escalator == nil {
		return fmt.Errorf("%w: %s: escalation disabled", ErrPermissionDenied, device)
	}

	script, err := EscalationScript(device)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, device, err)
	}

	code, err := s.escalator.Run(ctx, script)
	if err != nil {
		if !errors.Is(err, ErrEscalationFailed) {
			err = fmt.Errorf("%w: %v", ErrEscalationFailed, err)
		}
		log.Error("escalation helper could not run", "error", err)
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, device, err)
	}
	if code != 0 {
		log.Error("escalation helper failed", "exit_code", code)
		return fmt.Errorf("%w: %s: helper exit status %d", ErrPermissionDenied, device, code)
	}

	if err := s.access(device); err != nil {
		log.Error("read/write access still missing after chmod", "error", err)
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceNotFound) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, device, err)
	}

	log.Info("device permissions repaired")
	return nil
}

func (s *Session) fail(log *slog.Logger, msg string, err error) error {
	log.Error(msg, "error", err)
	s.err = err
	return err
}

// InputStream returns the readable stream of the open handle, or nil when
// the session is not open.
func (s *Session) InputStream() *InputStream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.in
}

// OutputStream returns the writable stream of the open handle, or nil when
// the session is not open.
func (s *Session) OutputStream() *OutputStream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.out
}

// Close releases the handle and invalidates both streams. It is safe to call
// on a session that never opened and to call more than once; only the first
// release can report an error.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = StateClosed
	if prev != StateOpen {
		return nil
	}

	h := s.handle
	s.handle, s.in, s.out = nil, nil, nil

	if err := h.close(); err != nil {
		s.logger.Warn("closing serial device failed", "device", s.device, "error", err)
		return fmt.Errorf("close %s: %w", s.device, err)
	}
	s.logger.Info("serial session closed", "device", s.device)
	return nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the error recorded by the last failed Open, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Device returns the path of the open device.
func (s *Session) Device() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.device
}

// Config returns the line settings applied by the successful Open.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}
