package serial

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// sharedHandle is the handle both streams of a session borrow. Once closed,
// every stream operation fails with ErrPortClosed.
type sharedHandle struct {
	rw        Handle
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func (h *sharedHandle) close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		h.closeErr = h.rw.Close()
	})
	return h.closeErr
}

// mapErr reports ErrPortClosed for failures caused by a concurrent close.
func (h *sharedHandle) mapErr(err error) error {
	if err != nil && h.closed.Load() {
		return ErrPortClosed
	}
	return err
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// InputStream is the readable side of an open session.
type InputStream struct {
	h *sharedHandle
}

// OutputStream is the writable side of an open session.
type OutputStream struct {
	h *sharedHandle
}

// Read reads data from the serial port
func (in *InputStream) Read(buf []byte) (int, error) {
	if in.h.closed.Load() {
		return 0, ErrPortClosed
	}
	n, err := in.h.rw.Read(buf)
	return n, in.h.mapErr(err)
}

// Write writes data to the serial port
func (out *OutputStream) Write(data []byte) (int, error) {
	if out.h.closed.Load() {
		return 0, ErrPortClosed
	}
	n, err := out.h.rw.Write(data)
	return n, out.h.mapErr(err)
}

// ReadContext reads data with context cancellation support. Handles with
// deadline support are interrupted in place; others fall back to a
// goroutine whose read may complete after ReadContext has returned.
func (in *InputStream) ReadContext(ctx context.Context, buf []byte) (int, error) {
	if in.h.closed.Load() {
		return 0, ErrPortClosed
	}

	// Check if context is already cancelled
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if d, ok := in.h.rw.(readDeadliner); ok && d.SetReadDeadline(time.Time{}) == nil {
		return withDeadline(ctx, d.SetReadDeadline, func() (int, error) {
			return in.Read(buf)
		})
	}

	type readResult struct {
		n   int
		err error
	}
	resultCh := make(chan readResult, 1)

	go func() {
		n, err := in.Read(buf)
		resultCh <- readResult{n: n, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.n, result.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WriteContext writes data with context cancellation support
func (out *OutputStream) WriteContext(ctx context.Context, data []byte) (int, error) {
	if out.h.closed.Load() {
		return 0, ErrPortClosed
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if d, ok := out.h.rw.(writeDeadliner); ok && d.SetWriteDeadline(time.Time{}) == nil {
		return withDeadline(ctx, d.SetWriteDeadline, func() (int, error) {
			return out.Write(data)
		})
	}

	type writeResult struct {
		n   int
		err error
	}
	resultCh := make(chan writeResult, 1)

	go func() {
		n, err := out.Write(data)
		resultCh <- writeResult{n: n, err: err}
	}()

	select {
	case result := <-resultCh:
		return result.n, result.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// withDeadline runs op and moves the deadline into the past when ctx is
// cancelled, so a blocked op returns early. The caller has already checked
// that the handle accepts deadlines.
func withDeadline(ctx context.Context, setDeadline func(time.Time) error, op func() (int, error)) (int, error) {
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		setDeadline(time.Unix(1, 0))
		close(fired)
	})

	n, err := op()
	if !stop() {
		<-fired
		setDeadline(time.Time{})
		if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
			return n, ctx.Err()
		}
	}
	return n, err
}
