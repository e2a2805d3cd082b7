package serial

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEscalationScript(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/dev/ttyUSB0", "chmod 666 /dev/ttyUSB0\nexit\n"},
		{"/dev/serial/by-id/usb-FTDI_FT232R-if00-port0", "chmod 666 /dev/serial/by-id/usb-FTDI_FT232R-if00-port0\nexit\n"},
		{"/tmp/my port", "chmod 666 '/tmp/my port'\nexit\n"},
		{"/tmp/it's", "chmod 666 '/tmp/it'\\''s'\nexit\n"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := EscalationScript(tt.path)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEscalationScript_RelativePath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := EscalationScript("ttyS0")
	require.NoError(t, err)
	require.Equal(t, "chmod 666 "+shellQuote(filepath.Join(wd, "ttyS0"))+"\nexit\n", got)
}

// A plain shell stands in for the privileged helper: the test owns the file.
func TestCommandEscalator_RunsScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttyFAKE")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	script, err := EscalationScript(path)
	require.NoError(t, err)

	code, err := CommandEscalator{Command: []string{"/bin/sh"}}.Run(context.Background(), script)
	require.NoError(t, err)
	require.Equal(t, 0, code)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o666), info.Mode().Perm())
}

func TestCommandEscalator_NonZeroExit(t *testing.T) {
	script, err := EscalationScript(filepath.Join(t.TempDir(), "missing", "ttyX"))
	require.NoError(t, err)

	// chmod fails, and the trailing exit propagates its status
	code, err := CommandEscalator{Command: []string{"/bin/sh"}}.Run(context.Background(), script)
	require.NoError(t, err)
	require.NotEqual(t, 0, code)
}

func TestCommandEscalator_HelperMissing(t *testing.T) {
	code, err := CommandEscalator{Command: []string{"/nonexistent/su"}}.Run(context.Background(), "exit\n")
	require.ErrorIs(t, err, ErrEscalationFailed)
	require.Equal(t, -1, code)
}

func TestCommandEscalator_NoCommand(t *testing.T) {
	_, err := CommandEscalator{}.Run(context.Background(), "exit\n")
	require.ErrorIs(t, err, ErrEscalationFailed)
}

func TestCommandEscalator_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The helper hangs; only the context gets us out
	_, err := CommandEscalator{Command: []string{"/bin/sh", "-c", "sleep 10"}}.Run(ctx, "")
	require.ErrorIs(t, err, ErrEscalationFailed)
}

func TestNewCommandEscalator(t *testing.T) {
	require.Equal(t, DefaultEscalationCommand, NewCommandEscalator().Command)
	require.Equal(t, []string{"su"}, NewCommandEscalator("su").Command)
}

func TestIsEscalationAvailable(t *testing.T) {
	require.True(t, IsEscalationAvailable([]string{"sh"}))
	require.False(t, IsEscalationAvailable([]string{"definitely-not-a-helper-binary"}))
	require.False(t, IsEscalationAvailable(nil))
}

func TestSession_RepairsWithRealHelper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttyFAKE")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	// Access is granted only once the helper has widened the mode
	access := func(p string) error {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.Mode().Perm() != 0o666 {
			return ErrPermissionDenied
		}
		return nil
	}

	conf := &fakeConfigurator{handle: &loopbackHandle{}}
	s, err := NewSession(
		WithConfigurator(conf),
		WithAccessChecker(access),
		WithEscalator(NewCommandEscalator("/bin/sh")),
	)
	require.NoError(t, err)

	require.NoError(t, s.Open(context.Background(), path, B9600, OneStopBit, CS8, ParityNone, FlowControlNone))
	require.Len(t, conf.calls, 1)
}

func TestCheckAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	require.NoError(t, CheckAccess(path))

	require.ErrorIs(t, CheckAccess(filepath.Join(t.TempDir(), "gone")), ErrDeviceNotFound)
}
