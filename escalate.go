package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultEscalationCommand runs a non-interactive root shell. On Android the
// usual choice is []string{"su"}.
var DefaultEscalationCommand = []string{"sudo", "-n", "/bin/sh"}

// Escalator runs a shell script with elevated privileges and reports the
// helper's exit code. A non-nil error means the helper could not be run at
// all; a non-zero exit code means it ran and failed.
type Escalator interface {
	Run(ctx context.Context, script string) (int, error)
}

// CommandEscalator feeds the script to the standard input of an external
// privileged helper process.
type CommandEscalator struct {
	Command []string
}

var _ Escalator = CommandEscalator{}

// NewCommandEscalator returns an escalator for the given helper command, or
// for DefaultEscalationCommand when command is empty.
func NewCommandEscalator(command ...string) CommandEscalator {
	if len(command) == 0 {
		command = DefaultEscalationCommand
	}
	return CommandEscalator{Command: append([]string(nil), command...)}
}

// Run implements Escalator.
func (e CommandEscalator) Run(ctx context.Context, script string) (int, error) {
	if len(e.Command) == 0 {
		return -1, fmt.Errorf("%w: no helper command configured", ErrEscalationFailed)
	}

	cmd := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return -1, fmt.Errorf("%w: %v", ErrEscalationFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("%w: start %s: %v", ErrEscalationFailed, e.Command[0], err)
	}

	// The helper may exit before reading everything; Wait reports that.
	_, writeErr := io.WriteString(stdin, script)
	stdin.Close()

	err = cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("%w: %v", ErrEscalationFailed, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		if writeErr != nil {
			return -1, fmt.Errorf("%w: write script: %v", ErrEscalationFailed, writeErr)
		}
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, fmt.Errorf("%w: %v", ErrEscalationFailed, err)
	}
}

// IsEscalationAvailable checks if the helper binary is available in PATH
func IsEscalationAvailable(command []string) bool {
	if len(command) == 0 {
		return false
	}
	_, err := exec.LookPath(command[0])
	return err == nil
}

// EscalationScript returns the two-line script that makes path world
// readable and writable and then ends the helper shell.
func EscalationScript(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "chmod 666 " + shellQuote(abs) + "\nexit\n", nil
}

func shellQuote(s string) string {
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("/._-+:@", r)) {
			safe = false
			break
		}
	}
	if safe && s != "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
