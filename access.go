package serial

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// AccessChecker reports whether the current process may both read and write
// path. A nil error means access is granted.
type AccessChecker func(path string) error

// CheckAccess is the default AccessChecker. It asks the kernel through
// access(2), which uses the real uid and gid of the process.
func CheckAccess(path string) error {
	err := unix.Access(path, unix.R_OK|unix.W_OK)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOENT):
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
	default:
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, path, err)
	}
}
