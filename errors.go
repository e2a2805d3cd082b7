package serial

import "errors"

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrEscalationFailed = errors.New("privilege escalation helper failed")
	ErrNativeOpenFailed = errors.New("native configurator returned no handle")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrUnsupported      = errors.New("configuration not supported by backend")
	ErrPortClosed       = errors.New("serial port is closed")

	// Session lifecycle errors
	ErrAlreadyOpen   = errors.New("serial session already open")
	ErrSessionClosed = errors.New("serial session is closed")
)
