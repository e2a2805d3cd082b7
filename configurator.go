package serial

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Handle is an open, configured device connection.
type Handle interface {
	io.ReadWriteCloser
}

// Configurator applies line settings to a device and opens it. A nil Handle
// means the device could not be opened; the error, if any, is diagnostic.
// The integer arguments are the Code() values of the vocabulary types.
type Configurator interface {
	ConfigureAndOpen(path string, baud, stopBits, dataBits, parity, flowControl int) (Handle, error)
}

// ConfiguratorFunc adapts a function to the Configurator interface.
type ConfiguratorFunc func(path string, baud, stopBits, dataBits, parity, flowControl int) (Handle, error)

func (f ConfiguratorFunc) ConfigureAndOpen(path string, baud, stopBits, dataBits, parity, flowControl int) (Handle, error) {
	return f(path, baud, stopBits, dataBits, parity, flowControl)
}

var (
	nativeOnce sync.Once
	native     Configurator
	nativeErr  error
)

// Init binds the process-wide native configurator. It runs once; later calls
// return the result of the first. NewSession calls it when no configurator
// is supplied, but long-running programs may call it at startup to surface
// platform errors early.
func Init() error {
	nativeOnce.Do(func() {
		native, nativeErr = newTermiosConfigurator()
	})
	return nativeErr
}

// NativeConfigurator returns the configurator bound by Init.
func NativeConfigurator() (Configurator, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return native, nil
}

// ConfiguratorByName selects a backend: "termios" (default), "bugst" or "tarm".
func ConfiguratorByName(name string) (Configurator, error) {
	switch strings.ToLower(name) {
	case "", "termios", "native":
		return NativeConfigurator()
	case "bugst":
		return BugstConfigurator{}, nil
	case "tarm":
		return TarmConfigurator{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q (valid: termios, bugst, tarm)", ErrUnsupported, name)
	}
}
