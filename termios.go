package serial

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// TermiosConfigurator opens devices with open(2) and configures them through
// the TCGETS/TCSETS ioctls. The returned handle is an *os.File whose
// descriptor stays non-blocking, so reads park on the runtime poller and
// Close wakes them.
type TermiosConfigurator struct{}

var _ Configurator = TermiosConfigurator{}

func newTermiosConfigurator() (Configurator, error) {
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("termios configurator: unsupported platform %s", runtime.GOOS)
	}
	return TermiosConfigurator{}, nil
}

// lineSettings holds the termios bits derived from the native codes
type lineSettings struct {
	speed   uint32
	size    uint32
	cflag   uint32
	iflag   uint32
	rtscts  bool
	xonxoff bool
}

// ConfigureAndOpen implements Configurator.
func (TermiosConfigurator) ConfigureAndOpen(path string, baud, stopBits, dataBits, parity, flowControl int) (Handle, error) {
	ls, err := newLineSettings(baud, stopBits, dataBits, parity, flowControl)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	if err := configurePort(fd, ls); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return os.NewFile(uintptr(fd), path), nil
}

func newLineSettings(baud, stopBits, dataBits, parity, flowControl int) (lineSettings, error) {
	var ls lineSettings

	speed, err := getBaudRate(baud)
	if err != nil {
		return ls, err
	}
	ls.speed = speed

	switch dataBits {
	case 5:
		ls.size = unix.CS5
	case 6:
		ls.size = unix.CS6
	case 7:
		ls.size = unix.CS7
	case 8:
		ls.size = unix.CS8
	default:
		return ls, fmt.Errorf("%w: data bits %d", ErrInvalidConfig, dataBits)
	}

	switch stopBits {
	case 1:
	case 2:
		ls.cflag |= unix.CSTOPB
	default:
		return ls, fmt.Errorf("%w: stop bits %d", ErrInvalidConfig, stopBits)
	}

	switch Parity(parity) {
	case ParityNone:
	case ParityOdd:
		ls.cflag |= unix.PARENB | unix.PARODD
		ls.iflag |= unix.INPCK
	case ParityEven:
		ls.cflag |= unix.PARENB
		ls.iflag |= unix.INPCK
	default:
		return ls, fmt.Errorf("%w: parity %d", ErrInvalidConfig, parity)
	}

	switch FlowControl(flowControl) {
	case FlowControlNone:
	case FlowControlHardware:
		ls.cflag |= unix.CRTSCTS
		ls.rtscts = true
	case FlowControlSoftware:
		ls.iflag |= unix.IXON | unix.IXOFF
		ls.xonxoff = true
	default:
		return ls, fmt.Errorf("%w: flow control %d", ErrInvalidConfig, flowControl)
	}

	return ls, nil
}

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 0:
		return unix.B0, nil
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// configurePort puts the line into raw mode and applies the settings
func configurePort(fd int, ls lineSettings) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	// Raw mode: no input, output or line processing
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY | unix.INPCK
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.PARODD | unix.CSTOPB | unix.CRTSCTS | unix.CBAUD
	termios.Cflag |= unix.CREAD | unix.CLOCAL | ls.size | ls.cflag | ls.speed
	termios.Iflag |= ls.iflag
	termios.Ispeed = ls.speed
	termios.Ospeed = ls.speed

	// A read returns as soon as one byte is available
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}

	// For RTS/CTS flow control, ensure RTS is asserted to signal readiness.
	// Pseudo terminals and some adapters reject TIOCMBIS; that is not fatal.
	if ls.rtscts {
		_ = unix.IoctlSetInt(fd, unix.TIOCMBIS, unix.TIOCM_RTS)
	}

	return nil
}
