// Package serial opens and configures character-device serial connections on
// Linux and exposes them as a pair of byte streams owned by a Session.
//
// Opening a device first checks that the process can read and write it. When
// it cannot, the session runs a privileged helper (sudo by default, su on
// Android-style systems) that chmods the device to 0666, then checks again.
// Only then are the line settings handed to the configurator.
//
// # Basic Usage
//
//	if err := serial.Init(); err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := serial.NewSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	err = s.Open(ctx, "/dev/ttyUSB0",
//	    serial.B9600, serial.OneStopBit, serial.CS8,
//	    serial.ParityNone, serial.FlowControlNone)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s.OutputStream().Write([]byte("AT\r\n"))
//	buf := make([]byte, 64)
//	n, err := s.InputStream().Read(buf)
//
// # Configuration Options
//
// OpenPort applies functional options over DefaultConfig (115200 8N1):
//
//	s, err := serial.OpenPort(ctx, "/dev/ttyUSB0",
//	    serial.WithBaudRate(57600),
//	    serial.WithParity(serial.ParityEven),
//	    serial.WithFlowControl(serial.FlowControlHardware),
//	)
//
// # Failures
//
// Open reports failure as an error and leaves the session without a handle.
// Use errors.Is to tell the causes apart:
//
//	switch {
//	case errors.Is(err, serial.ErrPermissionDenied):
//	    // fix permissions out of band; ErrEscalationFailed is also set
//	    // when the helper could not be started
//	case errors.Is(err, serial.ErrNativeOpenFailed):
//	    // device busy, gone, or settings rejected by the driver
//	}
//
// # Backends
//
// The default configurator drives termios directly. BugstConfigurator and
// TarmConfigurator wrap go.bug.st/serial and github.com/tarm/serial and reject
// settings those libraries cannot express.
package serial
