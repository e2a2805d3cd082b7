package serial

import (
	"fmt"

	bugst "go.bug.st/serial"
)

// BugstConfigurator opens devices through go.bug.st/serial. The library has
// no flow control setting, so only FlowControlNone is accepted.
type BugstConfigurator struct{}

var _ Configurator = BugstConfigurator{}

// ConfigureAndOpen implements Configurator.
func (BugstConfigurator) ConfigureAndOpen(path string, baud, stopBits, dataBits, parity, flowControl int) (Handle, error) {
	mode, err := bugstMode(baud, stopBits, dataBits, parity, flowControl)
	if err != nil {
		return nil, err
	}

	port, err := bugst.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return port, nil
}

func bugstMode(baud, stopBits, dataBits, parity, flowControl int) (*bugst.Mode, error) {
	if baud == 0 {
		return nil, fmt.Errorf("%w: bugst cannot hang up with B0", ErrUnsupported)
	}
	if !BaudRate(baud).Valid() {
		return nil, ErrInvalidBaudRate
	}
	if !DataBits(dataBits).Valid() {
		return nil, fmt.Errorf("%w: data bits %d", ErrInvalidConfig, dataBits)
	}
	if FlowControl(flowControl) != FlowControlNone {
		return nil, fmt.Errorf("%w: bugst flow control %v", ErrUnsupported, FlowControl(flowControl))
	}

	mode := &bugst.Mode{
		BaudRate: baud,
		DataBits: dataBits,
	}

	switch StopBits(stopBits) {
	case OneStopBit:
		mode.StopBits = bugst.OneStopBit
	case TwoStopBits:
		mode.StopBits = bugst.TwoStopBits
	default:
		return nil, fmt.Errorf("%w: stop bits %d", ErrInvalidConfig, stopBits)
	}

	switch Parity(parity) {
	case ParityNone:
		mode.Parity = bugst.NoParity
	case ParityOdd:
		mode.Parity = bugst.OddParity
	case ParityEven:
		mode.Parity = bugst.EvenParity
	default:
		return nil, fmt.Errorf("%w: parity %d", ErrInvalidConfig, parity)
	}

	return mode, nil
}
