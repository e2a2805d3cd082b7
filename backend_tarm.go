package serial

import (
	"fmt"

	tarm "github.com/tarm/serial"
)

// TarmConfigurator opens devices through github.com/tarm/serial, which knows
// neither flow control nor the B0 hang-up rate.
type TarmConfigurator struct{}

var _ Configurator = TarmConfigurator{}

// ConfigureAndOpen implements Configurator.
func (TarmConfigurator) ConfigureAndOpen(path string, baud, stopBits, dataBits, parity, flowControl int) (Handle, error) {
	cfg, err := tarmConfig(path, baud, stopBits, dataBits, parity, flowControl)
	if err != nil {
		return nil, err
	}

	port, err := tarm.OpenPort(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return port, nil
}

func tarmConfig(path string, baud, stopBits, dataBits, parity, flowControl int) (*tarm.Config, error) {
	if baud == 0 {
		return nil, fmt.Errorf("%w: tarm cannot hang up with B0", ErrUnsupported)
	}
	if !BaudRate(baud).Valid() {
		return nil, ErrInvalidBaudRate
	}
	if !DataBits(dataBits).Valid() {
		return nil, fmt.Errorf("%w: data bits %d", ErrInvalidConfig, dataBits)
	}
	if FlowControl(flowControl) != FlowControlNone {
		return nil, fmt.Errorf("%w: tarm flow control %v", ErrUnsupported, FlowControl(flowControl))
	}

	cfg := &tarm.Config{
		Name: path,
		Baud: baud,
		Size: byte(dataBits),
	}

	switch StopBits(stopBits) {
	case OneStopBit:
		cfg.StopBits = tarm.Stop1
	case TwoStopBits:
		cfg.StopBits = tarm.Stop2
	default:
		return nil, fmt.Errorf("%w: stop bits %d", ErrInvalidConfig, stopBits)
	}

	switch Parity(parity) {
	case ParityNone:
		cfg.Parity = tarm.ParityNone
	case ParityOdd:
		cfg.Parity = tarm.ParityOdd
	case ParityEven:
		cfg.Parity = tarm.ParityEven
	default:
		return nil, fmt.Errorf("%w: parity %d", ErrInvalidConfig, parity)
	}

	return cfg, nil
}
