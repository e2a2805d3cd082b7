package serial

import "fmt"

// Config holds the line settings for a serial session
type Config struct {
	BaudRate    BaudRate
	DataBits    DataBits
	StopBits    StopBits
	Parity      Parity
	FlowControl FlowControl
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:    B115200,
		DataBits:    CS8,
		StopBits:    OneStopBit,
		Parity:      ParityNone,
		FlowControl: FlowControlNone,
	}
}

// Validate reports whether every field is a member of its vocabulary.
func (c Config) Validate() error {
	if !c.BaudRate.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidBaudRate, int(c.BaudRate))
	}
	if !c.DataBits.Valid() {
		return fmt.Errorf("%w: data bits %d", ErrInvalidConfig, int(c.DataBits))
	}
	if !c.StopBits.Valid() {
		return fmt.Errorf("%w: stop bits %d", ErrInvalidConfig, int(c.StopBits))
	}
	if !c.Parity.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Parity)
	}
	if !c.FlowControl.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.FlowControl)
	}
	return nil
}

// String renders the config as "9600 8N1 none".
func (c Config) String() string {
	return fmt.Sprintf("%d %d%s%d %s", int(c.BaudRate), int(c.DataBits), c.Parity.Letter(), int(c.StopBits), c.FlowControl)
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		b, err := ParseBaudRate(rate)
		if err != nil {
			return err
		}
		c.BaudRate = b
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		d, err := ParseDataBits(bits)
		if err != nil {
			return err
		}
		c.DataBits = d
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		s, err := ParseStopBits(bits)
		if err != nil {
			return err
		}
		c.StopBits = s
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if !parity.Valid() {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithFlowControl sets the flow control mode
func WithFlowControl(fc FlowControl) Option {
	return func(c *Config) error {
		if !fc.Valid() {
			return ErrInvalidConfig
		}
		c.FlowControl = fc
		return nil
	}
}
