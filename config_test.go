package serial

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != B115200 {
		t.Errorf("Expected BaudRate 115200, got %d", config.BaudRate)
	}

	if config.DataBits != CS8 {
		t.Errorf("Expected DataBits 8, got %d", config.DataBits)
	}

	if config.StopBits != OneStopBit {
		t.Errorf("Expected StopBits 1, got %d", config.StopBits)
	}

	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}

	if config.FlowControl != FlowControlNone {
		t.Errorf("Expected FlowControl None, got %v", config.FlowControl)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	if got := config.String(); got != "115200 8N1 none" {
		t.Errorf("String() = %q", got)
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()

	// Test WithBaudRate
	err := WithBaudRate(9600)(&config)
	if err != nil {
		t.Errorf("WithBaudRate failed: %v", err)
	}
	if config.BaudRate != B9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}

	// Test WithDataBits
	err = WithDataBits(7)(&config)
	if err != nil {
		t.Errorf("WithDataBits failed: %v", err)
	}
	if config.DataBits != CS7 {
		t.Errorf("Expected DataBits 7, got %d", config.DataBits)
	}

	// Test WithStopBits
	err = WithStopBits(2)(&config)
	if err != nil {
		t.Errorf("WithStopBits failed: %v", err)
	}
	if config.StopBits != TwoStopBits {
		t.Errorf("Expected StopBits 2, got %d", config.StopBits)
	}

	// Test WithParity
	err = WithParity(ParityEven)(&config)
	if err != nil {
		t.Errorf("WithParity failed: %v", err)
	}
	if config.Parity != ParityEven {
		t.Errorf("Expected Parity Even, got %v", config.Parity)
	}

	// Test WithFlowControl
	err = WithFlowControl(FlowControlHardware)(&config)
	if err != nil {
		t.Errorf("WithFlowControl failed: %v", err)
	}
	if config.FlowControl != FlowControlHardware {
		t.Errorf("Expected FlowControl hardware, got %v", config.FlowControl)
	}

	if got := config.String(); got != "9600 7E2 hardware" {
		t.Errorf("String() = %q", got)
	}
}

func TestInvalidBaudRate(t *testing.T) {
	config := DefaultConfig()
	err := WithBaudRate(123456)(&config)
	if err == nil {
		t.Error("Expected error for invalid baud rate")
	}
	if err != ErrInvalidBaudRate {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}

func TestInvalidDataBits(t *testing.T) {
	config := DefaultConfig()
	err := WithDataBits(9)(&config)
	if err == nil {
		t.Error("Expected error for invalid data bits")
	}
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestInvalidStopBits(t *testing.T) {
	config := DefaultConfig()
	err := WithStopBits(3)(&config)
	if err == nil {
		t.Error("Expected error for invalid stop bits")
	}
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsForeignValues(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"baud", func(c *Config) { c.BaudRate = 1234 }, ErrInvalidBaudRate},
		{"data bits", func(c *Config) { c.DataBits = 4 }, ErrInvalidConfig},
		{"stop bits", func(c *Config) { c.StopBits = 0 }, ErrInvalidConfig},
		{"parity", func(c *Config) { c.Parity = 7 }, ErrInvalidConfig},
		{"flow control", func(c *Config) { c.FlowControl = 9 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			if err := config.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
