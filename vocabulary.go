package serial

import (
	"strconv"
	"strings"
)

// BaudRate is a line speed. The native code is the rate in bits per second;
// B0 hangs up the line.
type BaudRate int

const (
	B0       BaudRate = 0
	B50      BaudRate = 50
	B75      BaudRate = 75
	B110     BaudRate = 110
	B134     BaudRate = 134
	B150     BaudRate = 150
	B200     BaudRate = 200
	B300     BaudRate = 300
	B600     BaudRate = 600
	B1200    BaudRate = 1200
	B1800    BaudRate = 1800
	B2400    BaudRate = 2400
	B4800    BaudRate = 4800
	B9600    BaudRate = 9600
	B19200   BaudRate = 19200
	B38400   BaudRate = 38400
	B57600   BaudRate = 57600
	B115200  BaudRate = 115200
	B230400  BaudRate = 230400
	B460800  BaudRate = 460800
	B500000  BaudRate = 500000
	B576000  BaudRate = 576000
	B921600  BaudRate = 921600
	B1000000 BaudRate = 1000000
	B1152000 BaudRate = 1152000
	B1500000 BaudRate = 1500000
	B2000000 BaudRate = 2000000
	B2500000 BaudRate = 2500000
	B3000000 BaudRate = 3000000
	B3500000 BaudRate = 3500000
	B4000000 BaudRate = 4000000
)

var baudRates = []BaudRate{
	B0, B50, B75, B110, B134, B150, B200, B300, B600, B1200, B1800, B2400,
	B4800, B9600, B19200, B38400, B57600, B115200, B230400, B460800,
	B500000, B576000, B921600, B1000000, B1152000, B1500000, B2000000,
	B2500000, B3000000, B3500000, B4000000,
}

// StopBits is the number of stop bits framing each character.
type StopBits int

const (
	OneStopBit  StopBits = 1
	TwoStopBits StopBits = 2
)

// DataBits is the character size.
type DataBits int

const (
	CS5 DataBits = 5
	CS6 DataBits = 6
	CS7 DataBits = 7
	CS8 DataBits = 8
)

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// FlowControl represents the flow control mode
type FlowControl int

const (
	FlowControlNone     FlowControl = iota
	FlowControlHardware             // RTS/CTS signal lines
	FlowControlSoftware             // XON/XOFF in band
)

// BaudRates returns every supported baud rate in ascending order.
func BaudRates() []BaudRate {
	return append([]BaudRate(nil), baudRates...)
}

func StopBitsValues() []StopBits { return []StopBits{OneStopBit, TwoStopBits} }

func DataBitsValues() []DataBits { return []DataBits{CS5, CS6, CS7, CS8} }

func Parities() []Parity { return []Parity{ParityNone, ParityOdd, ParityEven} }

func FlowControls() []FlowControl {
	return []FlowControl{FlowControlNone, FlowControlHardware, FlowControlSoftware}
}

// Code returns the native numeric code handed to the configurator.
func (b BaudRate) Code() int { return int(b) }

func (b BaudRate) Valid() bool {
	for _, v := range baudRates {
		if v == b {
			return true
		}
	}
	return false
}

func (b BaudRate) String() string { return strconv.Itoa(int(b)) }

func (s StopBits) Code() int { return int(s) }

func (s StopBits) Valid() bool { return s == OneStopBit || s == TwoStopBits }

func (s StopBits) String() string { return strconv.Itoa(int(s)) }

func (d DataBits) Code() int { return int(d) }

func (d DataBits) Valid() bool { return d >= CS5 && d <= CS8 }

func (d DataBits) String() string { return strconv.Itoa(int(d)) }

func (p Parity) Code() int { return int(p) }

func (p Parity) Valid() bool { return p >= ParityNone && p <= ParityEven }

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return "Parity(" + strconv.Itoa(int(p)) + ")"
	}
}

// Letter returns the single letter used in "8N1" style notation.
func (p Parity) Letter() string {
	switch p {
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	default:
		return "N"
	}
}

func (f FlowControl) Code() int { return int(f) }

func (f FlowControl) Valid() bool { return f >= FlowControlNone && f <= FlowControlSoftware }

func (f FlowControl) String() string {
	switch f {
	case FlowControlNone:
		return "none"
	case FlowControlHardware:
		return "hardware"
	case FlowControlSoftware:
		return "software"
	default:
		return "FlowControl(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseBaudRate converts a rate in bits per second to a BaudRate
func ParseBaudRate(rate int) (BaudRate, error) {
	b := BaudRate(rate)
	if !b.Valid() {
		return 0, ErrInvalidBaudRate
	}
	return b, nil
}

func ParseStopBits(bits int) (StopBits, error) {
	s := StopBits(bits)
	if !s.Valid() {
		return 0, ErrInvalidConfig
	}
	return s, nil
}

func ParseDataBits(bits int) (DataBits, error) {
	d := DataBits(bits)
	if !d.Valid() {
		return 0, ErrInvalidConfig
	}
	return d, nil
}

// ParseParity accepts "none", "odd", "even" or their first letter.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "n", "":
		return ParityNone, nil
	case "odd", "o":
		return ParityOdd, nil
	case "even", "e":
		return ParityEven, nil
	default:
		return 0, ErrInvalidConfig
	}
}

// ParseFlowControl accepts "none", "hardware" (or "rtscts", "hard") and
// "software" (or "xonxoff", "soft").
func ParseFlowControl(s string) (FlowControl, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return FlowControlNone, nil
	case "hardware", "hard", "rtscts":
		return FlowControlHardware, nil
	case "software", "soft", "xonxoff":
		return FlowControlSoftware, nil
	default:
		return 0, ErrInvalidConfig
	}
}
