package serial

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Link settings used for the boot log.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = 5 * time.Second
	// SettleDelay is how long the link is left alone after opening.
	SettleDelay = 2 * time.Second
)

// Port is the part of an open serial connection the workflow needs.
type Port interface {
	io.Reader
	io.Closer
}

// Opener opens a named serial port.
type Opener func(portName string) (Port, error)

// Open opens portName at baudRate, 8N1, with the given per-read timeout.
// A read that times out returns zero bytes and no error.
func Open(portName string, baudRate int, readTimeout time.Duration) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", portName, err)
	}
	return port, nil
}

// DefaultOpener opens ports with the boot log link settings.
func DefaultOpener(portName string) (Port, error) {
	return Open(portName, DefaultBaudRate, DefaultReadTimeout)
}
