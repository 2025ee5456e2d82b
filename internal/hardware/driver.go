// Package hardware provides the bus transport for the AN30259A LED driver.
// It defines the Driver interface used by the register commit path, a raw
// Linux I2C driver, a periph.io driver, and an in-memory mock.
package hardware

import (
	"context"
	"errors"
)

// Register is an I2C register address.
type Register = byte

// DefaultAddr is the 7-bit I2C address of the AN30259A.
const DefaultAddr uint16 = 0x30

// ErrNotInitialized is returned by drivers used before Init.
var ErrNotInitialized = errors.New("hardware: driver not initialized")

// Driver is the bus transport for a single I2C device.
// Implementations are safe for concurrent use. Drivers never retry.
type Driver interface {
	// Init opens the bus. Must be called before any other method.
	Init(ctx context.Context) error

	// ReadBlockData reads n consecutive bytes starting at reg.
	ReadBlockData(ctx context.Context, reg Register, n int) ([]byte, error)

	// WriteBlockData writes data as one transfer starting at reg.
	WriteBlockData(ctx context.Context, reg Register, data []byte) error

	// WriteByteData writes a single byte to reg.
	WriteByteData(ctx context.Context, reg Register, val byte) error

	// IsReal returns true for a real hardware driver, false for a mock.
	IsReal() bool

	// Close releases the bus.
	Close() error
}

// HardwareError is returned when a hardware operation fails.
type HardwareError struct {
	msg string
}

func (e HardwareError) Error() string { return e.msg }

// ErrHardware creates a new hardware error.
func ErrHardware(msg string) error { return HardwareError{msg: msg} }
