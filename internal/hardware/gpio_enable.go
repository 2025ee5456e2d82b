//go:build linux

package hardware

import (
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// enableSettle is how long the chip needs after EN rises before it acks on I2C.
const enableSettle = 2 * time.Millisecond

// PowerEnable drives the LED driver's enable pin (BCM name, e.g. "GPIO17").
// Boards that hard-wire EN leave the pin unset and never call this.
//
// Sequence:
//  1. Initialize the periph host driver
//  2. Drive EN low to power-cycle the chip
//  3. Drive EN high and wait for the chip to come up
func PowerEnable(pin string) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("gpio: host init failed: %w", err)
	}

	p := gpioreg.ByName(pin)
	if p == nil {
		return fmt.Errorf("gpio: failed to open %s (EN)", pin)
	}

	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio: failed to drive EN low: %w", err)
	}
	time.Sleep(time.Millisecond)

	if err := p.Out(gpio.High); err != nil {
		return fmt.Errorf("gpio: failed to drive EN high: %w", err)
	}
	time.Sleep(enableSettle)

	slog.Debug("gpio: LED driver enabled", "pin", pin)
	return nil
}

// PowerDisable drives the enable pin low.
func PowerDisable(pin string) error {
	p := gpioreg.ByName(pin)
	if p == nil {
		return fmt.Errorf("gpio: failed to open %s (EN)", pin)
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio: failed to drive EN low: %w", err)
	}
	return nil
}
