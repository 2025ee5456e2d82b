package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphDriver reaches the LED driver through periph.io, which works on any
// host periph supports (including USB I2C bridges), not just i2c-dev.
type PeriphDriver struct {
	mu      sync.Mutex
	busName string
	addr    uint16
	bus     i2c.Bus
	closer  i2c.BusCloser
	dev     *i2c.Dev
}

// NewPeriph returns a driver that opens busName ("" = first available bus)
// during Init.
func NewPeriph(busName string, addr uint16) *PeriphDriver {
	if addr == 0 {
		addr = DefaultAddr
	}
	return &PeriphDriver{busName: busName, addr: addr}
}

// NewPeriphOnBus wraps an already opened bus. Init becomes a no-op.
func NewPeriphOnBus(bus i2c.Bus, addr uint16) *PeriphDriver {
	if addr == 0 {
		addr = DefaultAddr
	}
	return &PeriphDriver{
		addr: addr,
		bus:  bus,
		dev:  &i2c.Dev{Bus: bus, Addr: addr},
	}
}

func (d *PeriphDriver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		return nil
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph: host init: %w", err)
	}
	bus, err := i2creg.Open(d.busName)
	if err != nil {
		return fmt.Errorf("periph: open I2C bus %q: %w", d.busName, err)
	}
	d.bus = bus
	d.closer = bus
	d.dev = &i2c.Dev{Bus: bus, Addr: d.addr}
	slog.Info("periph: bus opened", "bus", bus.String(), "addr", fmt.Sprintf("0x%02x", d.addr))
	return nil
}

func (d *PeriphDriver) ReadBlockData(ctx context.Context, reg Register, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("periph: invalid block length %d", n)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return nil, ErrNotInitialized
	}
	buf := make([]byte, n)
	if err := d.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, fmt.Errorf("periph: read reg=0x%02x len=%d: %w", reg, n, err)
	}
	return buf, nil
}

func (d *PeriphDriver) WriteBlockData(ctx context.Context, reg Register, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("periph: empty block write")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrNotInitialized
	}
	buf := append([]byte{reg}, data...)
	if err := d.dev.Tx(buf, nil); err != nil {
		return fmt.Errorf("periph: write reg=0x%02x len=%d: %w", reg, len(data), err)
	}
	return nil
}

func (d *PeriphDriver) WriteByteData(ctx context.Context, reg Register, val byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrNotInitialized
	}
	if err := d.dev.Tx([]byte{reg, val}, nil); err != nil {
		return fmt.Errorf("periph: write reg=0x%02x: %w", reg, err)
	}
	return nil
}

func (d *PeriphDriver) IsReal() bool { return true }

// Close closes the bus if this driver opened it.
func (d *PeriphDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	d.dev = nil
	return err
}
