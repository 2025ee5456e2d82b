//go:build linux

package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

const (
	// DefaultBusPath is the i2c-dev node the LED driver hangs off.
	DefaultBusPath = "/dev/i2c-1"

	i2cRdwrIOCTL = 0x0707 // I2C_RDWR ioctl: combined write+read with REPEATED START
	i2cMsgRD     = 0x0001 // i2c_msg flag: read direction
	maxOpsPerSec = 500

	// maxBlockLen is the SMBus block limit honoured by most adapters.
	maxBlockLen = 32
)

// i2cMsg mirrors struct i2c_msg from linux/i2c.h
type i2cMsg struct {
	addr   uint16
	flags  uint16
	length uint16
	_pad   uint16 // struct alignment
	buf    uintptr
}

// i2cRdwr mirrors struct i2c_rdwr_ioctl_data from linux/i2c-dev.h
type i2cRdwr struct {
	msgs  uintptr
	nmsgs uint32
}

// I2CDriver talks to the LED driver through the Linux i2c-dev interface,
// issuing every transaction with I2C_RDWR.
type I2CDriver struct {
	mu      sync.Mutex
	path    string
	addr    uint16
	fd      int
	limiter *rate.Limiter
}

// NewI2C creates a new raw I2C driver for the device at addr on the bus node path.
// Empty path and zero addr select DefaultBusPath and DefaultAddr.
func NewI2C(path string, addr uint16) *I2CDriver {
	if path == "" {
		path = DefaultBusPath
	}
	if addr == 0 {
		addr = DefaultAddr
	}
	return &I2CDriver{
		path:    path,
		addr:    addr,
		fd:      -1,
		limiter: rate.NewLimiter(rate.Limit(maxOpsPerSec), 10),
	}
}

func (d *I2CDriver) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd >= 0 {
		return nil
	}
	fd, err := unix.Open(d.path, unix.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("i2c: open %s: %w", d.path, err)
	}
	d.fd = fd
	slog.Info("i2c: bus opened", "path", d.path, "addr", fmt.Sprintf("0x%02x", d.addr))
	return nil
}

func (d *I2CDriver) ReadBlockData(ctx context.Context, reg Register, n int) ([]byte, error) {
	if n <= 0 || n > maxBlockLen {
		return nil, fmt.Errorf("i2c: invalid block length %d", n)
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil, ErrNotInitialized
	}

	wbuf := [1]byte{reg}
	rbuf := make([]byte, n)
	msgs := [2]i2cMsg{
		{addr: d.addr, flags: 0, length: 1, buf: uintptr(unsafe.Pointer(&wbuf[0]))},
		{addr: d.addr, flags: i2cMsgRD, length: uint16(n), buf: uintptr(unsafe.Pointer(&rbuf[0]))},
	}
	if err := d.rdwr(msgs[:]); err != nil {
		return nil, fmt.Errorf("i2c: I2C_RDWR read 0x%02x reg=0x%02x len=%d: %w", d.addr, reg, n, err)
	}
	return rbuf, nil
}

func (d *I2CDriver) WriteBlockData(ctx context.Context, reg Register, data []byte) error {
	if len(data) == 0 || len(data) > maxBlockLen {
		return fmt.Errorf("i2c: invalid block length %d", len(data))
	}
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return ErrNotInitialized
	}
	return d.write(reg, data)
}

func (d *I2CDriver) WriteByteData(ctx context.Context, reg Register, val byte) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return ErrNotInitialized
	}
	return d.write(reg, []byte{val})
}

func (d *I2CDriver) IsReal() bool { return true }

// Close releases the I2C file descriptor.
func (d *I2CDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

// write sends [reg, data...] as a single message. Caller holds d.mu.
func (d *I2CDriver) write(reg Register, data []byte) error {
	wbuf := make([]byte, 0, len(data)+1)
	wbuf = append(wbuf, reg)
	wbuf = append(wbuf, data...)
	msgs := [1]i2cMsg{
		{addr: d.addr, flags: 0, length: uint16(len(wbuf)), buf: uintptr(unsafe.Pointer(&wbuf[0]))},
	}
	if err := d.rdwr(msgs[:]); err != nil {
		return fmt.Errorf("i2c: I2C_RDWR write 0x%02x reg=0x%02x len=%d: %w", d.addr, reg, len(data), err)
	}
	return nil
}

func (d *I2CDriver) rdwr(msgs []i2cMsg) error {
	rdwr := i2cRdwr{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), i2cRdwrIOCTL, uintptr(unsafe.Pointer(&rdwr))); errno != 0 {
		return errno
	}
	return nil
}
