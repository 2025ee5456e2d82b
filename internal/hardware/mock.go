package hardware

import (
	"context"
	"sync"
	"time"
)

const (
	mockRegCount      = 256
	mockAutoIncrement = 0x80 // block transfer flag, stripped before addressing
	mockSResetReg     = 0x00
)

// OpKind classifies a recorded mock transfer.
type OpKind int

const (
	OpWriteBlock OpKind = iota
	OpWriteByte
	OpReadBlock
)

func (k OpKind) String() string {
	switch k {
	case OpWriteBlock:
		return "write-block"
	case OpWriteByte:
		return "write-byte"
	case OpReadBlock:
		return "read-block"
	default:
		return "unknown"
	}
}

// Op is one transfer observed by the mock, in bus order.
type Op struct {
	Kind OpKind
	Reg  Register // as sent on the wire, including any auto-increment flag
	Data []byte   // bytes written, or bytes returned for reads
	Err  bool     // the transfer was failed by configuration
}

// Mock is a thread-safe in-memory AN30259A for testing and development.
// Writing 1 to register 0x00 clears the register file like a soft reset.
type Mock struct {
	mu            sync.Mutex
	regs          [mockRegCount]byte
	ops           []Op
	failWrite     bool
	failByteWrite bool
	failRead      bool
	delay         time.Duration
	closed        bool
}

// NewMock creates a new mock driver with a zeroed register file.
func NewMock() *Mock {
	return &Mock{delay: time.Millisecond}
}

// SetFailWrite configures the mock to fail all write operations.
func (m *Mock) SetFailWrite(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = fail
}

// SetFailByteWrite configures the mock to fail single-byte writes only,
// letting block writes through.
func (m *Mock) SetFailByteWrite(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failByteWrite = fail
}

// SetFailRead configures the mock to fail all read operations.
func (m *Mock) SetFailRead(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = fail
}

// SetDelay sets the simulated per-transfer bus time.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

func (m *Mock) Init(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = false
	return nil
}

func (m *Mock) ReadBlockData(ctx context.Context, reg Register, n int) ([]byte, error) {
	m.simulate()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		m.ops = append(m.ops, Op{Kind: OpReadBlock, Reg: reg, Err: true})
		return nil, ErrHardware("mock: read failure configured")
	}
	base := int(reg &^ mockAutoIncrement)
	if n <= 0 || base+n > mockRegCount {
		return nil, ErrHardware("mock: read out of range")
	}
	out := make([]byte, n)
	copy(out, m.regs[base:base+n])
	m.ops = append(m.ops, Op{Kind: OpReadBlock, Reg: reg, Data: append([]byte(nil), out...)})
	return out, nil
}

func (m *Mock) WriteBlockData(ctx context.Context, reg Register, data []byte) error {
	m.simulate()
	m.mu.Lock()
	defer m.mu.Unlock()
	op := Op{Kind: OpWriteBlock, Reg: reg, Data: append([]byte(nil), data...)}
	if m.failWrite {
		op.Err = true
		m.ops = append(m.ops, op)
		return ErrHardware("mock: write failure configured")
	}
	base := int(reg &^ mockAutoIncrement)
	if len(data) == 0 || base+len(data) > mockRegCount {
		return ErrHardware("mock: write out of range")
	}
	m.ops = append(m.ops, op)
	copy(m.regs[base:], data)
	return nil
}

func (m *Mock) WriteByteData(ctx context.Context, reg Register, val byte) error {
	m.simulate()
	m.mu.Lock()
	defer m.mu.Unlock()
	op := Op{Kind: OpWriteByte, Reg: reg, Data: []byte{val}}
	if m.failWrite || m.failByteWrite {
		op.Err = true
		m.ops = append(m.ops, op)
		return ErrHardware("mock: write failure configured")
	}
	m.ops = append(m.ops, op)
	if reg == mockSResetReg && val&0x01 != 0 {
		m.regs = [mockRegCount]byte{}
		return nil
	}
	m.regs[reg] = val
	return nil
}

func (m *Mock) IsReal() bool {
	return false
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called since the last Init.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetReg returns a register value for testing purposes.
func (m *Mock) GetReg(reg Register) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[reg]
}

// SetReg seeds a register value, bypassing the op log.
func (m *Mock) SetReg(reg Register, val byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[reg] = val
}

// Ops returns a copy of every transfer seen so far.
func (m *Mock) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.ops))
	copy(out, m.ops)
	return out
}

// ResetOps clears the transfer log.
func (m *Mock) ResetOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}

func (m *Mock) simulate() {
	m.mu.Lock()
	d := m.delay
	m.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
}
