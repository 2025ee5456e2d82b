package chip

import (
	"context"
	"log/slog"
	"sync"

	"github.com/micro-nova/an30259a/internal/hardware"
	"github.com/micro-nova/an30259a/internal/registers"
)

// CommitEngine serialises every transfer to the chip. A commit writes the
// configuration block first and the enable byte last, so a channel never
// lights with half-written timing.
type CommitEngine struct {
	mu  sync.Mutex
	drv hardware.Driver
}

// NewCommitEngine wraps an initialised bus driver.
func NewCommitEngine(drv hardware.Driver) *CommitEngine {
	return &CommitEngine{drv: drv}
}

// Commit writes SEL..end as one block, then LEDON. It stops at the first
// failure and returns a *TransportError. The image is never rolled back.
func (e *CommitEngine) Commit(ctx context.Context, img *registers.Image) error {
	block := img.ConfigBlock()
	enable := img.EnableByte()

	e.mu.Lock()
	defer e.mu.Unlock()

	reg := registers.RegSel | registers.AutoIncrement
	if err := e.drv.WriteBlockData(ctx, reg, block); err != nil {
		slog.Error("chip: commit block write failed", "err", err)
		return &TransportError{Op: "commit block write", Reg: reg, Err: err}
	}
	if err := e.drv.WriteByteData(ctx, registers.RegLEDOn, enable); err != nil {
		slog.Error("chip: commit enable write failed", "err", err)
		return &TransportError{Op: "commit enable write", Reg: registers.RegLEDOn, Err: err}
	}
	return nil
}

// WriteSelect writes the SEL byte (current range) on its own.
func (e *CommitEngine) WriteSelect(ctx context.Context, img *registers.Image) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.drv.WriteByteData(ctx, registers.RegSel, img.Reg(registers.RegSel)); err != nil {
		return &TransportError{Op: "select write", Reg: registers.RegSel, Err: err}
	}
	return nil
}

// Dump reads back the whole register file.
func (e *CommitEngine) Dump(ctx context.Context) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	reg := registers.RegSReset | registers.AutoIncrement
	b, err := e.drv.ReadBlockData(ctx, reg, registers.Size)
	if err != nil {
		return nil, &TransportError{Op: "dump read", Reg: reg, Err: err}
	}
	return b, nil
}

// Attach soft-resets the chip, loads the register file into img, and selects
// the lowest current range.
func (e *CommitEngine) Attach(ctx context.Context, img *registers.Image) error {
	e.mu.Lock()
	if err := e.drv.WriteByteData(ctx, registers.RegSReset, registers.SResetFlag); err != nil {
		e.mu.Unlock()
		return &TransportError{Op: "soft reset", Reg: registers.RegSReset, Err: err}
	}
	e.mu.Unlock()

	b, err := e.Dump(ctx)
	if err != nil {
		return err
	}
	if err := img.Load(b); err != nil {
		return err
	}
	img.SetIMax(0)
	return e.WriteSelect(ctx, img)
}
