package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/hardware"
	"github.com/micro-nova/an30259a/internal/registers"
)

// A request that slips past the closed check after the worker has stopped
// must be refused, not dropped.
func TestSetBrightness_StoppedWorkerRefuses(t *testing.T) {
	hw := hardware.NewMock()
	hw.SetDelay(0)
	c, err := New(context.Background(), hw, Options{Currents: chip.DefaultCurrents})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	// Close has not flagged the controller yet, but the red worker is gone.
	c.workers[registers.ChannelR].stop()

	if err := c.SetBrightness(registers.ChannelR, 0x40); !errors.Is(err, ErrClosed) {
		t.Errorf("SetBrightness on stopped worker = %v, want ErrClosed", err)
	}
	if err := c.SetBrightness(registers.ChannelG, 0x40); err != nil {
		t.Errorf("SetBrightness on running worker = %v", err)
	}
}

func TestBrightnessWorker_PostAfterStop(t *testing.T) {
	w := newBrightnessWorker(nil, registers.ChannelB)
	if !w.post(10) {
		t.Fatal("post before stop refused")
	}
	w.stop()
	w.stop()
	if w.post(20) {
		t.Error("post after stop accepted")
	}
	if level, ok := w.take(); !ok || level != 10 {
		t.Errorf("take() = %d, %v; want the level posted before stop", level, ok)
	}
}
