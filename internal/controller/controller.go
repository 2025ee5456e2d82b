// Package controller implements the LED control surface: the single owner of
// the shadow register image and the intensity tunables.
package controller

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/events"
	"github.com/micro-nova/an30259a/internal/hardware"
	"github.com/micro-nova/an30259a/internal/metrics"
	"github.com/micro-nova/an30259a/internal/models"
	"github.com/micro-nova/an30259a/internal/registers"
)

// ErrClosed is returned by operations after Close.
var ErrClosed = errors.New("controller: closed")

// InitError reports a failed attach. The device is unusable.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return "controller: attach: " + e.Err.Error() }

func (e *InitError) Unwrap() error { return e.Err }

// Options configures a Controller.
type Options struct {
	Currents chip.Currents
	Offsets  chip.Offsets
	Bus      *events.Bus // optional
	Info     models.Info
}

// channelState is what the controller remembers per lane beyond the image.
type channelState struct {
	brightness int
	delayOnMs  int
	delayOffMs int
}

// Controller serialises every mutation of the register image. It holds its
// mutex across the commit, so the lock order is Controller, then CommitEngine.
type Controller struct {
	mu      sync.Mutex
	img     registers.Image
	st      chip.IntensityState
	prog    chip.Programmer
	eng     *chip.CommitEngine
	bus     *events.Bus
	info    models.Info
	pattern chip.Pattern
	chans   [registers.NumChannels]channelState
	commits uint64
	closed  atomic.Bool // SetBrightness reads this without holding mu

	workers [registers.NumChannels]*brightnessWorker
	wg      sync.WaitGroup
}

// New attaches to the chip behind hw: soft reset, register read-back, lowest
// current range. hw must already be initialised. Failure returns *InitError.
func New(ctx context.Context, hw hardware.Driver, opts Options) (*Controller, error) {
	c := &Controller{
		st: chip.DefaultIntensityState(),
		prog: chip.Programmer{
			Encoder: chip.Encoder{Offsets: opts.Offsets},
			Policy:  chip.Policy{Currents: opts.Currents},
		},
		eng:  chip.NewCommitEngine(hw),
		bus:  opts.Bus,
		info: opts.Info,
	}

	if err := c.eng.Attach(ctx, &c.img); err != nil {
		return nil, &InitError{Err: err}
	}
	c.info.Attached = true

	for _, ch := range registers.Channels {
		w := newBrightnessWorker(c, ch)
		c.workers[ch] = w
		c.wg.Add(1)
		go w.run()
	}

	slog.Info("controller: attached",
		"imax", c.img.IMax(),
		"default_current", opts.Currents.Default,
		"lowpower_current", opts.Currents.LowPower)
	return c, nil
}

// Close stops accepting brightness requests, lets the workers drain what is
// pending, then turns every channel off.
func (c *Controller) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	for _, w := range c.workers {
		w.stop()
	}
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.prog.Encoder.ResetAll(&c.img)
	c.pattern = chip.PatternOff
	err := c.commitLocked(ctx)
	c.info.Attached = false
	if err != nil {
		return fmt.Errorf("controller: final off write: %w", err)
	}
	slog.Info("controller: detached")
	return nil
}

// commitLocked commits the image and publishes the outcome. Caller holds c.mu.
func (c *Controller) commitLocked(ctx context.Context) error {
	err := c.eng.Commit(ctx, &c.img)
	metrics.ObserveCommit(err)
	if err != nil {
		c.publishLocked(events.KindError, err)
		return err
	}
	c.commits++
	for _, ch := range registers.Channels {
		code := 0.0
		if c.img.Enabled(ch) {
			code = float64(c.img.Current(ch))
		}
		metrics.SetChannelCurrent(ch.String(), code)
	}
	c.publishLocked(events.KindCommit, nil)
	return nil
}

func (c *Controller) publishLocked(kind events.Kind, err error) {
	if c.bus == nil {
		return
	}
	ev := events.Event{Kind: kind, State: c.stateLocked()}
	if err != nil {
		ev.Err = err.Error()
	}
	c.bus.Publish(ev)
}

// State returns a snapshot of the device.
func (c *Controller) State() models.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() models.State {
	s := models.State{
		Channels: make([]models.Channel, 0, registers.NumChannels),
		Tunables: models.Tunables{
			Fade:             c.st.Fade,
			Intensity:        int(c.st.Intensity),
			Speed:            int(c.st.Speed),
			LowPower:         c.st.LowPower,
			PatternsDisabled: c.st.PatternsDisabled,
			IMax:             int(c.img.IMax()),
		},
		Pattern: c.pattern.String(),
		Commits: c.commits,
		Info:    c.info,
	}
	for i, v := range c.st.Slopes {
		s.Tunables.Slopes[i] = int(v)
	}
	for _, ch := range registers.Channels {
		s.Channels = append(s.Channels, models.Channel{
			Name:       ch.String(),
			Enabled:    c.img.Enabled(ch),
			SlopeMode:  c.img.SlopeMode(ch),
			Current:    int(c.img.Current(ch)),
			Brightness: c.chans[ch].brightness,
			DelayOnMs:  c.chans[ch].delayOnMs,
			DelayOffMs: c.chans[ch].delayOffMs,
		})
	}
	raw := c.img.Bytes()
	s.Registers = hex.EncodeToString(raw[:])
	return s
}

// Dump reads back the chip's register file.
func (c *Controller) Dump(ctx context.Context) ([]byte, error) {
	return c.eng.Dump(ctx)
}
