package controller

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/events"
	"github.com/micro-nova/an30259a/internal/metrics"
	"github.com/micro-nova/an30259a/internal/registers"
)

// defaultBlinkMs is used when a channel blink is enabled with no delays set.
const defaultBlinkMs = 500

func errInvalidChannel(ch registers.Channel) error {
	return fmt.Errorf("controller: invalid channel %d", ch)
}

// SetBlink programs an on/off cycle on one channel and commits.
// Level 0 forces off; offMs 0 means steady on.
func (c *Controller) SetBlink(ctx context.Context, ch registers.Channel, onMs, offMs, level int) error {
	if !ch.Valid() {
		return errInvalidChannel(ch)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	c.prog.Blink(&c.img, &c.st, ch, onMs, offMs, level)
	return c.commitLocked(ctx)
}

// BlinkRGB resets the chip image, programs all three channels from a 0xRRGGBB
// composite, and commits once.
func (c *Controller) BlinkRGB(ctx context.Context, rgb uint32, onMs, offMs int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	c.prog.Encoder.ResetAll(&c.img)
	levels := [registers.NumChannels]int{int(rgb>>16) & 0xFF, int(rgb>>8) & 0xFF, int(rgb) & 0xFF}
	for _, ch := range registers.Channels {
		c.prog.Blink(&c.img, &c.st, ch, onMs, offMs, levels[ch])
	}
	slog.Debug("controller: rgb blink", "color", fmt.Sprintf("0x%06X", rgb&0xFFFFFF), "on_ms", onMs, "off_ms", offMs)
	return c.commitLocked(ctx)
}

// SetRaw writes an unscaled current code to ch, commits, and logs a register
// read-back.
func (c *Controller) SetRaw(ctx context.Context, ch registers.Channel, code uint8) error {
	if !ch.Valid() {
		return errInvalidChannel(ch)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	c.prog.Raw(&c.img, ch, code)
	if err := c.commitLocked(ctx); err != nil {
		return err
	}
	if b, err := c.eng.Dump(ctx); err != nil {
		slog.Debug("controller: register dump failed", "err", err)
	} else {
		slog.Debug("controller: register dump", "regs", hex.EncodeToString(b))
	}
	return nil
}

// TriggerPattern starts a named pattern. The chip is always reset first, even
// when patterns are disabled or p is unknown.
func (c *Controller) TriggerPattern(ctx context.Context, p chip.Pattern) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	c.pattern = chip.PatternOff
	lit, err := c.prog.TriggerPattern(ctx, lockedCommitter{c}, &c.img, &c.st, p)
	if err != nil || !lit {
		return err
	}
	c.pattern = p
	metrics.ObservePattern(p.String())
	slog.Info("controller: pattern on", "pattern", p.String())
	c.publishLocked(events.KindPattern, nil)
	return nil
}

// lockedCommitter routes chip-level commits through commitLocked.
type lockedCommitter struct{ c *Controller }

func (l lockedCommitter) Commit(ctx context.Context, _ *registers.Image) error {
	return l.c.commitLocked(ctx)
}

// SetIMax selects the chip current range (0-3) and writes SEL immediately.
func (c *Controller) SetIMax(ctx context.Context, imax uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	c.img.SetIMax(imax)
	err := c.eng.WriteSelect(ctx, &c.img)
	if err != nil {
		slog.Error("controller: imax write failed", "imax", imax, "err", err)
	}
	return err
}

// SetDelayOn records the on interval used by a later channel blink.
func (c *Controller) SetDelayOn(ch registers.Channel, ms int) error {
	if !ch.Valid() {
		return errInvalidChannel(ch)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chans[ch].delayOnMs = ms
	return nil
}

// SetDelayOff records the off interval used by a later channel blink.
func (c *Controller) SetDelayOff(ch registers.Channel, ms int) error {
	if !ch.Valid() {
		return errInvalidChannel(ch)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chans[ch].delayOffMs = ms
	return nil
}

// Delays returns the recorded on/off intervals of ch.
func (c *Controller) Delays(ch registers.Channel) (onMs, offMs int) {
	if !ch.Valid() {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chans[ch].delayOnMs, c.chans[ch].delayOffMs
}

// BlinkChannel starts or stops a blink on ch using its recorded delays and
// last brightness (full scale when none). Stopping clears delay_on and turns
// the channel off.
func (c *Controller) BlinkChannel(ctx context.Context, ch registers.Channel, enable bool) error {
	if !ch.Valid() {
		return errInvalidChannel(ch)
	}
	if !enable {
		c.mu.Lock()
		c.chans[ch].delayOnMs = 0
		c.mu.Unlock()
		return c.SetBrightness(ch, 0)
	}

	c.mu.Lock()
	cs := c.chans[ch]
	if cs.delayOnMs == 0 && cs.delayOffMs == 0 {
		cs.delayOnMs, cs.delayOffMs = defaultBlinkMs, defaultBlinkMs
		c.chans[ch] = cs
	}
	level := cs.brightness
	if level == 0 {
		level = chip.MaxLevel
	}
	c.mu.Unlock()

	return c.SetBlink(ctx, ch, cs.delayOnMs, cs.delayOffMs, level)
}
