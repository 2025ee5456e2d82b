package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/micro-nova/an30259a/internal/metrics"
	"github.com/micro-nova/an30259a/internal/registers"
)

// brightnessWorker owns a single-slot, latest-wins cell for one channel.
// Callers overwrite the cell without blocking; the worker goroutine drains it
// and commits.
type brightnessWorker struct {
	c  *Controller
	ch registers.Channel

	mu      sync.Mutex
	level   int
	pending bool
	stopped bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newBrightnessWorker(c *Controller, ch registers.Channel) *brightnessWorker {
	return &brightnessWorker{
		c:    c,
		ch:   ch,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// post stores level, replacing anything not yet committed. It reports false
// once the worker has been stopped.
func (w *brightnessWorker) post(level int) bool {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return false
	}
	if w.pending {
		metrics.ObserveCoalesced(w.ch.String())
	}
	w.level = level
	w.pending = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

func (w *brightnessWorker) take() (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending {
		return 0, false
	}
	w.pending = false
	return w.level, true
}

// stop refuses further posts. Anything already posted is still drained.
func (w *brightnessWorker) stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.once.Do(func() { close(w.done) })
}

func (w *brightnessWorker) run() {
	defer w.c.wg.Done()
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.done:
			w.drain()
			return
		}
	}
}

func (w *brightnessWorker) drain() {
	level, ok := w.take()
	if !ok {
		return
	}
	if err := w.c.applyBrightness(context.Background(), w.ch, level); err != nil {
		slog.Warn("controller: brightness commit failed", "channel", w.ch.String(), "level", level, "err", err)
	}
}

// SetBrightness requests a steady level (0-255, 0 = off) on ch. It never
// blocks; rapid calls coalesce to the latest level before the next commit.
func (c *Controller) SetBrightness(ch registers.Channel, level int) error {
	if !ch.Valid() {
		return errInvalidChannel(ch)
	}
	if c.closed.Load() {
		return ErrClosed
	}
	if level < 0 {
		level = 0
	}
	if level > 255 {
		level = 255
	}
	if !c.workers[ch].post(level) {
		return ErrClosed
	}
	return nil
}

func (c *Controller) applyBrightness(ctx context.Context, ch registers.Channel, level int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chans[ch].brightness = level
	c.prog.Steady(&c.img, &c.st, ch, level)
	return c.commitLocked(ctx)
}
