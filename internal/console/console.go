// Package console serves the knob set over a line-oriented text stream,
// normally a UART.
//
// Each input line is one command:
//
//	<knob> <value...>   write a knob, answers "ok" or "error: ..."
//	<knob>              read a knob, answers its value
//	list                print every knob name
//	state               print the device state as JSON
//
// When an event bus is attached, commits and bus errors are echoed as
// "event ..." lines between answers.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/micro-nova/an30259a/internal/events"
	"github.com/micro-nova/an30259a/internal/knobs"
	"github.com/micro-nova/an30259a/internal/models"
)

const subscriberID = "console"

// StateSource supplies the snapshot printed by the state command.
type StateSource interface {
	State() models.State
}

// Console answers commands read from rw.
type Console struct {
	rw    io.ReadWriter
	set   *knobs.Set
	state StateSource
	bus   *events.Bus // optional

	wmu sync.Mutex
}

// New creates a console over rw. bus may be nil.
func New(rw io.ReadWriter, set *knobs.Set, state StateSource, bus *events.Bus) *Console {
	return &Console{rw: rw, set: set, state: state, bus: bus}
}

// OpenSerial opens a UART at baud, 8N1.
func OpenSerial(port string, baud int) (serial.Port, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("console: open %s: %w", port, err)
	}
	return p, nil
}

// Serve processes lines until the reader hits EOF or ctx is cancelled.
// Cancellation only takes effect at the next line or event, so closing the
// underlying port is the usual way to stop a blocked read.
func (c *Console) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.bus != nil {
		evs := c.bus.Subscribe(subscriberID)
		defer c.bus.Unsubscribe(subscriberID)
		go c.forward(ctx, evs)
	}

	sc := bufio.NewScanner(c.rw)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		c.println(c.exec(ctx, line))
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("console: read: %w", err)
	}
	return nil
}

func (c *Console) exec(ctx context.Context, line string) string {
	name, arg, hasArg := strings.Cut(line, " ")
	switch {
	case name == "list" && !hasArg:
		return strings.Join(c.set.Names(), "\n")
	case name == "state" && !hasArg:
		b, err := json.Marshal(c.state.State())
		if err != nil {
			return "error: " + err.Error()
		}
		return string(b)
	case !hasArg:
		v, err := c.set.Read(name)
		if err != nil {
			return "error: " + err.Error()
		}
		return v
	}

	if err := c.set.Write(ctx, name, strings.TrimSpace(arg)); err != nil {
		slog.Debug("console: write failed", "knob", name, "err", err)
		return "error: " + err.Error()
	}
	return "ok"
}

func (c *Console) forward(ctx context.Context, evs <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-evs:
			if !ok {
				return
			}
			c.println(formatEvent(ev))
		}
	}
}

func formatEvent(ev events.Event) string {
	if ev.Kind == events.KindError {
		return fmt.Sprintf("event %s %s", ev.Kind, ev.Err)
	}
	return fmt.Sprintf("event %s pattern=%s regs=%s", ev.Kind, ev.State.Pattern, ev.State.Registers)
}

func (c *Console) println(s string) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := io.WriteString(c.rw, s+"\n"); err != nil {
		slog.Warn("console: write failed", "err", err)
	}
}
