// Package knobs implements the text control contract of the LED device: a
// flat set of named attributes, each parsed from and rendered to a short
// string. The HTTP API, the serial console and the knob directory all
// dispatch through a Set.
package knobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/metrics"
	"github.com/micro-nova/an30259a/internal/models"
	"github.com/micro-nova/an30259a/internal/registers"
)

var (
	// ErrUnknownKnob is returned for a name that is not in the set.
	ErrUnknownKnob = errors.New("knobs: unknown knob")
	// ErrWriteOnly is returned when reading a knob that has no read form.
	ErrWriteOnly = errors.New("knobs: knob is write-only")
)

// Device is the control surface the knobs drive. *controller.Controller
// implements it.
type Device interface {
	State() models.State

	SetBrightness(ch registers.Channel, level int) error
	SetRaw(ctx context.Context, ch registers.Channel, code uint8) error
	BlinkRGB(ctx context.Context, rgb uint32, onMs, offMs int) error
	TriggerPattern(ctx context.Context, p chip.Pattern) error
	SetIMax(ctx context.Context, imax uint8) error

	SetDelayOn(ch registers.Channel, ms int) error
	SetDelayOff(ch registers.Channel, ms int) error
	Delays(ch registers.Channel) (onMs, offMs int)
	BlinkChannel(ctx context.Context, ch registers.Channel, enable bool) error

	SetFade(v int) bool
	SetIntensity(v int) bool
	SetSpeed(v int) bool
	SetFadeParams(up1, up2, down1, down2 int)
	SetLowPower(v int) bool
	SetPatternsDisabled(v int) bool

	DescribeFade() string
	DescribeIntensity() string
	DescribeSpeed() string
	DescribeSlope() string
	DescribeLowPower() string
	DescribePatternsDisabled() string
}

type knob struct {
	// strict knobs return parse errors to the writer; the rest log them and
	// acknowledge the write.
	strict bool
	read   func(d Device) string
	write  func(ctx context.Context, d Device, arg string) error
}

// Set dispatches knob reads and writes to a Device.
type Set struct {
	dev   Device
	knobs map[string]knob
}

// New builds the full knob table for dev.
func New(dev Device) *Set {
	s := &Set{dev: dev, knobs: make(map[string]knob)}
	s.addGlobal()
	for _, ch := range registers.Channels {
		s.addChannel(ch)
		s.addRaw(ch)
	}
	return s
}

// Names returns every knob name in sorted order. Per-channel knobs are named
// "<channel>/<attr>", e.g. "led_r/brightness".
func (s *Set) Names() []string {
	out := make([]string, 0, len(s.knobs))
	for n := range s.knobs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Readable reports whether name exists and has a read form.
func (s *Set) Readable(name string) bool {
	k, ok := s.knobs[name]
	return ok && k.read != nil
}

// Read renders the current value of a knob.
func (s *Set) Read(name string) (string, error) {
	k, ok := s.knobs[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKnob, name)
	}
	if k.read == nil {
		return "", fmt.Errorf("%w: %q", ErrWriteOnly, name)
	}
	return k.read(s.dev), nil
}

// Write parses value and applies it. Malformed input on a lenient knob is
// logged and acknowledged; strict knobs return the *ParseError. Bus failures
// are always returned.
func (s *Set) Write(ctx context.Context, name, value string) error {
	k, ok := s.knobs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKnob, name)
	}
	err := k.write(ctx, s.dev, value)
	metrics.ObserveKnob(name, err)

	var pe *ParseError
	if errors.As(err, &pe) && !k.strict {
		slog.Warn("knobs: ignoring malformed write", "knob", name, "input", value, "err", pe.Err)
		return nil
	}
	if err != nil {
		slog.Debug("knobs: write failed", "knob", name, "err", err)
	}
	return err
}

func (s *Set) addGlobal() {
	s.knobs["led_pattern"] = knob{
		write: func(ctx context.Context, d Device, arg string) error {
			p, err := parsePattern(arg)
			if err != nil {
				return &ParseError{Knob: "led_pattern", Input: arg, Err: err}
			}
			return d.TriggerPattern(ctx, p)
		},
	}
	s.knobs["led_blink"] = knob{
		write: func(ctx context.Context, d Device, arg string) error {
			rgb, on, off, err := parseBlink(arg)
			if err != nil {
				return &ParseError{Knob: "led_blink", Input: arg, Err: err}
			}
			return d.BlinkRGB(ctx, rgb, on, off)
		},
	}
	s.knobs["led_fade"] = knob{
		read:  Device.DescribeFade,
		write: decimalSetter("led_fade", Device.SetFade),
	}
	s.knobs["led_intensity"] = knob{
		read:  Device.DescribeIntensity,
		write: decimalSetter("led_intensity", Device.SetIntensity),
	}
	s.knobs["led_speed"] = knob{
		read:  Device.DescribeSpeed,
		write: decimalSetter("led_speed", Device.SetSpeed),
	}
	s.knobs["led_slope"] = knob{
		read: Device.DescribeSlope,
		write: func(_ context.Context, d Device, arg string) error {
			v, err := parseSlope(arg)
			if err != nil {
				return &ParseError{Knob: "led_slope", Input: arg, Err: err}
			}
			d.SetFadeParams(v[0], v[1], v[2], v[3])
			return nil
		},
	}
	s.knobs["led_lowpower"] = knob{
		read: Device.DescribeLowPower,
		write: func(_ context.Context, d Device, arg string) error {
			v, err := parseByte(arg)
			if err != nil {
				return &ParseError{Knob: "led_lowpower", Input: arg, Err: err}
			}
			d.SetLowPower(int(v))
			return nil
		},
	}
	s.knobs["led_br_lev"] = knob{
		read: func(d Device) string {
			return strconv.FormatInt(int64(d.State().Tunables.IMax), 16)
		},
		write: func(ctx context.Context, d Device, arg string) error {
			v, err := parseHexByte(arg)
			if err != nil {
				return &ParseError{Knob: "led_br_lev", Input: arg, Err: err}
			}
			return d.SetIMax(ctx, v)
		},
	}
	s.knobs["disable_samsung_pattern"] = knob{
		strict: true,
		read:   Device.DescribePatternsDisabled,
		write: func(_ context.Context, d Device, arg string) error {
			v, err := parseUnsigned(arg)
			if err != nil {
				return &ParseError{Knob: "disable_samsung_pattern", Input: arg, Err: err}
			}
			if !d.SetPatternsDisabled(v) {
				slog.Debug("knobs: pattern suppression value ignored", "value", v)
			}
			return nil
		},
	}
}

// addRaw registers led_r/led_g/led_b: synchronous unscaled writes.
func (s *Set) addRaw(ch registers.Channel) {
	name := ch.String()
	s.knobs[name] = knob{
		write: func(ctx context.Context, d Device, arg string) error {
			v, err := parseByte(arg)
			if err != nil {
				return &ParseError{Knob: name, Input: arg, Err: err}
			}
			return d.SetRaw(ctx, ch, v)
		},
	}
}

// addChannel registers the per-channel LED attributes.
func (s *Set) addChannel(ch registers.Channel) {
	prefix := ch.String() + "/"

	s.knobs[prefix+"brightness"] = knob{
		strict: true,
		read: func(d Device) string {
			return strconv.Itoa(d.State().Channels[ch].Brightness)
		},
		write: func(_ context.Context, d Device, arg string) error {
			v, err := parseLevel(arg)
			if err != nil {
				return &ParseError{Knob: prefix + "brightness", Input: arg, Err: err}
			}
			return d.SetBrightness(ch, v)
		},
	}
	s.knobs[prefix+"delay_on"] = knob{
		strict: true,
		read: func(d Device) string {
			on, _ := d.Delays(ch)
			return strconv.Itoa(on)
		},
		write: func(_ context.Context, d Device, arg string) error {
			v, err := parseUnsigned(arg)
			if err != nil {
				return &ParseError{Knob: prefix + "delay_on", Input: arg, Err: err}
			}
			return d.SetDelayOn(ch, v)
		},
	}
	s.knobs[prefix+"delay_off"] = knob{
		strict: true,
		read: func(d Device) string {
			_, off := d.Delays(ch)
			return strconv.Itoa(off)
		},
		write: func(_ context.Context, d Device, arg string) error {
			v, err := parseUnsigned(arg)
			if err != nil {
				return &ParseError{Knob: prefix + "delay_off", Input: arg, Err: err}
			}
			return d.SetDelayOff(ch, v)
		},
	}
	s.knobs[prefix+"blink"] = knob{
		strict: true,
		write: func(ctx context.Context, d Device, arg string) error {
			v, err := parseUnsigned(arg)
			if err != nil {
				return &ParseError{Knob: prefix + "blink", Input: arg, Err: err}
			}
			return d.BlinkChannel(ctx, ch, v != 0)
		},
	}
}

// decimalSetter parses one decimal and hands it to set. Rejected values are
// ignored without error.
func decimalSetter(name string, set func(Device, int) bool) func(context.Context, Device, string) error {
	return func(_ context.Context, d Device, arg string) error {
		v, err := parseDecimal(arg)
		if err != nil {
			return &ParseError{Knob: name, Input: arg, Err: err}
		}
		if !set(d, v) {
			slog.Debug("knobs: value out of range, ignored", "knob", name, "value", v)
		}
		return nil
	}
}
