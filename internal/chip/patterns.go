package chip

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/micro-nova/an30259a/internal/registers"
)

// Pattern is one of the canned notification sequences.
type Pattern int

const (
	PatternOff Pattern = iota
	PatternCharging
	PatternChargingError
	PatternMissedNotification
	PatternLowBattery
	PatternFullyCharged
	PatternPowering
)

var patternNames = [...]string{
	PatternOff:                "off",
	PatternCharging:           "charging",
	PatternChargingError:      "charging_error",
	PatternMissedNotification: "missed_notification",
	PatternLowBattery:         "low_battery",
	PatternFullyCharged:       "fully_charged",
	PatternPowering:           "powering",
}

// Valid reports whether p is in the table.
func (p Pattern) Valid() bool { return p >= PatternOff && p <= PatternPowering }

func (p Pattern) String() string {
	if !p.Valid() {
		return "pattern(" + strconv.Itoa(int(p)) + ")"
	}
	return patternNames[p]
}

// ParsePattern accepts either a pattern name or its index.
func ParsePattern(s string) (Pattern, bool) {
	for i, n := range patternNames {
		if n == s {
			return Pattern(i), true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return Pattern(n), true
}

// Patterns lists every valid pattern in index order.
func Patterns() []Pattern {
	out := make([]Pattern, 0, len(patternNames))
	for i := range patternNames {
		out = append(out, Pattern(i))
	}
	return out
}

// blinkSlope is the shared ramp of the error/notification patterns.
func blinkSlope(st *IntensityState, delay, phase2 uint8) Slope {
	return Slope{
		Delay:   delay,
		DutyMax: st.Div(15),
		DutyMid: st.FadePeak(),
		DutyMin: 0,
		Phase1:  1,
		Phase2:  phase2,
		T:       st.Transitions(),
	}
}

// ApplyPattern encodes p onto a reset image. It returns false when nothing
// should be lit: Off, patterns disabled, or p outside the table.
func (pr Programmer) ApplyPattern(img *registers.Image, st *IntensityState, p Pattern) bool {
	if st.PatternsDisabled || !p.Valid() || p == PatternOff {
		return false
	}
	level := pr.Policy.Resolve(st, MaxLevel)
	enc := pr.Encoder

	switch p {
	case PatternCharging:
		enc.EncodeSteady(img, registers.ChannelR, true, level)
	case PatternChargingError:
		enc.EncodeSteady(img, registers.ChannelR, true, level)
		enc.EncodeSlope(img, st, registers.ChannelR, blinkSlope(st, 1, 1))
	case PatternMissedNotification:
		enc.EncodeSteady(img, registers.ChannelB, true, level)
		enc.EncodeSlope(img, st, registers.ChannelB, blinkSlope(st, 10, st.Div(10)))
	case PatternLowBattery:
		enc.EncodeSteady(img, registers.ChannelR, true, level)
		enc.EncodeSlope(img, st, registers.ChannelR, blinkSlope(st, 10, st.Div(10)))
	case PatternFullyCharged:
		enc.EncodeSteady(img, registers.ChannelG, true, level)
	case PatternPowering:
		enc.EncodeSteady(img, registers.ChannelB, true, pr.Policy.Dynamic(st))
		enc.EncodeSlope(img, st, registers.ChannelB, Slope{
			DutyMax: 15, DutyMid: 12, DutyMin: 8,
			Phase1: 2, Phase2: 2,
			T: [4]uint8{3, 3, 3, 3},
		})
	}
	return true
}

// Committer flushes an image to the chip. *CommitEngine is the usual one.
type Committer interface {
	Commit(ctx context.Context, img *registers.Image) error
}

// TriggerPattern turns every channel off and commits, then, unless the
// pattern resolves to nothing, encodes it and commits again. It reports
// whether the pattern was lit.
func (pr Programmer) TriggerPattern(ctx context.Context, cm Committer, img *registers.Image, st *IntensityState, p Pattern) (bool, error) {
	pr.Encoder.ResetAll(img)
	if err := cm.Commit(ctx, img); err != nil {
		return false, err
	}
	if !pr.ApplyPattern(img, st, p) {
		slog.Debug("chip: pattern halted after reset", "pattern", p.String(), "disabled", st.PatternsDisabled)
		return false, nil
	}
	if err := cm.Commit(ctx, img); err != nil {
		return false, err
	}
	return true, nil
}
