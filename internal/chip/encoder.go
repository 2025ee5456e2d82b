package chip

import "github.com/micro-nova/an30259a/internal/registers"

// Timing units.
const (
	TimeUnitMs   = 500  // phase totals and start delay
	MaxSlopeTime = 7500 // longest on/off interval the chip can express
)

// Slope is one channel's ramp program. Every field is a 4-bit value; the
// packing truncates anything wider.
type Slope struct {
	Delay                     uint8 // start delay, 0.5s units
	DutyMax, DutyMid, DutyMin uint8
	Phase1, Phase2            uint8    // on / off phase totals, 0.5s units
	T                         [4]uint8 // per-step detention, 4ms units
}

// Encoder translates lighting intents into register field writes.
// It never commits.
type Encoder struct {
	Offsets Offsets
}

// code adds the channel's calibration offset to nonzero codes, saturating.
func (e Encoder) code(ch registers.Channel, c uint8) uint8 {
	if c == 0 || !ch.Valid() {
		return c
	}
	sum := int(c) + int(e.Offsets[ch])
	if sum > MaxLevel {
		return MaxLevel
	}
	return uint8(sum)
}

// EncodeSteady programs a constant current: enable bit as given, slope mode
// and start delay cleared, current code plus offset. Slope fields are untouched.
func (e Encoder) EncodeSteady(img *registers.Image, ch registers.Channel, enabled bool, c uint8) {
	img.SetEnabled(ch, enabled)
	img.SetSlopeMode(ch, false)
	img.SetDelay(ch, 0)
	img.SetCurrent(ch, e.code(ch, c))
}

// EncodeSlope writes the slope program and sets enable. Slope mode is only
// set when the speed divisor is nonzero.
func (e Encoder) EncodeSlope(img *registers.Image, st *IntensityState, ch registers.Channel, s Slope) {
	img.SetDuty(ch, s.DutyMax, s.DutyMid, s.DutyMin)
	img.SetDelay(ch, s.Delay)
	img.SetTransitions(ch, s.T[0], s.T[1], s.T[2], s.T[3])
	img.SetSlopeTimes(ch, s.Phase1, s.Phase2)
	img.SetEnabled(ch, true)
	img.SetSlopeMode(ch, st.Speed != 0)
}

// EncodeOff clears enable, slope mode and start delay. Current code and duty
// are left as they were; the chip ignores them while disabled.
func (e Encoder) EncodeOff(img *registers.Image, ch registers.Channel) {
	img.SetEnabled(ch, false)
	img.SetSlopeMode(ch, false)
	img.SetDelay(ch, 0)
}

// ResetAll turns every channel off and zeroes the current codes.
func (e Encoder) ResetAll(img *registers.Image) {
	for _, ch := range registers.Channels {
		e.EncodeSteady(img, ch, false, 0)
	}
}

// SlopeUnits converts a millisecond interval to 0.5s units after clamping to
// MaxSlopeTime and dividing by speed (0 = no division), rounding up.
func SlopeUnits(ms int, speed uint8) uint8 {
	if ms < 0 {
		ms = 0
	}
	if ms > MaxSlopeTime {
		ms = MaxSlopeTime
	}
	if speed != 0 {
		ms /= int(speed)
	}
	return uint8((ms + TimeUnitMs - 1) / TimeUnitMs)
}
