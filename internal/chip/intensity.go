package chip

import "github.com/micro-nova/an30259a/internal/registers"

// Intensity scale values with special meaning.
const (
	IntensityPassthrough uint8 = 0
	IntensityReference   uint8 = 40
)

// Tunable limits.
const (
	MaxSpeed     uint8 = 15
	MaxSlopeStep uint8 = 5
	MaxLevel           = 255
)

// Slope preset indices into IntensityState.Slopes.
const (
	SlopeUp1 = iota
	SlopeUp2
	SlopeDown1
	SlopeDown2
)

// IntensityState is the per-device set of tunables read by every encode.
type IntensityState struct {
	Intensity        uint8    // 0 passthrough, 40 reference, otherwise linear scale
	Speed            uint8    // 0 continuous (no slope), else timing divisor
	LowPower         bool     // derate the reference current
	Slopes           [4]uint8 // up1, up2, down1, down2 detention presets
	Fade             bool     // fade ramp instead of hard blink
	PatternsDisabled bool
}

// DefaultIntensityState returns the tunables a freshly attached device starts with.
func DefaultIntensityState() IntensityState {
	return IntensityState{
		Intensity: IntensityReference,
		Speed:     1,
		Slopes:    [4]uint8{1, 1, 1, 1},
	}
}

// Div divides a timing constant by the speed divisor. A zero divisor returns
// v unchanged; slope mode is suppressed in that case anyway.
func (s *IntensityState) Div(v uint8) uint8 {
	if s.Speed == 0 {
		return v
	}
	return v / s.Speed
}

// Transitions returns the four per-step detention nibbles for a slope: the
// presets when fading, zeros otherwise.
func (s *IntensityState) Transitions() [4]uint8 {
	if !s.Fade {
		return [4]uint8{}
	}
	return s.Slopes
}

// FadePeak returns the mid duty used by blinking slopes.
func (s *IntensityState) FadePeak() uint8 {
	if s.Fade {
		return s.Div(7)
	}
	return s.Div(15)
}

// Currents are the static reference current codes from configuration.
type Currents struct {
	Default  uint8
	LowPower uint8
}

// DefaultCurrents match the values the chip ships with when configuration is absent.
var DefaultCurrents = Currents{Default: 0x28, LowPower: 0x05}

// Policy resolves a brightness request to a current code.
type Policy struct {
	Currents Currents
}

// Dynamic returns the reference current for the current power mode.
// Low power only swaps this constant; requests are not divided by 8 as the
// vendor documentation suggests.
func (p Policy) Dynamic(st *IntensityState) uint8 {
	if st.LowPower {
		return p.Currents.LowPower
	}
	return p.Currents.Default
}

// Resolve maps a raw request (clamped to 0..255) through the intensity scale.
// The calibration offset is not applied here; the encoder adds it.
func (p Policy) Resolve(st *IntensityState, req int) uint8 {
	if req < 0 {
		req = 0
	}
	if req > MaxLevel {
		req = MaxLevel
	}
	switch st.Intensity {
	case IntensityPassthrough:
		return uint8(req)
	case IntensityReference:
		return uint8(req * int(p.Dynamic(st)) / MaxLevel)
	default:
		return uint8(req * int(st.Intensity) / MaxLevel)
	}
}

// Offsets is the per-channel calibration added to every nonzero current code.
type Offsets [registers.NumChannels]uint8

// OffsetsFromPacked splits a 0xRRGGBB composite into per-channel offsets.
func OffsetsFromPacked(v uint32) Offsets {
	return Offsets{uint8(v >> 16), uint8(v >> 8), uint8(v)}
}
