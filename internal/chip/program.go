package chip

import "github.com/micro-nova/an30259a/internal/registers"

// Programmer composes the encoder and the intensity policy into the lighting
// operations callers ask for. None of its methods commit.
type Programmer struct {
	Encoder Encoder
	Policy  Policy
}

// Steady resolves level through the policy and encodes a constant current.
// Level 0 turns the channel off.
func (pr Programmer) Steady(img *registers.Image, st *IntensityState, ch registers.Channel, level int) uint8 {
	if level <= 0 {
		pr.Encoder.EncodeOff(img, ch)
		return 0
	}
	c := pr.Policy.Resolve(st, level)
	pr.Encoder.EncodeSteady(img, ch, true, c)
	return c
}

// Raw encodes an unscaled current code. Zero turns the channel off.
func (pr Programmer) Raw(img *registers.Image, ch registers.Channel, code uint8) {
	pr.Encoder.EncodeSteady(img, ch, code != 0, code)
}

// Blink encodes an on/off cycle. Level 0 forces off regardless of timing; a
// zero off interval degenerates to steady on. Intervals are clamped to
// MaxSlopeTime before conversion.
func (pr Programmer) Blink(img *registers.Image, st *IntensityState, ch registers.Channel, onMs, offMs, level int) {
	if level <= 0 {
		pr.Encoder.EncodeSteady(img, ch, false, 0)
		return
	}
	c := pr.Policy.Resolve(st, level)
	if offMs <= 0 {
		pr.Encoder.EncodeSteady(img, ch, c != 0, c)
		return
	}
	pr.Encoder.EncodeSteady(img, ch, true, c)
	pr.Encoder.EncodeSlope(img, st, ch, Slope{
		DutyMax: st.Div(15),
		DutyMid: st.FadePeak(),
		Phase1:  SlopeUnits(onMs, st.Speed),
		Phase2:  SlopeUnits(offMs, st.Speed),
		T:       st.Transitions(),
	})
}
