package chip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/registers"
)

func TestEncodeSteadyThenOff_ClearsEnableAndDelay(t *testing.T) {
	enc := chip.Encoder{Offsets: chip.Offsets{3, 0, 9}}
	st := chip.DefaultIntensityState()

	for _, ch := range registers.Channels {
		for req := 0; req <= 255; req++ {
			var img registers.Image
			// Dirty prior state: slope program with a start delay.
			enc.EncodeSlope(&img, &st, ch, chip.Slope{Delay: 10, DutyMax: 15, Phase1: 2, Phase2: 2})

			enc.EncodeSteady(&img, ch, true, uint8(req))
			enc.EncodeOff(&img, ch)

			if img.Enabled(ch) || img.SlopeMode(ch) || img.Delay(ch) != 0 {
				t.Fatalf("%s req=%d: enabled=%v slope=%v delay=%d after off",
					ch, req, img.Enabled(ch), img.SlopeMode(ch), img.Delay(ch))
			}
		}
	}
}

func TestEncodeSteady_Offset(t *testing.T) {
	enc := chip.Encoder{Offsets: chip.OffsetsFromPacked(0x0A0000)}
	var img registers.Image

	enc.EncodeSteady(&img, registers.ChannelR, true, 0x20)
	assert.Equal(t, uint8(0x2A), img.Current(registers.ChannelR))

	enc.EncodeSteady(&img, registers.ChannelR, true, 0)
	assert.Zero(t, img.Current(registers.ChannelR), "offset only applies to nonzero codes")

	enc.EncodeSteady(&img, registers.ChannelR, true, 0xFA)
	assert.Equal(t, uint8(0xFF), img.Current(registers.ChannelR), "offset saturates")

	enc.EncodeSteady(&img, registers.ChannelG, true, 0x20)
	assert.Equal(t, uint8(0x20), img.Current(registers.ChannelG))
}

func TestEncodeSteady_LeavesSlopeFields(t *testing.T) {
	var enc chip.Encoder
	st := chip.DefaultIntensityState()
	var img registers.Image

	enc.EncodeSlope(&img, &st, registers.ChannelG, chip.Slope{DutyMax: 15, DutyMid: 7, Phase1: 3, Phase2: 4})
	enc.EncodeSteady(&img, registers.ChannelG, true, 0x10)

	dMax, dMid, _ := img.Duty(registers.ChannelG)
	p1, p2 := img.SlopeTimes(registers.ChannelG)
	assert.Equal(t, []uint8{15, 7, 3, 4}, []uint8{dMax, dMid, p1, p2})
	assert.False(t, img.SlopeMode(registers.ChannelG))
}

func TestEncodeSlope_PackingRoundTrip(t *testing.T) {
	var enc chip.Encoder
	st := chip.DefaultIntensityState()
	var img registers.Image

	enc.EncodeSlope(&img, &st, registers.ChannelR, chip.Slope{
		Delay: 1, DutyMax: 15, DutyMid: 7, DutyMin: 0,
		Phase1: 1, Phase2: 10,
		T: [4]uint8{1, 2, 3, 4},
	})

	raw := img.Bytes()
	assert.Equal(t, byte(0xF7), raw[registers.RegLED1CNT1])
	assert.Equal(t, byte(0x10), raw[registers.RegLED1CNT2])
	assert.Equal(t, byte(0x21), raw[registers.RegLED1CNT3])
	assert.Equal(t, byte(0x43), raw[registers.RegLED1CNT4])
	assert.Equal(t, byte(0xA1), raw[registers.RegLED1SLP])

	dMax, dMid, dMin := img.Duty(registers.ChannelR)
	assert.Equal(t, uint8(15), dMax)
	assert.Equal(t, uint8(7), dMid)
	assert.Equal(t, uint8(0), dMin)
	assert.True(t, img.Enabled(registers.ChannelR))
	assert.True(t, img.SlopeMode(registers.ChannelR))
}

func TestEncodeSlope_SpeedZeroSuppressesSlopeMode(t *testing.T) {
	var enc chip.Encoder
	st := chip.DefaultIntensityState()
	st.Speed = 0
	var img registers.Image

	enc.EncodeSlope(&img, &st, registers.ChannelB, chip.Slope{DutyMax: 15, Phase1: 1, Phase2: 1})
	assert.True(t, img.Enabled(registers.ChannelB))
	assert.False(t, img.SlopeMode(registers.ChannelB))
}

func TestEncodeOff_LeavesCodeStale(t *testing.T) {
	var enc chip.Encoder
	var img registers.Image
	enc.EncodeSteady(&img, registers.ChannelB, true, 0x33)
	enc.EncodeOff(&img, registers.ChannelB)
	assert.Equal(t, uint8(0x33), img.Current(registers.ChannelB))
	assert.False(t, img.Enabled(registers.ChannelB))
}

func TestResetAll(t *testing.T) {
	var enc chip.Encoder
	st := chip.DefaultIntensityState()
	var img registers.Image
	for _, ch := range registers.Channels {
		enc.EncodeSteady(&img, ch, true, 0x40)
		enc.EncodeSlope(&img, &st, ch, chip.Slope{Delay: 3, DutyMax: 15})
	}

	enc.ResetAll(&img)
	assert.Zero(t, img.EnableByte())
	for _, ch := range registers.Channels {
		assert.Zero(t, img.Current(ch), ch.String())
		assert.Zero(t, img.Delay(ch), ch.String())
	}
}

func TestSlopeUnits(t *testing.T) {
	tests := []struct {
		ms    int
		speed uint8
		want  uint8
	}{
		{1000, 1, 2},
		{500, 1, 1},
		{501, 1, 2},
		{1, 1, 1},
		{0, 1, 0},
		{1000, 2, 1},
		{1000, 0, 2},
		{9000, 1, 15},
		{9000, 3, 5},
		{-5, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, chip.SlopeUnits(tt.ms, tt.speed), "SlopeUnits(%d, %d)", tt.ms, tt.speed)
	}
}
