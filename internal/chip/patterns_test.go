package chip_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/hardware"
	"github.com/micro-nova/an30259a/internal/registers"
)

func newProgrammer() chip.Programmer {
	return chip.Programmer{Policy: chip.Policy{Currents: chip.DefaultCurrents}}
}

func newEngine(t *testing.T) (*hardware.Mock, *chip.CommitEngine) {
	t.Helper()
	m := hardware.NewMock()
	m.SetDelay(0)
	return m, chip.NewCommitEngine(m)
}

func TestParsePattern(t *testing.T) {
	p, ok := chip.ParsePattern("low_battery")
	require.True(t, ok)
	assert.Equal(t, chip.PatternLowBattery, p)

	p, ok = chip.ParsePattern("6")
	require.True(t, ok)
	assert.Equal(t, chip.PatternPowering, p)

	p, ok = chip.ParsePattern("42")
	require.True(t, ok)
	assert.False(t, p.Valid())
	assert.Equal(t, "pattern(42)", p.String())

	_, ok = chip.ParsePattern("disco")
	assert.False(t, ok)
	assert.Len(t, chip.Patterns(), 7)
}

func TestTriggerPatternOff_DisablesAll(t *testing.T) {
	pr := newProgrammer()
	ctx := context.Background()

	for _, prior := range chip.Patterns() {
		m, eng := newEngine(t)
		st := chip.DefaultIntensityState()
		var img registers.Image
		_, err := pr.TriggerPattern(ctx, eng, &img, &st, prior)
		require.NoError(t, err)
		lit, err := pr.TriggerPattern(ctx, eng, &img, &st, chip.PatternOff)
		require.NoError(t, err)
		assert.False(t, lit)

		assert.Zero(t, img.EnableByte(), "after %s", prior)
		assert.Zero(t, m.GetReg(registers.RegLEDOn), "after %s", prior)
	}
}

func TestTriggerPattern_DisabledOnlyResets(t *testing.T) {
	pr := newProgrammer()
	m, eng := newEngine(t)
	st := chip.DefaultIntensityState()
	var img registers.Image

	lit, err := pr.TriggerPattern(context.Background(), eng, &img, &st, chip.PatternPowering)
	require.NoError(t, err)
	require.True(t, lit)
	st.PatternsDisabled = true
	m.ResetOps()

	reset := img
	pr.Encoder.ResetAll(&reset)

	lit, err = pr.TriggerPattern(context.Background(), eng, &img, &st, chip.PatternCharging)
	require.NoError(t, err)
	assert.False(t, lit)
	assert.Len(t, m.Ops(), 2, "one commit: block + enable")
	assert.Equal(t, reset.Bytes(), img.Bytes(), "no mutation beyond the reset")
}

func TestTriggerPattern_OutOfRangeOnlyResets(t *testing.T) {
	pr := newProgrammer()
	m, eng := newEngine(t)
	st := chip.DefaultIntensityState()
	var img registers.Image

	lit, err := pr.TriggerPattern(context.Background(), eng, &img, &st, chip.Pattern(9))
	require.NoError(t, err)
	assert.False(t, lit)
	assert.Len(t, m.Ops(), 2)
	assert.Zero(t, img.EnableByte())
}

func TestApplyPattern_Table(t *testing.T) {
	pr := newProgrammer()

	t.Run("charging", func(t *testing.T) {
		st := chip.DefaultIntensityState()
		var img registers.Image
		require.True(t, pr.ApplyPattern(&img, &st, chip.PatternCharging))
		assert.Equal(t, byte(0x01), img.EnableByte())
		assert.Equal(t, uint8(0x28), img.Current(registers.ChannelR))
	})

	t.Run("fully charged", func(t *testing.T) {
		st := chip.DefaultIntensityState()
		var img registers.Image
		require.True(t, pr.ApplyPattern(&img, &st, chip.PatternFullyCharged))
		assert.Equal(t, byte(0x02), img.EnableByte())
		assert.Equal(t, uint8(0x28), img.Current(registers.ChannelG))
	})

	t.Run("charging error hard blink", func(t *testing.T) {
		st := chip.DefaultIntensityState()
		var img registers.Image
		require.True(t, pr.ApplyPattern(&img, &st, chip.PatternChargingError))
		raw := img.Bytes()
		assert.Equal(t, byte(0x11), raw[registers.RegLEDOn])
		assert.Equal(t, byte(0xFF), raw[registers.RegLED1CNT1])
		assert.Equal(t, byte(0x10), raw[registers.RegLED1CNT2])
		assert.Equal(t, byte(0x11), raw[registers.RegLED1SLP])
		assert.Zero(t, raw[registers.RegLED1CNT3])
		assert.Zero(t, raw[registers.RegLED1CNT4])
	})

	t.Run("missed notification fade", func(t *testing.T) {
		st := chip.DefaultIntensityState()
		st.Fade = true
		st.Slopes = [4]uint8{1, 2, 3, 4}
		var img registers.Image
		require.True(t, pr.ApplyPattern(&img, &st, chip.PatternMissedNotification))
		raw := img.Bytes()
		assert.Equal(t, byte(0x44), raw[registers.RegLEDOn])
		assert.Equal(t, byte(0xF7), raw[registers.RegLED3CNT1])
		assert.Equal(t, byte(0xA0), raw[registers.RegLED3CNT2])
		assert.Equal(t, byte(0xA1), raw[registers.RegLED3SLP])
		assert.Equal(t, byte(0x21), raw[registers.RegLED3CNT3])
		assert.Equal(t, byte(0x43), raw[registers.RegLED3CNT4])
	})

	t.Run("low battery speed two", func(t *testing.T) {
		st := chip.DefaultIntensityState()
		st.Speed = 2
		var img registers.Image
		require.True(t, pr.ApplyPattern(&img, &st, chip.PatternLowBattery))
		raw := img.Bytes()
		assert.Equal(t, byte(0x11), raw[registers.RegLEDOn])
		assert.Equal(t, byte(0x77), raw[registers.RegLED1CNT1])
		assert.Equal(t, byte(0x51), raw[registers.RegLED1SLP])
	})

	t.Run("powering low power", func(t *testing.T) {
		st := chip.DefaultIntensityState()
		st.LowPower = true
		var img registers.Image
		require.True(t, pr.ApplyPattern(&img, &st, chip.PatternPowering))
		raw := img.Bytes()
		assert.Equal(t, byte(0x44), raw[registers.RegLEDOn])
		assert.Equal(t, byte(0x05), raw[registers.RegLED3CC])
		assert.Equal(t, byte(0xFC), raw[registers.RegLED3CNT1])
		assert.Equal(t, byte(0x08), raw[registers.RegLED3CNT2])
		assert.Equal(t, byte(0x22), raw[registers.RegLED3SLP])
		assert.Equal(t, byte(0x33), raw[registers.RegLED3CNT3])
		assert.Equal(t, byte(0x33), raw[registers.RegLED3CNT4])
	})

	t.Run("speed zero keeps slope bits clear", func(t *testing.T) {
		st := chip.DefaultIntensityState()
		st.Speed = 0
		var img registers.Image
		require.True(t, pr.ApplyPattern(&img, &st, chip.PatternChargingError))
		assert.Equal(t, byte(0x01), img.EnableByte())
	})
}
