package controller

import (
	"fmt"
	"log/slog"

	"github.com/micro-nova/an30259a/internal/chip"
)

// The setters below only change the intensity state read by later encodes;
// none of them touches the bus. Each reports whether the value was taken.
// Values outside the accepted set are ignored, except slope presets, which
// are clamped.

// SetFade enables (1) or disables (0) fade ramps. Anything else is ignored.
func (c *Controller) SetFade(v int) bool {
	if v != 0 && v != 1 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Fade = v == 1
	return true
}

// SetIntensity sets the global scale, 0-255.
func (c *Controller) SetIntensity(v int) bool {
	if v < 0 || v > 255 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Intensity = uint8(v)
	return true
}

// SetSpeed sets the timing divisor, 0-15.
func (c *Controller) SetSpeed(v int) bool {
	if v < 0 || v > int(chip.MaxSpeed) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.Speed = uint8(v)
	return true
}

// SetFadeParams sets the four slope detention presets, each clamped to [0,5].
func (c *Controller) SetFadeParams(up1, up2, down1, down2 int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, v := range [4]int{up1, up2, down1, down2} {
		c.st.Slopes[i] = clampSlope(v)
	}
}

func clampSlope(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > int(chip.MaxSlopeStep) {
		return chip.MaxSlopeStep
	}
	return uint8(v)
}

// SetLowPower takes any byte value; only 1 selects low-power mode.
func (c *Controller) SetLowPower(v int) bool {
	if v < 0 || v > 255 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.LowPower = v == 1
	slog.Debug("controller: lowpower mode set", "value", v)
	return true
}

// SetPatternsDisabled suppresses (1) or allows (0) named patterns.
func (c *Controller) SetPatternsDisabled(v int) bool {
	if v != 0 && v != 1 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st.PatternsDisabled = v == 1
	return true
}

// Tunables returns a copy of the intensity state.
func (c *Controller) Tunables() chip.IntensityState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// DescribeFade classifies the fade flag.
func (c *Controller) DescribeFade() string {
	st := c.Tunables()
	if st.Fade {
		return "1 - LED fading is enabled"
	}
	return "0 - LED fading is disabled"
}

// DescribeIntensity classifies the global scale against the reference.
func (c *Controller) DescribeIntensity() string {
	v := int(c.Tunables().Intensity)
	ref := int(chip.IntensityReference)
	switch {
	case v == int(chip.IntensityPassthrough):
		return fmt.Sprintf("%d - LED intensity passthrough", v)
	case v == ref:
		return fmt.Sprintf("%d - LED intensity at reference", v)
	case v < ref:
		return fmt.Sprintf("%d - LED intensity darker by %d steps", v, ref-v)
	default:
		return fmt.Sprintf("%d - LED intensity brighter by %d steps", v, v-ref)
	}
}

// DescribeSpeed reports the timing divisor.
func (c *Controller) DescribeSpeed() string {
	v := c.Tunables().Speed
	if v == 0 {
		return "0 - LED slopes disabled, continuous light"
	}
	return fmt.Sprintf("%d - LED blinking/fading speed", v)
}

// DescribeSlope reports the four detention presets.
func (c *Controller) DescribeSlope() string {
	s := c.Tunables().Slopes
	return fmt.Sprintf("Slope up : (%d,%d) - Slope down (%d,%d)",
		s[chip.SlopeUp1], s[chip.SlopeUp2], s[chip.SlopeDown1], s[chip.SlopeDown2])
}

// DescribeLowPower reports the low-power flag.
func (c *Controller) DescribeLowPower() string {
	if c.Tunables().LowPower {
		return "1"
	}
	return "0"
}

// DescribePatternsDisabled reports the pattern suppression flag.
func (c *Controller) DescribePatternsDisabled() string {
	if c.Tunables().PatternsDisabled {
		return "1"
	}
	return "0"
}
