package registers

import (
	"fmt"

	"github.com/micro-nova/an30259a/internal/hardware"
)

// Image is the in-memory shadow of the chip's 21 registers. All mutation goes
// through the typed setters below; Load is the only whole-image write.
//
// Image is not safe for concurrent use. The owner serialises access.
type Image struct {
	regs [Size]byte
}

// Load replaces the whole image, e.g. with a block read taken at attach.
func (img *Image) Load(b []byte) error {
	if len(b) != Size {
		return fmt.Errorf("registers: image load: got %d bytes, want %d", len(b), Size)
	}
	copy(img.regs[:], b)
	return nil
}

// Bytes returns a copy of the raw register file.
func (img *Image) Bytes() [Size]byte { return img.regs }

// Reg returns the raw value of a single register.
func (img *Image) Reg(r hardware.Register) byte {
	if int(r) >= Size {
		return 0
	}
	return img.regs[r]
}

// ConfigBlock returns a copy of every register from SEL to the end of the map.
func (img *Image) ConfigBlock() []byte {
	out := make([]byte, ConfigBlockLen)
	copy(out, img.regs[RegSel:])
	return out
}

// EnableByte returns the LEDON register.
func (img *Image) EnableByte() byte { return img.regs[RegLEDOn] }

func (img *Image) setBits(r hardware.Register, bits byte, on bool) {
	if on {
		img.regs[r] |= bits
	} else {
		img.regs[r] &^= bits
	}
}

// SetEnabled sets or clears the channel's enable bit.
func (img *Image) SetEnabled(ch Channel, on bool) {
	if !ch.Valid() {
		return
	}
	img.setBits(RegLEDOn, LEDOnBit<<ch, on)
}

// Enabled reports the channel's enable bit.
func (img *Image) Enabled(ch Channel) bool {
	return ch.Valid() && img.regs[RegLEDOn]&(LEDOnBit<<ch) != 0
}

// SetSlopeMode sets or clears the channel's slope-mode bit.
func (img *Image) SetSlopeMode(ch Channel, on bool) {
	if !ch.Valid() {
		return
	}
	img.setBits(RegLEDOn, SlopeBit<<ch, on)
}

// SlopeMode reports the channel's slope-mode bit.
func (img *Image) SlopeMode(ch Channel) bool {
	return ch.Valid() && img.regs[RegLEDOn]&(SlopeBit<<ch) != 0
}

// SetCurrent writes the channel's current-code byte.
func (img *Image) SetCurrent(ch Channel, code byte) {
	if !ch.Valid() {
		return
	}
	img.regs[CurrentReg(ch)] = code
}

// Current returns the channel's current-code byte.
func (img *Image) Current(ch Channel) byte {
	if !ch.Valid() {
		return 0
	}
	return img.regs[CurrentReg(ch)]
}

// SetDuty writes the duty max/mid (CNT1) and duty min (low nibble of CNT2).
// The start delay in the high nibble of CNT2 is preserved.
func (img *Image) SetDuty(ch Channel, dutyMax, dutyMid, dutyMin byte) {
	if !ch.Valid() {
		return
	}
	img.regs[CountReg(ch, 1)] = PackNibbles(dutyMax, dutyMid)
	cnt2 := CountReg(ch, 2)
	img.regs[cnt2] = img.regs[cnt2]&MaskDelay | dutyMin&0x0F
}

// Duty returns the channel's duty max, mid and min nibbles.
func (img *Image) Duty(ch Channel) (dutyMax, dutyMid, dutyMin byte) {
	if !ch.Valid() {
		return 0, 0, 0
	}
	dutyMax, dutyMid = UnpackNibbles(img.regs[CountReg(ch, 1)])
	_, dutyMin = UnpackNibbles(img.regs[CountReg(ch, 2)])
	return dutyMax, dutyMid, dutyMin
}

// SetDelay writes the start-delay nibble (units of 0.5s).
func (img *Image) SetDelay(ch Channel, delay byte) {
	if !ch.Valid() {
		return
	}
	cnt2 := CountReg(ch, 2)
	img.regs[cnt2] = img.regs[cnt2]&^MaskDelay | (delay&0x0F)<<4
}

// Delay returns the start-delay nibble.
func (img *Image) Delay(ch Channel) byte {
	if !ch.Valid() {
		return 0
	}
	d, _ := UnpackNibbles(img.regs[CountReg(ch, 2)])
	return d
}

// SetSlopeTimes writes the two slope phase totals (units of 0.5s).
func (img *Image) SetSlopeTimes(ch Channel, phase1, phase2 byte) {
	if !ch.Valid() {
		return
	}
	img.regs[SlopeReg(ch)] = PackNibbles(phase2, phase1)
}

// SlopeTimes returns the two slope phase totals.
func (img *Image) SlopeTimes(ch Channel) (phase1, phase2 byte) {
	if !ch.Valid() {
		return 0, 0
	}
	phase2, phase1 = UnpackNibbles(img.regs[SlopeReg(ch)])
	return phase1, phase2
}

// SetTransitions writes the four per-step detention times (units of 4ms).
func (img *Image) SetTransitions(ch Channel, t1, t2, t3, t4 byte) {
	if !ch.Valid() {
		return
	}
	img.regs[CountReg(ch, 3)] = PackNibbles(t2, t1)
	img.regs[CountReg(ch, 4)] = PackNibbles(t4, t3)
}

// Transitions returns the four per-step detention times.
func (img *Image) Transitions(ch Channel) (t1, t2, t3, t4 byte) {
	if !ch.Valid() {
		return 0, 0, 0, 0
	}
	t2, t1 = UnpackNibbles(img.regs[CountReg(ch, 3)])
	t4, t3 = UnpackNibbles(img.regs[CountReg(ch, 4)])
	return t1, t2, t3, t4
}

// SetIMax writes the 2-bit current range selector in SEL.
func (img *Image) SetIMax(imax byte) {
	img.regs[RegSel] = img.regs[RegSel]&^MaskIMax | (imax<<ShiftIMax)&MaskIMax
}

// IMax returns the current range selector.
func (img *Image) IMax() byte {
	return (img.regs[RegSel] & MaskIMax) >> ShiftIMax
}
