// Package registers models the AN30259A register file: the symbolic register
// map and a typed shadow Image whose accessors do all the bit-field masking.
package registers

import "github.com/micro-nova/an30259a/internal/hardware"

// Register addresses from the AN30259A datasheet.
const (
	RegSReset hardware.Register = 0x00 // Soft reset (write 1)
	RegLEDOn  hardware.Register = 0x01 // [2:0]=enable per channel, [6:4]=slope mode per channel
	RegSel    hardware.Register = 0x02 // [7:6]=IMAX current range

	RegLED1CC hardware.Register = 0x03 // Current code, channel R
	RegLED2CC hardware.Register = 0x04
	RegLED3CC hardware.Register = 0x05

	RegLED1SLP hardware.Register = 0x06 // Slope total times: [7:4]=phase 2, [3:0]=phase 1
	RegLED2SLP hardware.Register = 0x07
	RegLED3SLP hardware.Register = 0x08

	RegLED1CNT1 hardware.Register = 0x09 // [7:4]=duty max, [3:0]=duty mid
	RegLED1CNT2 hardware.Register = 0x0A // [7:4]=start delay, [3:0]=duty min
	RegLED1CNT3 hardware.Register = 0x0B // [7:4]=dt2, [3:0]=dt1
	RegLED1CNT4 hardware.Register = 0x0C // [7:4]=dt4, [3:0]=dt3

	RegLED2CNT1 hardware.Register = 0x0D
	RegLED2CNT2 hardware.Register = 0x0E
	RegLED2CNT3 hardware.Register = 0x0F
	RegLED2CNT4 hardware.Register = 0x10

	RegLED3CNT1 hardware.Register = 0x11
	RegLED3CNT2 hardware.Register = 0x12
	RegLED3CNT3 hardware.Register = 0x13
	RegLED3CNT4 hardware.Register = 0x14

	RegMax hardware.Register = 0x15 // one past the last register
)

// Bit masks and flags.
const (
	MaskIMax  byte = 0xC0
	MaskDelay byte = 0xF0
	ShiftIMax      = 6

	SResetFlag byte = 0x01
	LEDOnBit   byte = 0x01
	SlopeBit   byte = 0x10

	// AutoIncrement is ORed into the register address for multi-byte transfers.
	AutoIncrement byte = 0x80
)

// Size is the number of registers in the shadow image.
const Size = int(RegMax)

// ConfigBlockLen is the length of the block committed before the enable byte.
const ConfigBlockLen = int(RegMax - RegSel)

// Channel identifies one LED current-driver lane.
type Channel uint8

const (
	ChannelR Channel = iota
	ChannelG
	ChannelB
)

// NumChannels is the number of LED lanes on the chip.
const NumChannels = 3

// Channels lists every channel in register order.
var Channels = [NumChannels]Channel{ChannelR, ChannelG, ChannelB}

// Valid reports whether ch names one of the three lanes.
func (ch Channel) Valid() bool { return ch < NumChannels }

func (ch Channel) String() string {
	switch ch {
	case ChannelR:
		return "led_r"
	case ChannelG:
		return "led_g"
	case ChannelB:
		return "led_b"
	default:
		return "unknown"
	}
}

// ParseChannel maps a channel name ("led_r", "r", "red") to a Channel.
func ParseChannel(name string) (Channel, bool) {
	switch name {
	case "led_r", "r", "red":
		return ChannelR, true
	case "led_g", "g", "green":
		return ChannelG, true
	case "led_b", "b", "blue":
		return ChannelB, true
	}
	return 0, false
}

// CurrentReg returns the current-code register for ch.
func CurrentReg(ch Channel) hardware.Register { return RegLED1CC + hardware.Register(ch) }

// SlopeReg returns the slope total-time register for ch.
func SlopeReg(ch Channel) hardware.Register { return RegLED1SLP + hardware.Register(ch) }

// CountReg returns the n-th (1-4) slope control register for ch.
func CountReg(ch Channel, n int) hardware.Register {
	return RegLED1CNT1 + hardware.Register(ch)*4 + hardware.Register(n-1)
}

// PackNibbles packs two 4-bit values into a byte. Both inputs are truncated
// to their low 4 bits.
func PackNibbles(hi, lo byte) byte {
	return (hi&0x0F)<<4 | lo&0x0F
}

// UnpackNibbles splits a byte into its high and low nibbles.
func UnpackNibbles(b byte) (hi, lo byte) {
	return b >> 4, b & 0x0F
}
