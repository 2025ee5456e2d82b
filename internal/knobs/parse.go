package knobs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/micro-nova/an30259a/internal/chip"
)

var errEmpty = errors.New("empty input")

// ParseError reports knob input that could not be parsed.
type ParseError struct {
	Knob  string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("knobs: %s: cannot parse %q: %v", e.Knob, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// leadingInts parses up to n whitespace-separated decimals from the front of
// s and stops at the first field that is not one. It returns what it got.
func leadingInts(s string, n int) []int {
	var out []int
	for _, f := range strings.Fields(s) {
		if len(out) == n {
			break
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		out = append(out, v)
	}
	return out
}

// parseDecimal reads a single leading decimal.
func parseDecimal(s string) (int, error) {
	v := leadingInts(s, 1)
	if len(v) == 0 {
		return 0, errEmptyOr(s)
	}
	return v[0], nil
}

func errEmptyOr(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmpty
	}
	return errors.New("not a decimal")
}

// parsePattern reads "<mode> [<extra>]". The mode may also be a pattern name.
// A numeric mode is read up to its first non-digit, so "3abc" is mode 3.
// The optional second value is accepted and ignored.
func parsePattern(s string) (chip.Pattern, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return 0, errEmpty
	}
	if p, ok := chip.ParsePattern(f[0]); ok {
		return p, nil
	}
	n, ok := leadingDigits(f[0])
	if !ok {
		return 0, fmt.Errorf("unknown pattern %q", f[0])
	}
	return chip.Pattern(n), nil
}

// leadingDigits reads an optionally signed decimal prefix of s.
func leadingDigits(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseBlink reads "0xRRGGBB [on_ms [off_ms]]". Missing intervals read as 0.
func parseBlink(s string) (rgb uint32, onMs, offMs int, err error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return 0, 0, 0, errEmpty
	}
	hex, ok := strings.CutPrefix(strings.ToLower(f[0]), "0x")
	if !ok {
		return 0, 0, 0, errors.New("color must start with 0x")
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	ms := leadingInts(strings.Join(f[1:], " "), 2)
	if len(ms) > 0 {
		onMs = max(ms[0], 0)
	}
	if len(ms) > 1 {
		offMs = max(ms[1], 0)
	}
	return uint32(v), onMs, offMs, nil
}

// parseSlope reads four decimals: up1 up2 down1 down2.
func parseSlope(s string) ([4]int, error) {
	var out [4]int
	v := leadingInts(s, 4)
	if len(v) != 4 {
		return out, fmt.Errorf("want 4 values, got %d", len(v))
	}
	copy(out[:], v)
	return out, nil
}

// parseByte reads an unsigned byte with the base taken from its prefix
// (0x hex, leading 0 octal, decimal otherwise).
func parseByte(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

// parseHexByte reads a hex value with or without a 0x prefix, truncated to a byte.
func parseHexByte(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	if h, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		s = h
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}

// parseUnsigned reads a non-negative integer with the base taken from its prefix.
func parseUnsigned(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New("negative value")
	}
	return int(v), nil
}

// parseLevel reads a decimal brightness.
func parseLevel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmpty
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(min(v, chip.MaxLevel)), nil
}
