package models

// ChannelUpdate is the PATCH body for a single channel.
type ChannelUpdate struct {
	Brightness *int  `json:"brightness,omitempty"`
	DelayOnMs  *int  `json:"delay_on,omitempty"`
	DelayOffMs *int  `json:"delay_off,omitempty"`
	Blink      *bool `json:"blink,omitempty"`
}

// BlinkRequest is the POST body for an RGB blink across all three channels.
type BlinkRequest struct {
	Color string `json:"color"` // "0xRRGGBB" or "RRGGBB"
	OnMs  int    `json:"on_ms"`
	OffMs int    `json:"off_ms"`
}

// PatternRequest is the POST body for triggering a named pattern.
// Pattern accepts a name ("powering") or an index ("6").
type PatternRequest struct {
	Pattern string `json:"pattern"`
}

// TunablesUpdate is the PATCH body for the intensity state. Each field is
// validated like its knob: out-of-range values are ignored or clamped.
type TunablesUpdate struct {
	Fade             *int    `json:"fade,omitempty"`
	Intensity        *int    `json:"intensity,omitempty"`
	Speed            *int    `json:"speed,omitempty"`
	Slopes           *[4]int `json:"slopes,omitempty"`
	LowPower         *int    `json:"lowpower,omitempty"`
	PatternsDisabled *int    `json:"patterns_disabled,omitempty"`
	IMax             *int    `json:"imax,omitempty"`
}

// KnobValue is the JSON form of a text knob read or write.
type KnobValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
