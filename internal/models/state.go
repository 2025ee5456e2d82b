// Package models defines the JSON shapes exchanged with API clients and
// published on the event bus.
package models

// Channel is the observable state of one LED lane.
type Channel struct {
	Name       string `json:"name"` // "led_r" | "led_g" | "led_b"
	Enabled    bool   `json:"enabled"`
	SlopeMode  bool   `json:"slope_mode"`
	Current    int    `json:"current"`    // committed current code, offset included
	Brightness int    `json:"brightness"` // last requested level, 0-255
	DelayOnMs  int    `json:"delay_on"`
	DelayOffMs int    `json:"delay_off"`
}

// Tunables mirrors the intensity state of the device.
type Tunables struct {
	Fade             bool   `json:"fade"`
	Intensity        int    `json:"intensity"`
	Speed            int    `json:"speed"`
	Slopes           [4]int `json:"slopes"` // up1, up2, down1, down2
	LowPower         bool   `json:"lowpower"`
	PatternsDisabled bool   `json:"patterns_disabled"`
	IMax             int    `json:"imax"`
}

// Info describes the attached device.
type Info struct {
	Version  string `json:"version"`
	Bus      string `json:"bus"`
	Addr     string `json:"addr"`
	Mock     bool   `json:"mock"`
	Attached bool   `json:"attached"`
}

// State is the complete device state returned by GET /api/state and
// published after every successful commit.
type State struct {
	Channels  []Channel `json:"channels"`
	Tunables  Tunables  `json:"tunables"`
	Pattern   string    `json:"pattern"`
	Registers string    `json:"registers"` // shadow image, hex
	Commits   uint64    `json:"commits"`
	Info      Info      `json:"info"`
}

// DeepCopy returns a copy that shares no slices with s.
func (s State) DeepCopy() State {
	next := s
	next.Channels = make([]Channel, len(s.Channels))
	copy(next.Channels, s.Channels)
	return next
}

// Channel returns the named channel, or nil.
func (s *State) Channel(name string) *Channel {
	for i := range s.Channels {
		if s.Channels[i].Name == name {
			return &s.Channels[i]
		}
	}
	return nil
}
