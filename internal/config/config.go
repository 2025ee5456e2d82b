// Package config loads the daemon's static configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/hardware"
)

// Bus driver names.
const (
	DriverI2C    = "i2c"
	DriverPeriph = "periph"
	DriverMock   = "mock"
)

// Chip holds the board's reference currents. Unset values fall back to the
// chip defaults with a warning.
type Chip struct {
	DefaultCurrent  *uint8  `toml:"default_current"`
	LowPowerCurrent *uint8  `toml:"lowpower_current"`
	OffsetCurrent   *uint32 `toml:"offset_current"` // packed 0xRRGGBB
}

// Bus selects and addresses the control bus.
type Bus struct {
	Driver     string `toml:"driver"`
	Path       string `toml:"path"` // i2c: device node
	Name       string `toml:"name"` // periph: bus name, "" for the first bus
	Address    uint16 `toml:"address"`
	EnableGPIO string `toml:"enable_gpio"` // optional power-enable pin
}

// HTTP configures the REST surface.
type HTTP struct {
	Addr        string `toml:"addr"`
	APIKeysFile string `toml:"api_keys_file"`
}

// Knobs configures the knob directory.
type Knobs struct {
	Dir string `toml:"dir"`
}

// Console configures the serial console.
type Console struct {
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
}

// Zeroconf configures mDNS advertisement of the HTTP surface.
type Zeroconf struct {
	Enabled bool   `toml:"enabled"`
	Name    string `toml:"name"`
}

// Logging configures the log handler.
type Logging struct {
	Level   string `toml:"level"`
	Journal bool   `toml:"journal"`
}

// Static is the whole configuration file.
type Static struct {
	Chip     Chip     `toml:"chip"`
	Bus      Bus      `toml:"bus"`
	HTTP     HTTP     `toml:"http"`
	Knobs    Knobs    `toml:"knobs"`
	Console  Console  `toml:"console"`
	Zeroconf Zeroconf `toml:"zeroconf"`
	Logging  Logging  `toml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() Static {
	return Static{
		Bus: Bus{
			Driver:  DriverI2C,
			Path:    "/dev/i2c-1",
			Address: hardware.DefaultAddr,
		},
		HTTP:     HTTP{Addr: ":8259"},
		Console:  Console{Baud: 115200},
		Zeroconf: Zeroconf{Enabled: true, Name: "an30259a"},
		Logging:  Logging{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Static, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("config: file not found, using defaults", "path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks the fields that have a closed set of values.
func (s *Static) Validate() error {
	switch s.Bus.Driver {
	case DriverI2C, DriverPeriph, DriverMock:
	default:
		return fmt.Errorf("config: unknown bus driver %q", s.Bus.Driver)
	}
	if s.Bus.Address == 0 || s.Bus.Address > 0x7F {
		return fmt.Errorf("config: bus address 0x%X out of range", s.Bus.Address)
	}
	if s.Console.Port != "" && s.Console.Baud <= 0 {
		return fmt.Errorf("config: console baud %d", s.Console.Baud)
	}
	return nil
}

// Currents returns the reference currents, warning for each one not set.
func (s *Static) Currents() chip.Currents {
	c := chip.DefaultCurrents
	if s.Chip.DefaultCurrent != nil {
		c.Default = *s.Chip.DefaultCurrent
	} else {
		slog.Warn("config: default_current not set", "using", c.Default)
	}
	if s.Chip.LowPowerCurrent != nil {
		c.LowPower = *s.Chip.LowPowerCurrent
	} else {
		slog.Warn("config: lowpower_current not set", "using", c.LowPower)
	}
	return c
}

// Offsets returns the per-channel calibration, zero when not set.
func (s *Static) Offsets() chip.Offsets {
	if s.Chip.OffsetCurrent == nil {
		slog.Warn("config: offset_current not set", "using", 0)
		return chip.Offsets{}
	}
	return chip.OffsetsFromPacked(*s.Chip.OffsetCurrent)
}
