// Package identity describes the running daemon: version, host and the
// attached device.
package identity

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/micro-nova/an30259a/internal/models"
)

// DefaultVersion is the fallback when no version was stamped into the binary.
const DefaultVersion = "0.1.0-dev"

// Version is set at link time:
//
//	go build -ldflags "-X github.com/micro-nova/an30259a/internal/identity.Version=1.2.0"
var Version string

// GetVersion returns the stamped version, then the module version from the
// build info, then DefaultVersion.
func GetVersion() string {
	if Version != "" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return DefaultVersion
}

// GetHostname returns the system hostname.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "an30259a"
	}
	return h
}

// InstanceName returns the mDNS instance name: base if set, otherwise
// "an30259a-<hostname>".
func InstanceName(base string) string {
	if base != "" {
		return base
	}
	return "an30259a-" + GetHostname()
}

// DeviceInfo builds the Info block reported by the API for a device at addr
// on bus.
func DeviceInfo(bus string, addr uint16, mock bool) models.Info {
	return models.Info{
		Version: GetVersion(),
		Bus:     bus,
		Addr:    fmt.Sprintf("0x%02x", addr),
		Mock:    mock,
	}
}
