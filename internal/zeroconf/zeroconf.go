// Package zeroconf advertises the LED controller's HTTP API over mDNS/DNS-SD
// so clients on the LAN can find it without configuration.
package zeroconf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grandcat/zeroconf"

	"github.com/micro-nova/an30259a/internal/models"
)

const serviceType = "_http._tcp"

// Service manages mDNS service registration.
type Service struct {
	name string // instance name, e.g. "an30259a"
	port int
	txt  []string
}

// New creates a Service advertising port under name. info fills the TXT
// records.
func New(name string, port int, info models.Info) *Service {
	return &Service{
		name: name,
		port: port,
		txt:  TXT(info),
	}
}

// TXT builds the TXT records describing the device.
func TXT(info models.Info) []string {
	txt := []string{"path=/api", "model=AN30259A"}
	if info.Version != "" {
		txt = append(txt, "version="+info.Version)
	}
	if info.Bus != "" {
		txt = append(txt, "bus="+info.Bus)
	}
	if info.Addr != "" {
		txt = append(txt, "addr="+info.Addr)
	}
	if info.Mock {
		txt = append(txt, "mock=1")
	}
	return txt
}

// Start registers the mDNS service and blocks until ctx is cancelled, at which
// point it shuts down the server cleanly.
func (s *Service) Start(ctx context.Context) error {
	server, err := zeroconf.Register(
		s.name,      // instance name
		serviceType, // service type
		"local.",    // domain
		s.port,      // port
		s.txt,       // TXT records
		nil,         // ifaces: nil means all interfaces
	)
	if err != nil {
		return fmt.Errorf("zeroconf register: %w", err)
	}
	slog.Info("zeroconf: registered mDNS service",
		"name", s.name,
		"port", s.port,
		"txt", s.txt,
	)

	<-ctx.Done()

	server.Shutdown()
	slog.Info("zeroconf: mDNS service unregistered")
	return nil
}
