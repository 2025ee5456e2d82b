// Command an30259ad drives an AN30259A RGB LED controller and exposes it over
// HTTP, a knob directory and an optional serial console.
// Run with --mock to use a simulated chip (no I2C device required).
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"github.com/micro-nova/an30259a/internal/api"
	"github.com/micro-nova/an30259a/internal/auth"
	"github.com/micro-nova/an30259a/internal/config"
	"github.com/micro-nova/an30259a/internal/console"
	"github.com/micro-nova/an30259a/internal/controller"
	"github.com/micro-nova/an30259a/internal/events"
	"github.com/micro-nova/an30259a/internal/hardware"
	"github.com/micro-nova/an30259a/internal/identity"
	"github.com/micro-nova/an30259a/internal/knobs"
	"github.com/micro-nova/an30259a/internal/logging"
	"github.com/micro-nova/an30259a/internal/zeroconf"
)

func main() {
	var (
		cfgPath = flag.String("config", "/etc/an30259a/an30259a.toml", "path to the TOML configuration file")
		mock    = flag.Bool("mock", false, "use the mock bus driver (no I2C device required)")
		addr    = flag.String("addr", "", "HTTP listen address (overrides the config file)")
		level   = flag.String("level", "", "log level: debug, info, warn, error (overrides the config file)")
		journal = flag.Bool("journal", false, "log to the systemd journal")
	)
	flag.Parse()

	// Bootstrap logging so config warnings are visible.
	slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, slog.LevelInfo, *journal)))

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("config load failed", "path", *cfgPath, "err", err)
		os.Exit(1)
	}
	if *mock {
		cfg.Bus.Driver = config.DriverMock
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *level != "" {
		cfg.Logging.Level = *level
	}
	slog.SetDefault(slog.New(logging.NewHandler(os.Stderr,
		logging.ParseLevel(cfg.Logging.Level), *journal || cfg.Logging.Journal)))

	if err := run(cfg); err != nil {
		slog.Error("an30259ad exiting", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Static) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Bus.EnableGPIO != "" && cfg.Bus.Driver != config.DriverMock {
		if err := hardware.PowerEnable(cfg.Bus.EnableGPIO); err != nil {
			return err
		}
		defer func() {
			if err := hardware.PowerDisable(cfg.Bus.EnableGPIO); err != nil {
				slog.Warn("gpio: power disable failed", "err", err)
			}
		}()
	}

	hw, busName := newDriver(cfg.Bus)
	if err := hw.Init(ctx); err != nil {
		return err
	}
	defer func() {
		if err := hw.Close(); err != nil {
			slog.Warn("bus close failed", "err", err)
		}
	}()

	bus := events.NewBus()
	info := identity.DeviceInfo(busName, cfg.Bus.Address, !hw.IsReal())
	ctrl, err := controller.New(ctx, hw, controller.Options{
		Currents: cfg.Currents(),
		Offsets:  cfg.Offsets(),
		Bus:      bus,
		Info:     info,
	})
	if err != nil {
		return err
	}
	slog.Info("an30259a attached", "bus", busName, "addr", info.Addr, "mock", info.Mock, "version", info.Version)

	set := knobs.New(ctrl)

	authSvc, err := auth.NewService(cfg.HTTP.APIKeysFile)
	if err != nil {
		_ = ctrl.Close(context.Background())
		return err
	}
	defer authSvc.Close()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewRouter(ctrl, set, authSvc, bus),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutCancel()
		return srv.Shutdown(shutCtx)
	})

	if cfg.Knobs.Dir != "" {
		w, err := knobs.NewWatcher(cfg.Knobs.Dir, set)
		if err != nil {
			slog.Warn("knobs: directory disabled", "dir", cfg.Knobs.Dir, "err", err)
		} else {
			g.Go(func() error {
				defer w.Close()
				return w.Run(gctx)
			})
		}
	}

	if cfg.Console.Port != "" {
		port, err := console.OpenSerial(cfg.Console.Port, cfg.Console.Baud)
		if err != nil {
			slog.Warn("console: disabled", "port", cfg.Console.Port, "err", err)
		} else {
			g.Go(func() error {
				go func() {
					// Unblocks the scanner in Serve.
					<-gctx.Done()
					port.Close()
				}()
				return console.New(port, set, ctrl, bus).Serve(gctx)
			})
		}
	}

	if cfg.Zeroconf.Enabled {
		zc := zeroconf.New(identity.InstanceName(cfg.Zeroconf.Name), listenPort(cfg.HTTP.Addr), info)
		g.Go(func() error {
			if err := zc.Start(gctx); err != nil {
				slog.Warn("zeroconf failed", "err", err)
			}
			return nil
		})
	}

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		slog.Warn("sd_notify failed", "err", err)
	} else if ok {
		slog.Debug("sd_notify: ready")
	}

	err = g.Wait()
	slog.Info("shutting down...")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if cerr := ctrl.Close(closeCtx); cerr != nil {
		slog.Warn("controller close failed", "err", cerr)
	}
	slog.Info("shutdown complete")
	return err
}

// newDriver builds the bus driver named in cfg and a label for it.
func newDriver(cfg config.Bus) (hardware.Driver, string) {
	switch cfg.Driver {
	case config.DriverPeriph:
		slog.Info("using periph.io I2C driver", "bus", cfg.Name, "addr", cfg.Address)
		name := cfg.Name
		if name == "" {
			name = "periph"
		}
		return hardware.NewPeriph(cfg.Name, cfg.Address), name
	case config.DriverMock:
		slog.Info("using mock bus driver")
		return hardware.NewMock(), "mock"
	default:
		slog.Info("using raw I2C driver", "path", cfg.Path, "addr", cfg.Address)
		return hardware.NewI2C(cfg.Path, cfg.Address), cfg.Path
	}
}

// listenPort extracts the port from a listen address, defaulting to 80.
func listenPort(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 80
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return 80
	}
	return n
}
