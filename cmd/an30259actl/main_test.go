package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/micro-nova/an30259a/internal/api"
	"github.com/micro-nova/an30259a/internal/auth"
	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/controller"
	"github.com/micro-nova/an30259a/internal/events"
	"github.com/micro-nova/an30259a/internal/hardware"
	"github.com/micro-nova/an30259a/internal/knobs"
	"github.com/micro-nova/an30259a/internal/models"
	"github.com/micro-nova/an30259a/internal/registers"
)

func newDaemon(t *testing.T) (*httptest.Server, *hardware.Mock) {
	t.Helper()
	hw := hardware.NewMock()
	hw.SetDelay(0)
	if err := hw.Init(context.Background()); err != nil {
		t.Fatalf("hw.Init: %v", err)
	}
	bus := events.NewBus()
	ctrl, err := controller.New(context.Background(), hw, controller.Options{Currents: chip.DefaultCurrents, Bus: bus})
	if err != nil {
		t.Fatalf("controller.New: %v", err)
	}
	authSvc, err := auth.NewService("")
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}
	srv := httptest.NewServer(api.NewRouter(ctrl, knobs.New(ctrl), authSvc, bus))
	t.Cleanup(func() {
		srv.Close()
		authSvc.Close()
		_ = ctrl.Close(context.Background())
	})
	return srv, hw
}

// run executes the CLI against srv and returns its stdout.
func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--addr", srv.URL}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPatternCommand(t *testing.T) {
	srv, hw := newDaemon(t)

	out, err := run(t, srv, "pattern", "charging")
	if err != nil {
		t.Fatalf("pattern: %v", err)
	}
	if strings.TrimSpace(out) != "charging" {
		t.Errorf("output = %q", out)
	}
	if hw.GetReg(registers.RegLEDOn) == 0 {
		t.Error("charging pattern left every channel off")
	}

	out, err = run(t, srv, "pattern", "--list")
	if err != nil {
		t.Fatalf("pattern --list: %v", err)
	}
	if !strings.Contains(out, "6 powering") {
		t.Errorf("pattern list = %q", out)
	}

	_, err = run(t, srv, "pattern", "disco")
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "BAD_REQUEST" {
		t.Errorf("pattern disco err = %v, want BAD_REQUEST", err)
	}
}

func TestKnobCommands(t *testing.T) {
	srv, _ := newDaemon(t)

	if _, err := run(t, srv, "knob", "set", "led_r/delay_on", "0x200"); err != nil {
		t.Fatalf("knob set: %v", err)
	}
	out, err := run(t, srv, "knob", "get", "led_r/delay_on")
	if err != nil {
		t.Fatalf("knob get: %v", err)
	}
	if strings.TrimSpace(out) != "512" {
		t.Errorf("delay_on = %q, want 512", out)
	}

	out, err = run(t, srv, "knob", "list")
	if err != nil {
		t.Fatalf("knob list: %v", err)
	}
	if !strings.Contains(out, "led_intensity") {
		t.Errorf("knob list missing led_intensity:\n%s", out)
	}
}

func TestBlinkAndChannelCommands(t *testing.T) {
	srv, hw := newDaemon(t)

	if _, err := run(t, srv, "blink", "0x00FF00", "--on", "500", "--off", "500"); err != nil {
		t.Fatalf("blink: %v", err)
	}
	if got := hw.GetReg(registers.RegLEDOn); got != 0x22 {
		t.Errorf("LEDON = 0x%02X, want 0x22", got)
	}

	out, err := run(t, srv, "channel", "b", "--raw", "200")
	if err != nil {
		t.Fatalf("channel --raw: %v", err)
	}
	if !strings.Contains(out, `"current": 200`) {
		t.Errorf("channel output = %s", out)
	}

	if _, err := run(t, srv, "channel", "b", "--raw", "300"); err == nil {
		t.Error("raw 300 accepted")
	}
}

func TestTunablesCommand(t *testing.T) {
	srv, hw := newDaemon(t)

	out, err := run(t, srv, "tunables", "--imax", "2", "--slopes", "1,2,3,4")
	if err != nil {
		t.Fatalf("tunables: %v", err)
	}
	if got := hw.GetReg(registers.RegSel); got != 0x80 {
		t.Errorf("SEL = 0x%02X, want 0x80", got)
	}
	if !strings.Contains(out, `"slopes"`) {
		t.Errorf("tunables output = %s", out)
	}

	if _, err := run(t, srv, "tunables", "--slopes", "1,2"); err == nil {
		t.Error("two slopes accepted")
	}
}

func TestKnobPath(t *testing.T) {
	if got := knobPath("led_r/brightness"); got != "led_r/brightness" {
		t.Errorf("knobPath = %q", got)
	}
	if got := knobPath("a b"); got != "a%20b" {
		t.Errorf("knobPath(a b) = %q", got)
	}
}
