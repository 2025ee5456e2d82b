package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

type sent struct {
	msg    string
	pri    journal.Priority
	fields map[string]string
}

func captureHandler(level slog.Level) (*JournalHandler, *[]sent) {
	var out []sent
	h := NewJournalHandler(level)
	h.send = func(msg string, pri journal.Priority, fields map[string]string) error {
		out = append(out, sent{msg, pri, fields})
		return nil
	}
	return h, &out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_TextFallback(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, slog.LevelInfo, false)
	slog.New(h).Info("controller: attached", "imax", 0)
	if !strings.Contains(buf.String(), "controller: attached") {
		t.Errorf("text handler output = %q", buf.String())
	}
}

func TestJournalHandler_Fields(t *testing.T) {
	h, out := captureHandler(slog.LevelDebug)
	log := slog.New(h).With("channel", "led_r").WithGroup("bus")
	log.Warn("commit failed", "reg", 0x82, "ok", false, slog.Group("retry", "n", uint64(2)))

	if len(*out) != 1 {
		t.Fatalf("sent %d records, want 1", len(*out))
	}
	got := (*out)[0]
	if got.msg != "commit failed" || got.pri != journal.PriWarning {
		t.Errorf("msg/pri = %q/%d", got.msg, got.pri)
	}
	want := map[string]string{
		"SYSLOG_IDENTIFIER": "an30259a",
		"CHANNEL":           "led_r",
		"BUS_REG":           "130",
		"BUS_OK":            "false",
		"BUS_RETRY_N":       "2",
	}
	for k, v := range want {
		if got.fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, got.fields[k], v)
		}
	}
}

func TestJournalHandler_Level(t *testing.T) {
	h, out := captureHandler(slog.LevelWarn)
	log := slog.New(h)
	log.Info("dropped")
	log.Error("kept", "at", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	if len(*out) != 1 || (*out)[0].pri != journal.PriErr {
		t.Fatalf("records = %+v, want one error", *out)
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug enabled at warn level")
	}
	if got := (*out)[0].fields["AT"]; got != "2024-01-02T03:04:05.000Z" {
		t.Errorf("AT = %q", got)
	}
}
