package models_test

import (
	"encoding/json"
	"testing"

	"github.com/micro-nova/an30259a/internal/models"
)

func TestAppError_JSON(t *testing.T) {
	appErr := models.ErrBus("commit failed")

	data, err := json.Marshal(appErr)
	if err != nil {
		t.Fatalf("json.Marshal(AppError): %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if m["error"] != "BUS_ERROR" {
		t.Errorf("error = %v, want BUS_ERROR", m["error"])
	}
	// Status field should NOT be in JSON (tagged json:"-")
	if _, ok := m["status"]; ok {
		t.Error("AppError JSON should not contain 'status' field")
	}
}

func TestAppError_ErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *models.AppError
		status int
		code   string
	}{
		{"NotFound", models.ErrNotFound("not found"), 404, "NOT_FOUND"},
		{"BadRequest", models.ErrBadRequest("bad request"), 400, "BAD_REQUEST"},
		{"Internal", models.ErrInternal("internal error"), 500, "INTERNAL"},
		{"Bus", models.ErrBus("nack"), 502, "BUS_ERROR"},
		{"Unavailable", models.ErrUnavailable("detached"), 503, "UNAVAILABLE"},
		{"Unauthorized", models.ErrUnauthorized("no key"), 401, "UNAUTHORIZED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Status != tc.status {
				t.Errorf("%s.Status = %d, want %d", tc.name, tc.err.Status, tc.status)
			}
			if tc.err.Code != tc.code {
				t.Errorf("%s.Code = %q, want %q", tc.name, tc.err.Code, tc.code)
			}
			if tc.err.Error() == "" {
				t.Errorf("%s.Error() is empty", tc.name)
			}
		})
	}
}

func TestAppError_WithField(t *testing.T) {
	base := models.ErrBadRequest("cannot parse")
	named := base.WithField("led_r/delay_on")
	if named.Field != "led_r/delay_on" || named.Code != models.CodeBadRequest || named.Status != 400 {
		t.Errorf("WithField = %+v", named)
	}
	if base.Field != "" {
		t.Error("WithField modified the receiver")
	}
}

func TestState_DeepCopy(t *testing.T) {
	s := models.State{
		Channels: []models.Channel{{Name: "led_r", Current: 0x28}, {Name: "led_g"}},
		Pattern:  "charging",
	}
	cp := s.DeepCopy()
	cp.Channels[0].Current = 0

	if s.Channels[0].Current != 0x28 {
		t.Error("DeepCopy shares the channel slice with the original")
	}
	if cp.Pattern != "charging" {
		t.Errorf("Pattern = %q, want charging", cp.Pattern)
	}
}

func TestState_ChannelLookup(t *testing.T) {
	s := models.State{Channels: []models.Channel{{Name: "led_r"}, {Name: "led_b"}}}
	if ch := s.Channel("led_b"); ch == nil || ch.Name != "led_b" {
		t.Errorf("Channel(led_b) = %v", ch)
	}
	if ch := s.Channel("led_w"); ch != nil {
		t.Errorf("Channel(led_w) = %v, want nil", ch)
	}
}

func TestBlinkRequest_JSON(t *testing.T) {
	var req models.BlinkRequest
	if err := json.Unmarshal([]byte(`{"color":"0xFF0000","on_ms":500,"off_ms":1500}`), &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if req.Color != "0xFF0000" || req.OnMs != 500 || req.OffMs != 1500 {
		t.Errorf("BlinkRequest = %+v", req)
	}
}
