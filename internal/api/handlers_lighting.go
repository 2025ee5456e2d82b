package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/models"
)

func parseColor(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#")
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > 0xFFFFFF {
		return 0, models.ErrBadRequest("color must be RRGGBB hex")
	}
	return uint32(v), nil
}

func (h *Handlers) blink(w http.ResponseWriter, r *http.Request) {
	var req models.BlinkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rgb, err := parseColor(req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.OnMs < 0 || req.OffMs < 0 {
		writeError(w, models.ErrBadRequest("on_ms and off_ms must not be negative"))
		return
	}
	if err := h.dev.BlinkRGB(r.Context(), rgb, req.OnMs, req.OffMs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.dev.State())
}

func (h *Handlers) triggerPattern(w http.ResponseWriter, r *http.Request) {
	var req models.PatternRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, ok := chip.ParsePattern(strings.TrimSpace(req.Pattern))
	if !ok {
		writeError(w, models.ErrBadRequest("unknown pattern "+req.Pattern))
		return
	}
	if err := h.dev.TriggerPattern(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.dev.State())
}

func (h *Handlers) getPatterns(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0)
	for _, p := range chip.Patterns() {
		names = append(names, p.String())
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *Handlers) getTunables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dev.State().Tunables)
}

// setTunables applies each field like its knob: out-of-range values are
// ignored (slopes are clamped). Only imax touches the bus.
func (h *Handlers) setTunables(w http.ResponseWriter, r *http.Request) {
	var upd models.TunablesUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeError(w, err)
		return
	}
	if upd.IMax != nil && (*upd.IMax < 0 || *upd.IMax > 3) {
		writeError(w, models.ErrBadRequest("imax must be 0-3"))
		return
	}
	if upd.Fade != nil {
		h.dev.SetFade(*upd.Fade)
	}
	if upd.Intensity != nil {
		h.dev.SetIntensity(*upd.Intensity)
	}
	if upd.Speed != nil {
		h.dev.SetSpeed(*upd.Speed)
	}
	if s := upd.Slopes; s != nil {
		h.dev.SetFadeParams(s[0], s[1], s[2], s[3])
	}
	if upd.LowPower != nil {
		h.dev.SetLowPower(*upd.LowPower)
	}
	if upd.PatternsDisabled != nil {
		h.dev.SetPatternsDisabled(*upd.PatternsDisabled)
	}
	if upd.IMax != nil {
		if err := h.dev.SetIMax(r.Context(), uint8(*upd.IMax)); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.dev.State().Tunables)
}
