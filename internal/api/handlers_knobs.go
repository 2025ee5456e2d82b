package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/micro-nova/an30259a/internal/models"
)

const maxKnobBody = 4096

func (h *Handlers) getKnobs(w http.ResponseWriter, r *http.Request) {
	out := make([]models.KnobValue, 0)
	for _, name := range h.knobs.Names() {
		kv := models.KnobValue{Name: name}
		if h.knobs.Readable(name) {
			kv.Value, _ = h.knobs.Read(name)
		}
		out = append(out, kv)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getKnob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	v, err := h.knobs.Read(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.KnobValue{Name: name, Value: v})
}

// setKnob takes the value as the raw request body, exactly as it would be
// written to the knob file. A JSON body {"value": "..."} is also accepted.
func (h *Handlers) setKnob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	var value string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var kv models.KnobValue
		if err := decodeBody(r, &kv); err != nil {
			writeError(w, err)
			return
		}
		value = kv.Value
	} else {
		b, err := io.ReadAll(io.LimitReader(r.Body, maxKnobBody))
		if err != nil {
			writeError(w, models.ErrBadRequest("read body: "+err.Error()))
			return
		}
		value = string(b)
	}

	if err := h.knobs.Write(r.Context(), name, strings.TrimSpace(value)); err != nil {
		writeError(w, err)
		return
	}
	resp := models.KnobValue{Name: name}
	if h.knobs.Readable(name) {
		resp.Value, _ = h.knobs.Read(name)
	}
	writeJSON(w, http.StatusOK, resp)
}
