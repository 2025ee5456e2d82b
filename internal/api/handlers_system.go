package api

import (
	"encoding/hex"
	"net/http"
)

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dev.State())
}

func (h *Handlers) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dev.State().Info)
}

// getRegisters reads the register file back from the chip, as opposed to
// the shadow image in /api/state.
func (h *Handlers) getRegisters(w http.ResponseWriter, r *http.Request) {
	b, err := h.dev.Dump(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"registers": hex.EncodeToString(b)})
}
