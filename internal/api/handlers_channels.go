package api

import (
	"net/http"

	"github.com/micro-nova/an30259a/internal/models"
)

func (h *Handlers) getChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dev.State().Channels)
}

func (h *Handlers) getChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := channelParam(r, "ch")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.dev.State().Channels[ch])
}

// setChannel applies delays first, then brightness, then blink. Brightness
// is committed asynchronously, so a brightness-only update answers 202.
func (h *Handlers) setChannel(w http.ResponseWriter, r *http.Request) {
	ch, err := channelParam(r, "ch")
	if err != nil {
		writeError(w, err)
		return
	}
	var upd models.ChannelUpdate
	if err := decodeBody(r, &upd); err != nil {
		writeError(w, err)
		return
	}
	for _, v := range []*int{upd.DelayOnMs, upd.DelayOffMs} {
		if v != nil && *v < 0 {
			writeError(w, models.ErrBadRequest("delays must not be negative"))
			return
		}
	}

	if upd.DelayOnMs != nil {
		_ = h.dev.SetDelayOn(ch, *upd.DelayOnMs)
	}
	if upd.DelayOffMs != nil {
		_ = h.dev.SetDelayOff(ch, *upd.DelayOffMs)
	}
	status := http.StatusOK
	if upd.Brightness != nil {
		if err := h.dev.SetBrightness(ch, *upd.Brightness); err != nil {
			writeError(w, err)
			return
		}
		status = http.StatusAccepted
	}
	if upd.Blink != nil {
		if err := h.dev.BlinkChannel(r.Context(), ch, *upd.Blink); err != nil {
			writeError(w, err)
			return
		}
		if *upd.Blink {
			status = http.StatusOK
		}
	}
	writeJSON(w, status, h.dev.State().Channels[ch])
}

// setRaw writes an unscaled current code and commits it synchronously.
func (h *Handlers) setRaw(w http.ResponseWriter, r *http.Request) {
	ch, err := channelParam(r, "ch")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Code *int `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Code == nil || *req.Code < 0 || *req.Code > 255 {
		writeError(w, models.ErrBadRequest("code must be 0-255"))
		return
	}
	if err := h.dev.SetRaw(r.Context(), ch, uint8(*req.Code)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.dev.State().Channels[ch])
}
