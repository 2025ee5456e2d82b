package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/micro-nova/an30259a/internal/events"
)

// keepAlive is how often an idle stream gets a comment line, so proxies and
// the CLI notice a dead daemon.
const keepAlive = 15 * time.Second

// sseEvents streams device events. The first message is the current state
// under the "state" event name; after that each bus event is sent under its
// kind ("commit", "pattern", "error") with a per-stream sequence id.
// ?kinds=pattern,error limits the stream to those kinds.
func (h *Handlers) sseEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("sse: response writer cannot flush"))
		return
	}

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")

	sub := "sse-" + uuid.NewString()
	evs := h.events.Subscribe(sub, events.ParseKinds(r.URL.Query().Get("kinds"))...)
	defer h.events.Unsubscribe(sub)

	var seq uint64
	if err := writeEvent(w, seq, "state", h.dev.State()); err != nil {
		return
	}
	flusher.Flush()

	tick := time.NewTicker(keepAlive)
	defer tick.Stop()

	for {
		select {
		case ev, ok := <-evs:
			if !ok {
				return
			}
			seq++
			if err := writeEvent(w, seq, string(ev.Kind), ev); err != nil {
				return
			}
		case <-tick.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
		flusher.Flush()
	}
}

func writeEvent(w io.Writer, seq uint64, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", seq, name, data)
	return err
}
