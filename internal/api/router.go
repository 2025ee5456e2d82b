package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/micro-nova/an30259a/internal/auth"
	"github.com/micro-nova/an30259a/internal/knobs"
	"github.com/micro-nova/an30259a/internal/metrics"
)

// NewRouter creates and returns the main HTTP router.
func NewRouter(dev Device, set *knobs.Set, authSvc *auth.Service, bus EventBus) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{dev: dev, knobs: set, events: bus}

	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authSvc.Middleware)

		r.Get("/api", h.getState)
		r.Get("/api/state", h.getState)
		r.Get("/api/info", h.getInfo)
		r.Get("/api/registers", h.getRegisters)

		// Channels
		r.Get("/api/channels", h.getChannels)
		r.Get("/api/channels/{ch}", h.getChannel)
		r.Patch("/api/channels/{ch}", h.setChannel)
		r.Put("/api/channels/{ch}/raw", h.setRaw)

		// Lighting
		r.Post("/api/blink", h.blink)
		r.Post("/api/pattern", h.triggerPattern)
		r.Get("/api/patterns", h.getPatterns)
		r.Get("/api/tunables", h.getTunables)
		r.Patch("/api/tunables", h.setTunables)

		// Text knobs; names may contain a slash ("led_r/brightness").
		r.Get("/api/knobs", h.getKnobs)
		r.Get("/api/knobs/*", h.getKnob)
		r.Put("/api/knobs/*", h.setKnob)

		// SSE
		r.Get("/api/subscribe", h.sseEvents)
	})

	return r
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, api-key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
