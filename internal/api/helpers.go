// Package api implements the HTTP REST API for the LED controller.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/micro-nova/an30259a/internal/chip"
	"github.com/micro-nova/an30259a/internal/controller"
	"github.com/micro-nova/an30259a/internal/events"
	"github.com/micro-nova/an30259a/internal/knobs"
	"github.com/micro-nova/an30259a/internal/models"
	"github.com/micro-nova/an30259a/internal/registers"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	dev    Device
	knobs  *knobs.Set
	events EventBus
}

// Device is the control surface the handlers drive. *controller.Controller
// implements it.
type Device interface {
	knobs.Device
	SetBlink(ctx context.Context, ch registers.Channel, onMs, offMs, level int) error
	Tunables() chip.IntensityState
	Dump(ctx context.Context) ([]byte, error)
}

// EventBus is the interface for subscribing to device events.
type EventBus interface {
	Subscribe(id string, kinds ...events.Kind) <-chan events.Event
	Unsubscribe(id string)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err as a JSON AppError.
func writeError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(appErr)
}

// toAppError maps domain errors onto HTTP statuses.
func toAppError(err error) *models.AppError {
	var (
		appErr   *models.AppError
		parseErr *knobs.ParseError
		busErr   *chip.TransportError
	)
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &parseErr):
		return models.ErrBadRequest(err.Error()).WithField(parseErr.Knob)
	case errors.Is(err, knobs.ErrUnknownKnob):
		return models.ErrNotFound(err.Error())
	case errors.Is(err, knobs.ErrWriteOnly):
		return models.ErrBadRequest(err.Error())
	case errors.As(err, &busErr):
		return models.ErrBus(err.Error())
	case errors.Is(err, controller.ErrClosed):
		return models.ErrUnavailable(err.Error())
	default:
		return models.ErrInternal(err.Error())
	}
}

// channelParam reads a channel path parameter: a name ("led_r", "r", "red")
// or an index.
func channelParam(r *http.Request, name string) (registers.Channel, error) {
	s := chi.URLParam(r, name)
	if ch, ok := registers.ParseChannel(s); ok {
		return ch, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < int(registers.NumChannels) {
		return registers.Channel(n), nil
	}
	return 0, models.ErrNotFound("unknown channel " + s)
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrBadRequest("invalid JSON body: " + err.Error())
	}
	return nil
}
