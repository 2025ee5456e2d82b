package models

import "net/http"

// Codes carried in the "error" field of an AppError.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
	CodeBus          = "BUS_ERROR"
	CodeUnavailable  = "UNAVAILABLE"
)

// AppError is the JSON body of every failed API call.
type AppError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"` // offending knob or body field
	Status  int    `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

// WithField returns a copy of e naming the offending knob or field.
func (e *AppError) WithField(field string) *AppError {
	c := *e
	c.Field = field
	return &c
}

func newAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Message: msg, Status: status}
}

func ErrNotFound(msg string) *AppError { return newAppError(CodeNotFound, http.StatusNotFound, msg) }

func ErrBadRequest(msg string) *AppError {
	return newAppError(CodeBadRequest, http.StatusBadRequest, msg)
}

func ErrUnauthorized(msg string) *AppError {
	return newAppError(CodeUnauthorized, http.StatusUnauthorized, msg)
}

func ErrInternal(msg string) *AppError {
	return newAppError(CodeInternal, http.StatusInternalServerError, msg)
}

// ErrBus reports a failed transfer to the chip.
func ErrBus(msg string) *AppError { return newAppError(CodeBus, http.StatusBadGateway, msg) }

// ErrUnavailable reports a detached controller.
func ErrUnavailable(msg string) *AppError {
	return newAppError(CodeUnavailable, http.StatusServiceUnavailable, msg)
}
