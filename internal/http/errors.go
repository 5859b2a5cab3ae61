package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"cryptofolio/internal/core"
	applog "cryptofolio/internal/log"
	"cryptofolio/internal/timeseries"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// badRequest marks malformed input found while parsing a request.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func newBadRequest(err error) error { return badRequest{err: err} }

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	var (
		br  badRequest
		ve  validator.ValidationErrors
		tve *timeseries.ValidationError
	)
	switch {
	case errors.As(err, &br), errors.As(err, &ve), errors.As(err, &tve), core.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends msg with the error as details. Server errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), msg,
			applog.FieldError, err.Error(),
			applog.FieldPath, r.URL.Path)
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg, Details: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, r *http.Request, msg string) {
	writeJSON(w, r, http.StatusOK, messageResponse{Message: msg})
}
