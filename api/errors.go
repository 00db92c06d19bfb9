package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/signalnine/ecoround/engine"
	"github.com/signalnine/ecoround/store"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps an error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, engine.ErrConfiguration), errors.Is(err, engine.ErrDegenerateMenu):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errStoreDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrRoundBudget):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error envelope.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	requestID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", requestID)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), RequestID: requestID})
}

var (
	errBadRequest    = errors.New("bad request")
	errStoreDisabled = errors.New("run store disabled")
)
