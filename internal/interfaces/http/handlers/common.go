// Package handlers implements the HTTP handlers for the map service API:
// project listing/inspection, map figure builds, title builds, and health
// probes.  Handlers decode requests, delegate to application services, and
// translate AppError codes into HTTP status codes.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wmcornejo/reView/internal/interfaces/http/middleware"
	"github.com/wmcornejo/reView/pkg/errors"
)

// ErrorBody is the error payload nested inside every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorResponse is the standard error response envelope.
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a structured error response with an explicit status.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, err error) {
	body := ErrorBody{
		Code:    errors.GetCode(err).String(),
		Message: err.Error(),
	}
	if appErr, ok := errors.AsAppError(err); ok {
		body.Message = appErr.Message
		body.Detail = appErr.Detail
	}
	writeJSON(w, statusCode, ErrorResponse{
		Error:     body,
		RequestID: middleware.ContextGetRequestID(r.Context()),
	})
}

// writeAppError maps an application error onto its HTTP status code.
// Errors that carry no AppError are masked as internal server errors so
// wrapped causes never leak to clients.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if _, ok := errors.AsAppError(err); !ok {
		err = errors.New(errors.ErrCodeInternal, "internal server error")
	}
	writeError(w, r, errors.HTTPStatusForCode(errors.GetCode(err)), err)
}

// decodeJSON decodes a request body into dest, translating malformed or
// oversized bodies into a bad-request AppError.
func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}
