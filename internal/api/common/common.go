// Package common provides shared HTTP helpers for the bridge API handlers.
package common

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/stacklok/mbean-bridge/internal/backend"
	"github.com/stacklok/mbean-bridge/internal/objectname"
	"github.com/stacklok/mbean-bridge/internal/resolver"
	"github.com/stacklok/mbean-bridge/internal/service"
	"github.com/stacklok/mbean-bridge/internal/sync"
	"github.com/stacklok/mbean-bridge/internal/tree"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// WriteJSONResponse writes a JSON response with the given data
func WriteJSONResponse(w http.ResponseWriter, data any, statusCode int) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// WriteErrorResponse writes a standardized error response
func WriteErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	WriteJSONResponse(w, ErrorResponse{Error: message}, statusCode)
}

// WriteServiceError maps a service error to its HTTP status and writes it.
// Operation failures carry their reason in the body.
func WriteServiceError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
	}

	resp := ErrorResponse{Error: err.Error()}
	var syncErr *sync.Error
	if errors.As(err, &syncErr) {
		resp.Reason = syncErr.Reason
	}
	WriteJSONResponse(w, resp, code)
}

// StatusFor returns the HTTP status code for a service error
func StatusFor(err error) int {
	var syncErr *sync.Error
	if errors.As(err, &syncErr) {
		switch syncErr.Reason {
		case sync.ReasonTargetUnresolvable, sync.ReasonAttributeNotDefined, sync.ReasonMacroUnknown:
			return http.StatusNotFound
		case sync.ReasonInterrupted:
			return http.StatusServiceUnavailable
		}
	}

	switch {
	case errors.Is(err, service.ErrTargetNotFound),
		errors.Is(err, service.ErrBackendNotFound),
		errors.Is(err, service.ErrMacroNotFound),
		errors.Is(err, backend.ErrObjectNotFound),
		errors.Is(err, backend.ErrAttributeNotFound),
		errors.Is(err, sync.ErrTargetUnresolvable),
		errors.Is(err, sync.ErrAttributeNotDefined):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, tree.ErrMalformedName),
		errors.Is(err, objectname.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, backend.ErrBackendUnavailable),
		errors.Is(err, resolver.ErrAddressUnresolvable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
