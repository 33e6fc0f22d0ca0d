// Package handlers exposes the query engine over HTTP. Handlers are
// thin: decode, delegate to services, encode.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zenitsu0509/Employee-NLQ/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteError maps a service error to the HTTP taxonomy: validation
// failures are 400, unreachable databases 502, unknown jobs 404,
// everything else 500.
func WriteError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidConnectionString),
		errors.Is(err, apperrors.ErrEmptyQuery),
		errors.Is(err, apperrors.ErrQueryTooLong),
		errors.Is(err, apperrors.ErrSuspiciousInput),
		errors.Is(err, apperrors.ErrUnsupportedFileType),
		errors.Is(err, apperrors.ErrNotReadOnly):
		return ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, apperrors.ErrConnectionFailed):
		return ErrorResponse(w, http.StatusBadGateway, "connection_failed", err.Error())
	case errors.Is(err, apperrors.ErrConnectionNotFound):
		return ErrorResponse(w, http.StatusNotFound, "connection_not_found", err.Error())
	case errors.Is(err, apperrors.ErrJobNotFound):
		return ErrorResponse(w, http.StatusNotFound, "job_not_found", err.Error())
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
