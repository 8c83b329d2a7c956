package handler

// RESPONSE HELPERS for the JSON resource under /api.
//
// Every error response has the same shape:
//
//	{"error": "validation_error", "message": "email: must be a valid email address",
//	 "fields": {"email": "must be a valid email address"}}
//
// "fields" is present only for validation errors.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/enrollment/internal/apperror"
)

// ErrorResponse is the error body returned by every API endpoint.
type ErrorResponse struct {
	Error   string            `json:"error"`            // Machine-readable kind (e.g. "not_found")
	Message string            `json:"message"`          // Human-readable description
	Fields  map[string]string `json:"fields,omitempty"` // Per-field messages for validation errors
}

// writeJSON sends data as JSON with the given status. Headers must be set
// before WriteHeader, which must come before the body.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// errors.Is walks the wrap chain, so a service error such as
// fmt.Errorf("service/account: %w", apperror.NotFound(...)) still maps to 404.
// Errors that are not an *apperror.AppError are logged and answered with a
// generic 500; their text may hold driver details and is never sent.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		resp := ErrorResponse{Error: errorType, Message: appErr.Message}
		if status == http.StatusBadRequest {
			resp.Fields = appErr.Fields
		}
		writeJSON(w, logger, status, resp)
		return
	}

	logger.Error("api request failed", slog.String("error", err.Error()))
	writeJSON(w, logger, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
