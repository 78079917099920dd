package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/obaudys/filegate"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	switch {
	case errors.Is(err, filegate.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Object not found")
	case errors.Is(err, filegate.ErrInvalidContent):
		WriteError(w, http.StatusUnprocessableEntity, "invalid_content", "Content type is not allowed")
	case errors.Is(err, filegate.ErrRangeNotSatisfiable):
		WriteError(w, http.StatusRequestedRangeNotSatisfiable, "range_not_satisfiable", "Requested range cannot be served")
	case errors.Is(err, filegate.ErrOversizeUpload):
		WriteError(w, http.StatusRequestEntityTooLarge, "upload_too_large", "Upload exceeds the size limit")
	case errors.Is(err, filegate.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid input")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
