// Package web holds the JSON request and response helpers shared by HTTP handlers.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxBodyBytes bounds the size of a JSON request body.
const MaxBodyBytes = 1 << 20

// RespondJSON writes payload with the given status. A nil payload writes the status only.
func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// RespondError writes {"error": message}.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RespondValidationError writes a 400 response naming the rule each JSON field failed.
// Errors that are not validator.ValidationErrors are reported as an invalid request body.
func RespondValidationError(w http.ResponseWriter, logger *slog.Logger, entity string, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		logger.Error("Error validating request body", slog.String("error", err.Error()))
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	failed := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		failed[fe.Field()] = "failed on rule: " + fe.Tag()
	}
	logger.Warn("Validation errors occurred", slog.String("entity", entity), slog.Any("errors", failed))
	RespondJSON(w, logger, http.StatusBadRequest, map[string]any{
		"error":             fmt.Sprintf("Invalid %s data", entity),
		"validation_errors": failed,
	})
}

// DecodeJSON decodes a single JSON value from the request body into dst.
// It writes a 400 response and returns false when the body is malformed, oversized or
// followed by trailing data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	err := dec.Decode(dst)
	if err == nil && dec.Decode(&struct{}{}) != io.EOF {
		err = errors.New("unexpected data after the JSON body")
	}
	if err != nil {
		logger.WarnContext(r.Context(), "Error decoding request body", slog.String("error", err.Error()))
		RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// ParseID reads the UUID in the "id" path parameter, answering 400 when it is malformed.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", raw))
		return uuid.UUID{}, false
	}
	return id, true
}
