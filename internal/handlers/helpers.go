// Package handlers implements the HTTP API surface over the store, the
// reflection aggregators, and the source collaborators.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mirrorday/mirrorday/internal/apperr"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	sanitized := message
	if len(sanitized) > 200 {
		sanitized = sanitized[:200] + "..."
	}
	return sanitized
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	sanitizedMessage := sanitizeErrorMessage(message)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizedMessage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondAppError maps the application error taxonomy to HTTP statuses and
// attaches the recovery metadata clients render against: a settings link for
// permission failures, a suggestion string for the rest.
func respondAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	errorType := "Internal Server Error"
	switch apperr.KindOf(err) {
	case apperr.KindPermissionDenied:
		status = http.StatusForbidden
		errorType = "Permission Denied"
	case apperr.KindNetworkUnavailable:
		status = http.StatusServiceUnavailable
		errorType = "Network Unavailable"
	case apperr.KindBackend:
		status = http.StatusBadGateway
		errorType = "Backend Error"
	case apperr.KindDataCorruption:
		status = http.StatusUnprocessableEntity
		errorType = "Data Corruption"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":      false,
		"error":        errorType,
		"message":      sanitizeErrorMessage(err.Error()),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"settingsLink": apperr.ShowsSettingsLink(err),
	}
	if suggestion := apperr.RecoverySuggestion(err); suggestion != "" {
		response["suggestion"] = suggestion
	}

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
