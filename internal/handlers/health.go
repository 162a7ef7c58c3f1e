package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger reports reachability of a dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	remote Pinger
}

// NewHealthChecker creates a new health checker. A nil remote skips the
// extended remote check.
func NewHealthChecker(remote Pinger) *HealthChecker {
	return &HealthChecker{remote: remote}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if mode == "extended" {
		checks := make(map[string]string)

		// The remote sync backend is the only hard dependency worth probing.
		// An unreachable remote is still "healthy" for local operation, so
		// the overall status stays up; the check value carries the detail.
		if h.remote != nil {
			if err := h.checkRemote(r.Context()); err != nil {
				checks["remote"] = "unreachable: " + err.Error()
			} else {
				checks["remote"] = "healthy"
			}
		}

		response.Checks = checks
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// checkRemote verifies the remote backend connection
func (h *HealthChecker) checkRemote(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return h.remote.Ping(ctx)
}
