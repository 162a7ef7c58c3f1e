package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/sources"
)

func newLocationRouter(t *testing.T) (*mux.Router, *sources.FileLocationTracker) {
	t.Helper()
	tracker := sources.NewFileLocationTracker(filepath.Join(t.TempDir(), "locations.json"), 90, 100, zap.NewNop())
	router := mux.NewRouter()
	NewLocationHandler(tracker, zap.NewNop()).RegisterRoutes(router.PathPrefix("/locations").Subrouter())
	return router, tracker
}

func TestReportLocation(t *testing.T) {
	t.Parallel()

	router, tracker := newLocationRouter(t)
	tracker.StartTracking()

	w := doJSON(t, router, "POST", "/locations", map[string]any{
		"latitude":           51.5074,
		"longitude":          -0.1278,
		"horizontalAccuracy": 12.5,
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	points, err := tracker.FetchLocations(context.Background(), time.Now(), 50)
	if err != nil {
		t.Fatalf("FetchLocations failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point recorded, got %d", len(points))
	}
}

func TestReportLocationValidation(t *testing.T) {
	t.Parallel()

	router, tracker := newLocationRouter(t)
	tracker.StartTracking()

	w := doJSON(t, router, "POST", "/locations", map[string]any{
		"latitude":  200.0,
		"longitude": -0.1278,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range latitude, got %d", w.Code)
	}
}

func TestTrackingToggle(t *testing.T) {
	t.Parallel()

	router, tracker := newLocationRouter(t)

	w := doJSON(t, router, "GET", "/locations/tracking", nil)
	if decodeData(t, w)["enabled"] != false {
		t.Error("tracking should start off")
	}

	w = doJSON(t, router, "PUT", "/locations/tracking", map[string]any{"enabled": true})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !tracker.Tracking() {
		t.Error("tracking not enabled")
	}

	w = doJSON(t, router, "PUT", "/locations/tracking", map[string]any{"enabled": false})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if tracker.Tracking() {
		t.Error("tracking not disabled")
	}
}
