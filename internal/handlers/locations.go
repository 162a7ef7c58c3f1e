package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/request"
	"github.com/mirrorday/mirrorday/internal/sources"
)

// LocationHandler accepts device movement reports and controls tracking
type LocationHandler struct {
	tracker *sources.FileLocationTracker
	logger  *zap.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(tracker *sources.FileLocationTracker, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{tracker: tracker, logger: logger}
}

// RegisterRoutes registers location routes on the given router.
// The router should already have the /locations prefix.
func (h *LocationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.Report).Methods("POST")
	r.HandleFunc("/tracking", h.GetTracking).Methods("GET")
	r.HandleFunc("/tracking", h.SetTracking).Methods("PUT")
}

// ReportRequest is a single movement report from a device
type ReportRequest struct {
	Latitude           float64    `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude          float64    `json:"longitude" validate:"required,gte=-180,lte=180"`
	HorizontalAccuracy float64    `json:"horizontalAccuracy"`
	Timestamp          *time.Time `json:"timestamp,omitempty"`
}

// SetTrackingRequest toggles movement recording
type SetTrackingRequest struct {
	Enabled bool `json:"enabled"`
}

// Report records a movement point. Accuracy gating and the tracking toggle
// are the tracker's concern; a gated-out point is still a 202 because the
// device did nothing wrong.
func (h *LocationHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	point := models.NewLocationPoint(req.Latitude, req.Longitude, ts, req.HorizontalAccuracy)

	if err := h.tracker.Record(point); err != nil {
		device := ""
		if d := request.DeviceFromContext(r); d != nil {
			device = d.ID
		}
		h.logger.Error("failed_to_record_location",
			zap.String("device_id", device),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to record location")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"id": point.ID.String()})
}

// GetTracking reports whether movement recording is enabled
func (h *LocationHandler) GetTracking(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"enabled": h.tracker.Tracking()})
}

// SetTracking toggles movement recording
func (h *LocationHandler) SetTracking(w http.ResponseWriter, r *http.Request) {
	var req SetTrackingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Enabled {
		h.tracker.StartTracking()
	} else {
		h.tracker.StopTracking()
	}
	respondJSON(w, http.StatusOK, map[string]bool{"enabled": h.tracker.Tracking()})
}
