package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mirrorday/mirrorday/internal/aggregator"
	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/store"
)

// ReflectionHandler serves the per-reminder reflection view
type ReflectionHandler struct {
	store   *store.Store
	manager *aggregator.Manager
}

// NewReflectionHandler creates a new reflection handler
func NewReflectionHandler(st *store.Store, manager *aggregator.Manager) *ReflectionHandler {
	return &ReflectionHandler{store: st, manager: manager}
}

// RegisterRoutes registers reflection routes on the given router.
// The router should already have the /reminders prefix.
func (h *ReflectionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/{id}/reflection", h.GetReflection).Methods("GET")
	r.HandleFunc("/{id}/reflection/calendars", h.SetCalendars).Methods("PUT")
	r.HandleFunc("/{id}/reflection/error", h.DismissError).Methods("DELETE")
}

// SetCalendarsRequest replaces the enabled-calendar set for a reflection view
type SetCalendarsRequest struct {
	CalendarIDs []string `json:"calendarIds"`
}

// GetReflection triggers any due fetches and returns the current snapshot.
// Sections still loading report their flags; clients poll until settled.
// An optional calendars query parameter (comma-separated IDs) replaces the
// enabled-calendar set before the refresh.
func (h *ReflectionHandler) GetReflection(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.aggregatorFor(w, r)
	if !ok {
		return
	}
	if raw, present := r.URL.Query()["calendars"]; present && len(raw) > 0 {
		agg.SetEnabledCalendars(splitCalendarIDs(raw[0]))
	}
	agg.Refresh(r.Context())
	respondJSON(w, http.StatusOK, agg.Snapshot())
}

func splitCalendarIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetCalendars replaces the enabled-calendar set and refetches events
func (h *ReflectionHandler) SetCalendars(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.aggregatorFor(w, r)
	if !ok {
		return
	}

	var req SetCalendarsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	agg.SetEnabledCalendars(req.CalendarIDs)
	agg.Refresh(r.Context())
	respondJSON(w, http.StatusOK, agg.Snapshot())
}

// DismissError clears the pending user-visible error slot
func (h *ReflectionHandler) DismissError(w http.ResponseWriter, r *http.Request) {
	agg, ok := h.aggregatorFor(w, r)
	if !ok {
		return
	}
	agg.ClearError()
	respondJSON(w, http.StatusOK, agg.Snapshot())
}

func (h *ReflectionHandler) aggregatorFor(w http.ResponseWriter, r *http.Request) (*aggregator.Aggregator, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid reminder id")
		return nil, false
	}

	var reminder models.Reminder
	found := false
	for _, candidate := range h.store.Reminders() {
		if candidate.ID == id {
			reminder = candidate
			found = true
			break
		}
	}
	if !found {
		h.manager.Drop(id)
		respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
		return nil, false
	}
	return h.manager.For(reminder), true
}
