package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/store"
	"github.com/mirrorday/mirrorday/internal/validation"
	"github.com/mirrorday/mirrorday/internal/views"
)

const (
	// MaxTitleLength is the maximum length for a reminder title
	MaxTitleLength = 200
	// MaxDescriptionLength is the maximum length for a reminder description
	MaxDescriptionLength = 2000
)

// ReminderHandler handles reminder CRUD and sync requests
type ReminderHandler struct {
	store *store.Store
	list  *views.ListView
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(st *store.Store, list *views.ListView) *ReminderHandler {
	return &ReminderHandler{store: st, list: list}
}

// RegisterRoutes registers reminder routes on the given router.
// The router should already have the /reminders prefix.
func (h *ReminderHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListReminders).Methods("GET")
	r.HandleFunc("", h.CreateReminder).Methods("POST")
	r.HandleFunc("/refresh", h.Refresh).Methods("POST")
	r.HandleFunc("/{id}", h.GetReminder).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateReminder).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteReminder).Methods("DELETE")
}

// CreateReminderRequest represents a create reminder request
type CreateReminderRequest struct {
	Title           string  `json:"title" validate:"required,min=1,max=200"`
	Date            string  `json:"date" validate:"required"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	BackgroundColor *string `json:"backgroundColor,omitempty" validate:"omitempty,background_color"`
}

// UpdateReminderRequest represents a partial update
type UpdateReminderRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Date            *string `json:"date,omitempty"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	BackgroundColor *string `json:"backgroundColor,omitempty" validate:"omitempty,background_color"`
}

// ListRemindersResponse carries the upcoming and past partitions plus the
// current sync state
type ListRemindersResponse struct {
	Upcoming  []views.ListEntry `json:"upcoming"`
	Past      []views.ListEntry `json:"past"`
	SyncState models.SyncState  `json:"syncState"`
}

// ListReminders returns the partitioned reminder collection
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	response := ListRemindersResponse{
		Upcoming:  h.list.Upcoming(),
		Past:      h.list.Past(),
		SyncState: h.store.SyncState(),
	}
	respondJSON(w, http.StatusOK, response)
}

// CreateReminder adds a reminder. The add always succeeds locally; remote
// propagation is a background concern never reflected in this response.
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req CreateReminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty after sanitization")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	reminder := models.NewReminder(req.Title, date)
	if req.Description != nil {
		desc := validation.SanitizeText(*req.Description)
		reminder.Description = &desc
	}
	if req.BackgroundColor != nil {
		color := models.BackgroundColor(*req.BackgroundColor)
		reminder.BackgroundColor = &color
	}

	h.store.Add(reminder)
	respondJSON(w, http.StatusCreated, reminder)
}

// GetReminder returns one reminder by id
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	reminder, ok := h.findReminder(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, reminder)
}

// UpdateReminder applies a partial edit and re-stamps the modification time
func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	reminder, ok := h.findReminder(w, r)
	if !ok {
		return
	}

	var req UpdateReminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title cannot be empty after sanitization")
			return
		}
		reminder.Title = title
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		reminder.Date = date
	}
	if req.Description != nil {
		desc := validation.SanitizeText(*req.Description)
		reminder.Description = &desc
	}
	if req.BackgroundColor != nil {
		color := models.BackgroundColor(*req.BackgroundColor)
		reminder.BackgroundColor = &color
	}

	h.store.Update(reminder)

	// Re-read so the response carries the store's modification stamp
	updated, ok := h.reminderByID(reminder.ID)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteReminder removes a reminder
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	reminder, ok := h.findReminder(w, r)
	if !ok {
		return
	}
	h.store.Delete(reminder.ID)
	respondJSON(w, http.StatusOK, map[string]string{"id": reminder.ID.String()})
}

// Refresh triggers a remote fetch-and-merge and reports the resulting sync
// state. A failed refresh is still a 200: the failure lives in the sync
// state, not the transport.
func (h *ReminderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.list.Refresh(r.Context()); err != nil {
		// Absorbed into the sync state below
		_ = err
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"syncState":     h.store.SyncState(),
		"lastRefreshed": h.list.LastRefreshed().UTC().Format(time.RFC3339),
	})
}

// SyncState returns the store's current remote-sync state
func (h *ReminderHandler) SyncState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.SyncState())
}

func (h *ReminderHandler) findReminder(w http.ResponseWriter, r *http.Request) (models.Reminder, bool) {
	idStr := mux.Vars(r)["id"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid reminder id")
		return models.Reminder{}, false
	}
	reminder, ok := h.reminderByID(id)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
		return models.Reminder{}, false
	}
	return reminder, true
}

func (h *ReminderHandler) reminderByID(id uuid.UUID) (models.Reminder, bool) {
	for _, reminder := range h.store.Reminders() {
		if reminder.ID == id {
			return reminder, true
		}
	}
	return models.Reminder{}, false
}

// parseDate accepts a date-only or full RFC3339 timestamp
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", value)
}

// decodeBody decodes the JSON request body, responding on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return false
	}
	return true
}

// validateStruct runs the shared validator, responding on failure
func validateStruct(w http.ResponseWriter, req any) bool {
	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return false
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return false
	}
	return true
}
