package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mirrorday/mirrorday/internal/models"
	"github.com/mirrorday/mirrorday/internal/store"
	"github.com/mirrorday/mirrorday/internal/validation"
)

// ProfileHandler handles the singleton profile and onboarding flag
type ProfileHandler struct {
	profiles *store.ProfileStore
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *store.ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterRoutes registers profile routes on the given router.
// The router should already have the /profile prefix.
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetProfile).Methods("GET")
	r.HandleFunc("", h.UpdateProfile).Methods("PUT")
	r.HandleFunc("/onboarding", h.CompleteOnboarding).Methods("POST")
	r.HandleFunc("/onboarding", h.ResetOnboarding).Methods("DELETE")
}

// UpdateProfileRequest replaces the profile wholesale
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	Surname   string `json:"surname" validate:"max=100"`
	Country   string `json:"country" validate:"max=100"`
}

// ProfileResponse pairs the profile with its derived display fields
type ProfileResponse struct {
	Profile                models.UserProfile `json:"profile"`
	FullName               string             `json:"fullName"`
	Greeting               string             `json:"greeting"`
	HasCompletedOnboarding bool               `json:"hasCompletedOnboarding"`
}

// GetProfile returns the profile and onboarding state
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile := h.profiles.Profile()
	respondJSON(w, http.StatusOK, ProfileResponse{
		Profile:                profile,
		FullName:               profile.FullName(),
		Greeting:               profile.Greeting(),
		HasCompletedOnboarding: h.profiles.HasCompletedOnboarding(),
	})
}

// UpdateProfile replaces the profile wholesale
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validateStruct(w, req) {
		return
	}

	profile := models.UserProfile{
		FirstName: validation.SanitizeText(req.FirstName),
		Surname:   validation.SanitizeText(req.Surname),
		Country:   validation.SanitizeText(req.Country),
	}
	if profile.Incomplete() {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "First name is required")
		return
	}

	h.profiles.Update(profile)
	h.GetProfile(w, r)
}

// CompleteOnboarding marks onboarding done
func (h *ProfileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	h.profiles.CompleteOnboarding()
	respondJSON(w, http.StatusOK, map[string]bool{"hasCompletedOnboarding": true})
}

// ResetOnboarding clears the flag and the profile
func (h *ProfileHandler) ResetOnboarding(w http.ResponseWriter, r *http.Request) {
	h.profiles.ResetOnboarding()
	respondJSON(w, http.StatusOK, map[string]bool{"hasCompletedOnboarding": false})
}
