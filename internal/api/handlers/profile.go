package handlers

import (
	"net/http"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
)

type ProfileHandler struct {
	profiles   *service.ProfileService
	candidates *service.CandidateService
}

func NewProfileHandler(profiles *service.ProfileService, candidates *service.CandidateService) *ProfileHandler {
	return &ProfileHandler{
		profiles:   profiles,
		candidates: candidates,
	}
}

type PreferencesRequest struct {
	MinAge       int    `json:"minAge" validate:"omitempty,gte=0"`
	MaxAge       int    `json:"maxAge" validate:"omitempty,gte=0"`
	Location     string `json:"location" validate:"max=100"`
	VerifiedOnly bool   `json:"verifiedOnly"`
	Gender       string `json:"gender" validate:"max=20"`
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filters, err := h.candidates.Preferences(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, filters)
}

func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req PreferencesRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	filters, err := h.candidates.UpdatePreferences(r.Context(), userID, domain.Filters{
		MinAge:       req.MinAge,
		MaxAge:       req.MaxAge,
		Location:     req.Location,
		VerifiedOnly: req.VerifiedOnly,
		Gender:       req.Gender,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, filters)
}
