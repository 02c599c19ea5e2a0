package handlers

import (
	"net/http"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
)

type OnboardingHandler struct {
	onboarding *service.OnboardingService
}

func NewOnboardingHandler(onboarding *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

type StartOnboardingRequest struct {
	Username string `json:"username" validate:"max=64"`
}

type OnboardingReplyRequest struct {
	Text string `json:"text" validate:"max=1000"`
}

type EditFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=bio university"`
}

func (h *OnboardingHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req StartOnboardingRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	reply, err := h.onboarding.Start(r.Context(), userID, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *OnboardingHandler) Reply(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req OnboardingReplyRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	reply, err := h.onboarding.Reply(r.Context(), userID, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

func (h *OnboardingHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req EditFieldRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	reply, err := h.onboarding.BeginEdit(r.Context(), userID, domain.EditField(req.Field))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}
