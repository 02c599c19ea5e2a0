package handlers

import (
	"net/http"
	"time"

	"github.com/dom/donutdot/internal/service"
)

type VerificationHandler struct {
	moderation *service.ModerationService
}

func NewVerificationHandler(moderation *service.ModerationService) *VerificationHandler {
	return &VerificationHandler{moderation: moderation}
}

type VerificationRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Email  string `json:"email" validate:"required,email,max=254"`
}

type VerificationResponse struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// Issue is called by the chat channel, which sends the link to the address.
func (h *VerificationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req VerificationRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	v, err := h.moderation.RequestVerification(r.Context(), req.UserID, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, VerificationResponse{Token: v.Token, CreatedAt: v.CreatedAt})
}

func (h *VerificationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}

	profile, err := h.moderation.ConfirmVerification(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
