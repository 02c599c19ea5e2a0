package handlers

import (
	"net/http"

	"github.com/dom/donutdot/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// TokenRequest is sent by the channel gateway on behalf of a chat user.
type TokenRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.authService.IssueToken(req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
