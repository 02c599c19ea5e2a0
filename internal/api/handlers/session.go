package handlers

import (
	"net/http"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
	"github.com/rs/zerolog/log"
)

type SessionHandler struct {
	sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type ActiveSessionResponse struct {
	Session          *domain.ChatSession `json:"session"`
	RemainingSeconds int                 `json:"remainingSeconds"`
}

type SweepResponse struct {
	Notified int `json:"notified"`
}

func (h *SessionHandler) Active(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	session, err := h.sessions.ActiveSession(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if session == nil {
		http.Error(w, domain.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, ActiveSessionResponse{
		Session:          session,
		RemainingSeconds: int(h.sessions.Remaining(session) / time.Second),
	})
}

// Sweep is the cron entry point for expiry notices.
func (h *SessionHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	notified, err := h.sessions.SweepExpired(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Info().Int("notified", notified).Msg("expiry sweep triggered")
	writeJSON(w, http.StatusOK, SweepResponse{Notified: notified})
}
