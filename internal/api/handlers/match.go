package handlers

import (
	"net/http"

	"github.com/dom/donutdot/internal/service"
)

type MatchHandler struct {
	matches *service.MatchService
}

func NewMatchHandler(matches *service.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

type TargetRequest struct {
	TargetID int64 `json:"targetId" validate:"required,gt=0"`
}

func (h *MatchHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req TargetRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.matches.Like(r.Context(), userID, req.TargetID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *MatchHandler) Skip(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req TargetRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.matches.Skip(r.Context(), userID, req.TargetID); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	views, err := h.matches.Matches(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// StartSession retries negotiation for a pass_pending match.
func (h *MatchHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	matchID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	negotiation, err := h.matches.StartSession(r.Context(), userID, matchID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, negotiation)
}
