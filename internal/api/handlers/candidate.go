package handlers

import (
	"net/http"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
)

type CandidateHandler struct {
	candidates *service.CandidateService
}

func NewCandidateHandler(candidates *service.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidates: candidates}
}

type CandidateResponse struct {
	Candidate *domain.Profile `json:"candidate"`
	Exhausted bool            `json:"exhausted"`
}

// Next shows the next candidate. ?reset=true starts a new browsing pass first.
func (h *CandidateHandler) Next(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("reset") == "true" {
		if err := h.candidates.Reset(r.Context(), userID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	candidate, err := h.candidates.Next(r.Context(), userID, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CandidateResponse{
		Candidate: candidate,
		Exhausted: candidate == nil,
	})
}
