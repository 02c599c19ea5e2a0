package handlers

import (
	"net/http"

	"github.com/dom/donutdot/internal/service"
)

type ReportHandler struct {
	moderation *service.ModerationService
}

func NewReportHandler(moderation *service.ModerationService) *ReportHandler {
	return &ReportHandler{moderation: moderation}
}

type CreateReportRequest struct {
	ReportedID int64  `json:"reportedId" validate:"required,gt=0"`
	Reason     string `json:"reason" validate:"required,max=2000"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateReportRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	report, err := h.moderation.Report(r.Context(), userID, req.ReportedID, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}
