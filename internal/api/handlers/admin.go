package handlers

import (
	"context"
	"net/http"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
)

type AdminHandler struct {
	moderation *service.ModerationService
}

func NewAdminHandler(moderation *service.ModerationService) *AdminHandler {
	return &AdminHandler{moderation: moderation}
}

type ResolveReportRequest struct {
	Status string `json:"status" validate:"required,oneof=resolved dismissed pending"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.moderation.Reports(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

func (h *AdminHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ResolveReportRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	report, err := h.moderation.ResolveReport(r.Context(), id, domain.ReportStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, "banned", h.moderation.Ban)
}

func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, "unbanned", h.moderation.Unban)
}

func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, "verified", h.moderation.MarkVerified)
}

func (h *AdminHandler) GrantPass(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	pass, err := h.moderation.GrantPass(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, pass)
}

func (h *AdminHandler) userAction(w http.ResponseWriter, r *http.Request, status string, action func(context.Context, int64) error) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := action(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: status})
}
