package handlers

import (
	"net/http"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/service"
)

type PassHandler struct {
	passes   *service.PassService
	payments *service.PaymentService
}

func NewPassHandler(passes *service.PassService, payments *service.PaymentService) *PassHandler {
	return &PassHandler{
		passes:   passes,
		payments: payments,
	}
}

type PassListResponse struct {
	Passes []*domain.Pass `json:"passes"`
	Active *domain.Pass   `json:"active,omitempty"`
}

type ReferenceResponse struct {
	ReferenceID string `json:"referenceId"`
}

func (h *PassHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	passes, err := h.passes.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	active, err := h.passes.ActivePass(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PassListResponse{Passes: passes, Active: active})
}

// NewReference hands the caller the reference id to attach to an invoice.
func (h *PassHandler) NewReference(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	ref, err := h.payments.NewReference(userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ReferenceResponse{ReferenceID: ref})
}
