package handlers

import (
	"net/http"

	"github.com/dom/donutdot/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// HandleEvent accepts a "pass paid" event from the payment provider.
// Replays answer 200 with granted=false.
func (h *PaymentHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event service.PaymentEvent
	if !decodeRequest(w, r, &event) {
		return
	}

	result, err := h.payments.HandlePaid(r.Context(), event)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Granted {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}
