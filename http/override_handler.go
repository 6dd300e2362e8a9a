package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"payment-allocator/domain"
	"payment-allocator/service"
)

type OverrideHandler struct {
	service *service.OverrideService
}

func NewOverrideHandler(service *service.OverrideService) *OverrideHandler {
	return &OverrideHandler{service: service}
}

// OverrideRequest lleva el plan vigente junto con el input original y el
// pago editado por el usuario.
type OverrideRequest struct {
	Input            domain.AllocationInput `json:"input"`
	Plan             domain.AllocationPlan  `json:"plan"`
	AccountID        string                 `json:"account_id"`
	RequestedPayment decimal.Decimal        `json:"requested_payment"`
}

func (h *OverrideHandler) ApplyOverride(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := h.service.ApplyOverride(req.Plan, req.Input, req.AccountID, req.RequestedPayment)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}
