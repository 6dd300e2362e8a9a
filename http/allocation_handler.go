package http

import (
	"encoding/json"
	"net/http"

	"payment-allocator/domain"
	"payment-allocator/service"
)

type AllocationHandler struct {
	service *service.AllocationService
}

func NewAllocationHandler(service *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

func (h *AllocationHandler) ComputePlan(w http.ResponseWriter, r *http.Request) {

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input domain.AllocationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := h.service.Allocate(input)
	if err != nil {
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}
