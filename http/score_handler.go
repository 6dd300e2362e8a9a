package http

import (
	"encoding/json"
	"net/http"

	"payment-allocator/service"
)

type ScoreHandler struct {
	service *service.ScoreService
}

func NewScoreHandler(service *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{service: service}
}

type ScorePreviewRequest struct {
	UtilizationChangePercentagePoints float64 `json:"utilization_change_percentage_points"`
}

// PreviewScoreImpact expone el estimador por separado para que el caller
// pueda previsualizar el impacto sin calcular un plan completo.
func (h *ScoreHandler) PreviewScoreImpact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ScorePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	impact := h.service.EstimateScoreImpact(req.UtilizationChangePercentagePoints)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(impact)
}
