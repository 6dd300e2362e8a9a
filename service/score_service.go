package service

import (
	"math"

	"payment-allocator/domain"
)

// ScoreService estima el impacto heurístico de un cambio de utilización en el
// score crediticio. No es un modelo de buró real: es una proyección simple
// para orientar al usuario.
type ScoreService struct {
	baselineScore int
}

// NewScoreService creates a ScoreService with the given baseline score.
// Baselines outside the valid score range fall back to the default.
func NewScoreService(baselineScore int) *ScoreService {
	if baselineScore < MinScore || baselineScore > MaxScore {
		baselineScore = DefaultBaselineScore
	}
	return &ScoreService{baselineScore: baselineScore}
}

// EstimateScoreImpact proyecta el cambio de score a partir del cambio de
// utilización en puntos porcentuales. Una reducción de utilización produce
// impacto positivo. La función es total: inputs fuera de rango se acotan,
// nunca se rechazan.
func (s *ScoreService) EstimateScoreImpact(utilizationChangePoints float64) domain.ScoreImpact {
	utilizationImpact := clampFloat(
		utilizationChangePoints*-2, -MaxUtilizationImpact, MaxUtilizationImpact)

	changePoints := utilizationImpact + PaymentHistoryImpact + CreditMixImpact

	projected := clampInt(
		s.baselineScore+int(math.Round(changePoints)), MinScore, MaxScore)

	return domain.ScoreImpact{
		BaselineScore:        s.baselineScore,
		ProjectedScore:       projected,
		ChangePoints:         roundTo2Decimals(changePoints),
		UtilizationImpact:    roundTo2Decimals(utilizationImpact),
		PaymentHistoryImpact: PaymentHistoryImpact,
		CreditMixImpact:      CreditMixImpact,
	}
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
