package service

import "github.com/shopspring/decimal"

const (
	MaxAccountsPerRequest = 50 // máximo de cuentas por request

	// Rango válido del score heurístico
	MinScore = 300
	MaxScore = 900

	// DefaultBaselineScore es el score de referencia asumido cuando no hay configuración.
	DefaultBaselineScore = 650

	// HealthyUtilizationThreshold es el umbral convencional de utilización saludable.
	HealthyUtilizationThreshold = 0.30

	// Factores fijos del modelo heurístico de score
	MaxUtilizationImpact = 100.0
	PaymentHistoryImpact = 5.0
	CreditMixImpact      = 2.0
)

var (
	// MaxAvailableFunds limita el monto a distribuir por request.
	MaxAvailableFunds = decimal.NewFromInt(100_000_000) // 100 millones

	// sweepChunk es el abono máximo por cuenta en cada barrido de la fase proporcional.
	sweepChunk = decimal.NewFromInt(25)

	healthyUtilizationTarget = decimal.NewFromFloat(HealthyUtilizationThreshold)
)
