package domain

import "github.com/shopspring/decimal"

// Estrategias de asignación disponibles
const (
	StrategyUtilization = "utilization"
	StrategyInterest    = "interest"
	StrategySnowball    = "snowball"
)

// AccountSnapshot es la foto inmutable de una cuenta de crédito al momento del cálculo.
type AccountSnapshot struct {
	ID                        string          `json:"id"`
	CurrentBalance            decimal.Decimal `json:"current_balance"`
	CreditLimit               decimal.Decimal `json:"credit_limit"`
	MinimumPayment            decimal.Decimal `json:"minimum_payment"`
	InterestRateAnnualPercent float64         `json:"interest_rate_annual_percent"`
}

type AllocationInput struct {
	Accounts       []AccountSnapshot `json:"accounts"`
	AvailableFunds decimal.Decimal   `json:"available_funds"`
	Strategy       string            `json:"strategy"` // "utilization", "interest", "snowball"
}
