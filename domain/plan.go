package domain

import "github.com/shopspring/decimal"

// AccountPlan es la recomendación de pago derivada para una cuenta.
type AccountPlan struct {
	AccountID               string          `json:"account_id"`
	SuggestedPayment        decimal.Decimal `json:"suggested_payment"`
	NewBalance              decimal.Decimal `json:"new_balance"`
	OldUtilization          float64         `json:"old_utilization"`
	NewUtilization          float64         `json:"new_utilization"`
	UtilizationChangePoints float64         `json:"utilization_change_percentage_points"`
}

// ScoreImpact es una estimación heurística, no un modelo de buró real.
type ScoreImpact struct {
	BaselineScore        int     `json:"baseline_score"`
	ProjectedScore       int     `json:"projected_score"`
	ChangePoints         float64 `json:"change_points"`
	UtilizationImpact    float64 `json:"utilization_impact"`
	PaymentHistoryImpact float64 `json:"payment_history_impact"`
	CreditMixImpact      float64 `json:"credit_mix_impact"`
}

type AllocationPlan struct {
	Strategy                string          `json:"strategy"`
	Accounts                []AccountPlan   `json:"accounts"`
	TotalOldUtilization     float64         `json:"total_old_utilization"`
	TotalNewUtilization     float64         `json:"total_new_utilization"`
	UtilizationChangePoints float64         `json:"utilization_change_percentage_points"`
	UnallocatedFunds        decimal.Decimal `json:"unallocated_funds"`
	ScoreImpact             ScoreImpact     `json:"score_impact"`
}
