package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"payment-allocator/domain"
)

// OverrideService reconcilia ajustes manuales sobre un plan ya calculado.
type OverrideService struct {
	scoreService *ScoreService
}

func NewOverrideService(scoreService *ScoreService) *OverrideService {
	return &OverrideService{scoreService: scoreService}
}

// ApplyOverride aplica un pago editado por el usuario a una sola cuenta del
// plan y recalcula sus métricas y los agregados. No rebalancea las demás
// cuentas ni conserva la suma total de fondos: el resultado es una simulación
// editable, no un plan de suma fija. Nunca muta el plan recibido.
func (s *OverrideService) ApplyOverride(
	plan domain.AllocationPlan,
	input domain.AllocationInput,
	accountID string,
	requestedPayment decimal.Decimal,
) (domain.AllocationPlan, error) {

	entryIdx := -1
	for i := range plan.Accounts {
		if plan.Accounts[i].AccountID == accountID {
			entryIdx = i
			break
		}
	}
	if entryIdx < 0 {
		return domain.AllocationPlan{}, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}

	var snapshot *domain.AccountSnapshot
	for i := range input.Accounts {
		if input.Accounts[i].ID == accountID {
			snapshot = &input.Accounts[i]
			break
		}
	}
	if snapshot == nil {
		return domain.AllocationPlan{}, fmt.Errorf("%w: %s", ErrUnknownAccount, accountID)
	}

	// Acotar el pago a la banda factible de la propia cuenta:
	// [pago mínimo, min(saldo, fondos disponibles)]. Si la banda queda vacía
	// gana el límite inferior: un plan nunca paga menos del mínimo.
	upper := snapshot.CurrentBalance
	if input.AvailableFunds.LessThan(upper) {
		upper = input.AvailableFunds
	}
	payment := requestedPayment
	if payment.GreaterThan(upper) {
		payment = upper
	}
	if payment.LessThan(snapshot.MinimumPayment) {
		payment = snapshot.MinimumPayment
	}

	// Copiar las entradas: las demás cuentas quedan intactas
	result := plan
	result.Accounts = make([]domain.AccountPlan, len(plan.Accounts))
	copy(result.Accounts, plan.Accounts)

	newBalance := snapshot.CurrentBalance.Sub(payment)
	newUtil := utilizationRatio(newBalance, snapshot.CreditLimit)

	entry := &result.Accounts[entryIdx]
	entry.SuggestedPayment = payment
	entry.NewBalance = newBalance
	entry.NewUtilization = newUtil
	entry.UtilizationChangePoints = roundTo2Decimals((newUtil - entry.OldUtilization) * 100)

	// Recalcular agregados y score sobre los pagos vigentes
	// (mezcla de manuales y automáticos)
	limits := make(map[string]decimal.Decimal, len(input.Accounts))
	balances := make(map[string]decimal.Decimal, len(input.Accounts))
	for _, acc := range input.Accounts {
		limits[acc.ID] = acc.CreditLimit
		balances[acc.ID] = acc.CurrentBalance
	}

	totalBalance := decimal.Zero
	totalNewBalance := decimal.Zero
	totalLimit := decimal.Zero
	for _, acc := range result.Accounts {
		totalBalance = totalBalance.Add(balances[acc.AccountID])
		totalNewBalance = totalNewBalance.Add(acc.NewBalance)
		totalLimit = totalLimit.Add(limits[acc.AccountID])
	}

	totalOld := utilizationRatio(totalBalance, totalLimit)
	totalNew := utilizationRatio(totalNewBalance, totalLimit)
	result.TotalOldUtilization = totalOld
	result.TotalNewUtilization = totalNew
	result.UtilizationChangePoints = roundTo2Decimals((totalNew - totalOld) * 100)
	result.ScoreImpact = s.scoreService.EstimateScoreImpact(result.UtilizationChangePoints)

	return result, nil
}
