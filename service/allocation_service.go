package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payment-allocator/domain"
	"payment-allocator/repository"
)

// roundTo2Decimals redondea un float64 a 2 decimales
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

type AllocationService struct {
	repo         repository.PlanRepository
	cache        repository.CacheRepository
	scoreService *ScoreService
	logger       *zap.Logger
}

// NewAllocationService creates a new AllocationService with the given repositories.
func NewAllocationService(
	repo repository.PlanRepository,
	cache repository.CacheRepository,
	scoreService *ScoreService,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		repo:         repo,
		cache:        cache,
		scoreService: scoreService,
		logger:       logger,
	}
}

// Allocate calcula cuánto pagar a cada cuenta: valida el input, reserva los
// pagos mínimos, delega el excedente a la estrategia seleccionada y deriva
// las métricas de utilización y score. Es una función pura sobre su input;
// con el mismo input el resultado es idéntico en cada llamada.
func (s *AllocationService) Allocate(
	input domain.AllocationInput,
) (domain.AllocationPlan, error) {

	// Validaciones
	if err := validateInput(input); err != nil {
		return domain.AllocationPlan{}, err
	}

	// Consultar cache: el cálculo es determinista, un hit equivale a recalcular
	cacheKey := planCacheKey(input)
	if cacheKey != "" {
		if cached, ok := s.cache.Get(cacheKey); ok {
			var plan domain.AllocationPlan
			if err := json.Unmarshal([]byte(cached), &plan); err == nil {
				return plan, nil
			}
		}
	}

	// Particionar cuentas elegibles (saldo > 0) e inicializar cada una
	// con su pago mínimo
	states := make([]*accountState, 0, len(input.Accounts))
	for _, acc := range input.Accounts {
		if !acc.CurrentBalance.IsPositive() {
			continue
		}
		states = append(states, &accountState{
			snapshot:   acc,
			payment:    acc.MinimumPayment,
			newBalance: acc.CurrentBalance.Sub(acc.MinimumPayment),
		})
	}
	if len(states) == 0 {
		return domain.AllocationPlan{}, ErrNoEligibleAccounts
	}

	// Los mínimos se reservan siempre primero; si no alcanzan no hay plan
	minimumTotal := decimal.Zero
	for _, st := range states {
		minimumTotal = minimumTotal.Add(st.snapshot.MinimumPayment)
	}
	if input.AvailableFunds.LessThan(minimumTotal) {
		return domain.AllocationPlan{}, fmt.Errorf(
			"%w: se requiere al menos $%s", ErrInsufficientFunds, minimumTotal.StringFixed(2))
	}

	remaining := input.AvailableFunds.Sub(minimumTotal)

	// Delegar el excedente a la estrategia seleccionada
	var leftover decimal.Decimal
	switch input.Strategy {
	case domain.StrategyUtilization:
		leftover = allocateUtilization(states, remaining)
	case domain.StrategyInterest:
		leftover = allocateInterest(states, remaining)
	case domain.StrategySnowball:
		leftover = allocateSnowball(states, remaining)
	}

	plan := s.buildPlan(input.Strategy, states, leftover)

	// Guardar el resultado (no crítico si falla)
	if err := s.repo.Save(input, plan); err != nil {
		s.logger.Warn("failed to save allocation plan", zap.Error(err))
	}
	if cacheKey != "" {
		if data, err := json.Marshal(plan); err == nil {
			if err := s.cache.Set(cacheKey, string(data)); err != nil {
				s.logger.Warn("failed to cache allocation plan", zap.Error(err))
			}
		}
	}

	return plan, nil
}

func validateInput(input domain.AllocationInput) error {
	strategies := map[string]bool{
		domain.StrategyUtilization: true,
		domain.StrategyInterest:    true,
		domain.StrategySnowball:    true,
	}
	if !strategies[input.Strategy] {
		return ErrInvalidStrategy
	}

	if input.AvailableFunds.IsNegative() {
		return ErrInvalidFunds
	}
	if input.AvailableFunds.GreaterThan(MaxAvailableFunds) {
		return fmt.Errorf("%w: el monto excede el máximo de $%s",
			ErrInvalidFunds, MaxAvailableFunds.StringFixed(2))
	}
	if len(input.Accounts) > MaxAccountsPerRequest {
		return fmt.Errorf("%w: número de cuentas excede el máximo de %d",
			ErrInvalidAccount, MaxAccountsPerRequest)
	}

	// Validar IDs únicos e invariantes por cuenta
	seen := make(map[string]bool)
	for _, acc := range input.Accounts {
		if acc.ID == "" {
			return fmt.Errorf("%w: id de cuenta vacío", ErrInvalidAccount)
		}
		if seen[acc.ID] {
			return fmt.Errorf("%w: id de cuenta duplicado: %s", ErrInvalidAccount, acc.ID)
		}
		seen[acc.ID] = true

		if acc.CurrentBalance.IsNegative() {
			return fmt.Errorf("%w: saldo negativo en %s", ErrInvalidAccount, acc.ID)
		}
		if !acc.CreditLimit.IsPositive() {
			return fmt.Errorf("%w: límite de crédito inválido en %s", ErrInvalidAccount, acc.ID)
		}
		if acc.MinimumPayment.IsNegative() {
			return fmt.Errorf("%w: pago mínimo negativo en %s", ErrInvalidAccount, acc.ID)
		}
		if acc.MinimumPayment.GreaterThan(acc.CurrentBalance) {
			return fmt.Errorf("%w: pago mínimo de %s mayor que su saldo", ErrInvalidAccount, acc.ID)
		}
		if acc.InterestRateAnnualPercent < 0 {
			return fmt.Errorf("%w: tasa de interés inválida en %s", ErrInvalidAccount, acc.ID)
		}
	}

	return nil
}

// buildPlan deriva las métricas por cuenta y agregadas en el orden del caller.
func (s *AllocationService) buildPlan(
	strategy string,
	states []*accountState,
	leftover decimal.Decimal,
) domain.AllocationPlan {

	accounts := make([]domain.AccountPlan, 0, len(states))
	totalBalance := decimal.Zero
	totalNewBalance := decimal.Zero
	totalLimit := decimal.Zero

	for _, st := range states {
		oldUtil := utilizationRatio(st.snapshot.CurrentBalance, st.snapshot.CreditLimit)
		newUtil := utilizationRatio(st.newBalance, st.snapshot.CreditLimit)

		accounts = append(accounts, domain.AccountPlan{
			AccountID:               st.snapshot.ID,
			SuggestedPayment:        st.payment,
			NewBalance:              st.newBalance,
			OldUtilization:          oldUtil,
			NewUtilization:          newUtil,
			UtilizationChangePoints: roundTo2Decimals((newUtil - oldUtil) * 100),
		})

		totalBalance = totalBalance.Add(st.snapshot.CurrentBalance)
		totalNewBalance = totalNewBalance.Add(st.newBalance)
		totalLimit = totalLimit.Add(st.snapshot.CreditLimit)
	}

	// Los agregados se calculan sobre saldos y límites sumados, no promediando
	totalOld := utilizationRatio(totalBalance, totalLimit)
	totalNew := utilizationRatio(totalNewBalance, totalLimit)
	changePoints := roundTo2Decimals((totalNew - totalOld) * 100)

	return domain.AllocationPlan{
		Strategy:                strategy,
		Accounts:                accounts,
		TotalOldUtilization:     totalOld,
		TotalNewUtilization:     totalNew,
		UtilizationChangePoints: changePoints,
		UnallocatedFunds:        leftover,
		ScoreImpact:             s.scoreService.EstimateScoreImpact(changePoints),
	}
}

// planCacheKey deriva una clave estable del input canónico.
func planCacheKey(input domain.AllocationInput) string {
	data, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return "plan:" + hex.EncodeToString(sum[:])
}
