package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"payment-allocator/domain"
	"payment-allocator/repository"
)

type MockPlanRepository struct {
	SaveCalled bool
	ForceError bool
}

func (m *MockPlanRepository) Save(
	input domain.AllocationInput,
	plan domain.AllocationPlan,
) error {
	m.SaveCalled = true
	if m.ForceError {
		return errors.New("save error")
	}
	return nil
}

func newTestService(repo *MockPlanRepository) *AllocationService {
	return NewAllocationService(
		repo,
		repository.NewMockCache(),
		NewScoreService(DefaultBaselineScore),
		nil,
	)
}

func account(id string, balance, limit, minimum int64, rate float64) domain.AccountSnapshot {
	return domain.AccountSnapshot{
		ID:                        id,
		CurrentBalance:            decimal.NewFromInt(balance),
		CreditLimit:               decimal.NewFromInt(limit),
		MinimumPayment:            decimal.NewFromInt(minimum),
		InterestRateAnnualPercent: rate,
	}
}

func paymentFor(t *testing.T, plan domain.AllocationPlan, accountID string) decimal.Decimal {
	t.Helper()
	for _, acc := range plan.Accounts {
		if acc.AccountID == accountID {
			return acc.SuggestedPayment
		}
	}
	t.Fatalf("no plan entry for account %s", accountID)
	return decimal.Zero
}

func TestAllocate_SnowballOrdering(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	input := domain.AllocationInput{
		Accounts: []domain.AccountSnapshot{
			account("a", 500, 2000, 25, 20),
			account("b", 100, 1000, 10, 25),
			account("c", 900, 3000, 40, 15),
		},
		AvailableFunds: decimal.NewFromInt(200),
		Strategy:       domain.StrategySnowball,
	}

	plan, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mínimos 75, excedente 125: la cuenta más pequeña (b) se liquida
	// primero (90), el resto (35) va a la siguiente (a)
	if got := paymentFor(t, plan, "b"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected b payment 100, got %s", got)
	}
	if got := paymentFor(t, plan, "a"); !got.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected a payment 60, got %s", got)
	}
	if got := paymentFor(t, plan, "c"); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected c payment 40, got %s", got)
	}
	if !plan.UnallocatedFunds.IsZero() {
		t.Errorf("expected zero unallocated funds, got %s", plan.UnallocatedFunds)
	}
}

func TestAllocate_InterestOrdering(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	input := domain.AllocationInput{
		Accounts: []domain.AccountSnapshot{
			account("a", 500, 1000, 25, 29.9),
			account("b", 400, 1000, 20, 18),
		},
		AvailableFunds: decimal.NewFromInt(145),
		Strategy:       domain.StrategyInterest,
	}

	plan, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// El excedente (100) va completo a la tasa más alta
	if got := paymentFor(t, plan, "a"); !got.Equal(decimal.NewFromInt(125)) {
		t.Errorf("expected a payment 125, got %s", got)
	}
	if got := paymentFor(t, plan, "b"); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected b payment 20, got %s", got)
	}
}

func TestAllocate_UtilizationThresholdPass(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	input := domain.AllocationInput{
		Accounts: []domain.AccountSnapshot{
			account("x", 800, 1000, 0, 20),
			account("y", 200, 1000, 0, 20),
		},
		AvailableFunds: decimal.NewFromInt(300),
		Strategy:       domain.StrategyUtilization,
	}

	plan, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// x (utilización 80%) absorbe todos los fondos hacia el umbral del 30%;
	// y ya está por debajo y no recibe nada
	if got := paymentFor(t, plan, "x"); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected x payment 300, got %s", got)
	}
	if got := paymentFor(t, plan, "y"); !got.IsZero() {
		t.Errorf("expected y payment 0, got %s", got)
	}
}

func TestAllocate_UtilizationSweepSpreadsFunds(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	input := domain.AllocationInput{
		Accounts: []domain.AccountSnapshot{
			account("x", 100, 1000, 0, 20),
			account("y", 100, 1000, 0, 20),
		},
		AvailableFunds: decimal.NewFromInt(200),
		Strategy:       domain.StrategyUtilization,
	}

	plan, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ambas cuentas están bajo el umbral: la fase de barrido reparte en
	// incrementos acotados hasta liquidar ambas
	if got := paymentFor(t, plan, "x"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected x payment 100, got %s", got)
	}
	if got := paymentFor(t, plan, "y"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected y payment 100, got %s", got)
	}
	if !plan.UnallocatedFunds.IsZero() {
		t.Errorf("expected zero unallocated funds, got %s", plan.UnallocatedFunds)
	}
}

func TestAllocate_LeftoverWhenBalancesExhausted(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	input := domain.AllocationInput{
		Accounts: []domain.AccountSnapshot{
			account("a", 50, 1000, 5, 20),
		},
		AvailableFunds: decimal.NewFromInt(500),
		Strategy:       domain.StrategyUtilization,
	}

	plan, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := paymentFor(t, plan, "a"); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected full payoff of 50, got %s", got)
	}
	if !plan.UnallocatedFunds.Equal(decimal.NewFromInt(450)) {
		t.Errorf("expected 450 unallocated, got %s", plan.UnallocatedFunds)
	}
	if !plan.Accounts[0].NewBalance.IsZero() {
		t.Errorf("expected zero new balance, got %s", plan.Accounts[0].NewBalance)
	}
}

func TestAllocate_MinimumFirstAndConservation(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	strategies := []string{
		domain.StrategyUtilization,
		domain.StrategyInterest,
		domain.StrategySnowball,
	}

	for _, strategy := range strategies {
		input := domain.AllocationInput{
			Accounts: []domain.AccountSnapshot{
				account("a", 700, 1000, 35, 24),
				account("b", 150, 500, 15, 19),
				account("c", 2400, 3000, 90, 29),
			},
			AvailableFunds: decimal.NewFromInt(400),
			Strategy:       strategy,
		}

		plan, err := service.Allocate(input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy, err)
		}

		total := decimal.Zero
		for _, acc := range plan.Accounts {
			total = total.Add(acc.SuggestedPayment)

			var snapshot domain.AccountSnapshot
			for _, s := range input.Accounts {
				if s.ID == acc.AccountID {
					snapshot = s
				}
			}
			if acc.SuggestedPayment.LessThan(snapshot.MinimumPayment) {
				t.Errorf("%s: payment below minimum for %s", strategy, acc.AccountID)
			}
			if acc.NewBalance.IsNegative() {
				t.Errorf("%s: negative new balance for %s", strategy, acc.AccountID)
			}
			if acc.NewBalance.GreaterThan(snapshot.CurrentBalance) {
				t.Errorf("%s: new balance above current for %s", strategy, acc.AccountID)
			}
		}

		if total.GreaterThan(input.AvailableFunds) {
			t.Errorf("%s: payments %s exceed available funds", strategy, total)
		}
		// Con excedente y saldo pendiente la estrategia debe asignar algo
		minimumTotal := decimal.NewFromInt(140)
		if !total.GreaterThan(minimumTotal) {
			t.Errorf("%s: strategy allocated nothing beyond minimums", strategy)
		}
	}
}

func TestAllocate_InsufficientFundsBoundary(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	accounts := []domain.AccountSnapshot{
		account("a", 500, 1000, 25, 20),
		account("b", 300, 600, 50, 22),
	}

	// Un centavo por debajo de la suma de mínimos (75)
	input := domain.AllocationInput{
		Accounts:       accounts,
		AvailableFunds: decimal.RequireFromString("74.99"),
		Strategy:       domain.StrategySnowball,
	}

	_, err := service.Allocate(input)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Exactamente la suma de mínimos: cada cuenta paga su mínimo exacto
	input.AvailableFunds = decimal.NewFromInt(75)
	plan, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := paymentFor(t, plan, "a"); !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected a payment 25, got %s", got)
	}
	if got := paymentFor(t, plan, "b"); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected b payment 50, got %s", got)
	}
	if !plan.UnallocatedFunds.IsZero() {
		t.Errorf("expected zero unallocated funds, got %s", plan.UnallocatedFunds)
	}
}

func TestAllocate_ExcludesZeroBalanceAccounts(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	input := domain.AllocationInput{
		Accounts: []domain.AccountSnapshot{
			account("active", 500, 1000, 25, 20),
			account("paid-off", 0, 1000, 0, 20),
		},
		AvailableFunds: decimal.NewFromInt(100),
		Strategy:       domain.StrategySnowball,
	}

	plan, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Accounts) != 1 {
		t.Fatalf("expected 1 plan entry, got %d", len(plan.Accounts))
	}
	if plan.Accounts[0].AccountID != "active" {
		t.Errorf("expected entry for active account, got %s", plan.Accounts[0].AccountID)
	}
}

func TestAllocate_NoEligibleAccounts(t *testing.T) {

	service := newTestService(&MockPlanRepository{})

	input := domain.AllocationInput{
		Accounts: []domain.AccountSnapshot{
			account("a", 0, 1000, 0, 20),
		},
		AvailableFunds: decimal.NewFromInt(100),
		Strategy:       domain.StrategySnowball,
	}

	_, err := service.Allocate(input)
	if !errors.Is(err, ErrNoEligibleAccounts) {
		t.Fatalf("expected ErrNoEligibleAccounts, got %v", err)
	}

	input.Accounts = nil
	_, err = service.Allocate(input)
	if !errors.Is(err, ErrNoEligibleAccounts) {
		t.Fatalf("expected ErrNoEligibleAccounts for empty input, got %v", err)
	}
}

func TestAllocate_InvalidInputs(t *testing.T) {

	mockRepo := &MockPlanRepository{}
	service := newTestService(mockRepo)

	valid := account("a", 500, 1000, 25, 20)

	cases := []struct {
		name     string
		input    domain.AllocationInput
		expected error
	}{
		{
			name: "negative funds",
			input: domain.AllocationInput{
				Accounts:       []domain.AccountSnapshot{valid},
				AvailableFunds: decimal.NewFromInt(-1),
				Strategy:       domain.StrategySnowball,
			},
			expected: ErrInvalidFunds,
		},
		{
			name: "unknown strategy",
			input: domain.AllocationInput{
				Accounts:       []domain.AccountSnapshot{valid},
				AvailableFunds: decimal.NewFromInt(100),
				Strategy:       "compare",
			},
			expected: ErrInvalidStrategy,
		},
		{
			name: "minimum above balance",
			input: domain.AllocationInput{
				Accounts:       []domain.AccountSnapshot{account("a", 100, 1000, 200, 20)},
				AvailableFunds: decimal.NewFromInt(300),
				Strategy:       domain.StrategySnowball,
			},
			expected: ErrInvalidAccount,
		},
		{
			name: "zero credit limit",
			input: domain.AllocationInput{
				Accounts:       []domain.AccountSnapshot{account("a", 100, 0, 10, 20)},
				AvailableFunds: decimal.NewFromInt(300),
				Strategy:       domain.StrategySnowball,
			},
			expected: ErrInvalidAccount,
		},
		{
			name: "duplicate id",
			input: domain.AllocationInput{
				Accounts:       []domain.AccountSnapshot{valid, valid},
				AvailableFunds: decimal.NewFromInt(300),
				Strategy:       domain.StrategySnowball,
			},
			expected: ErrInvalidAccount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Allocate(tc.input)
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			if mockRepo.SaveCalled {
				t.Errorf("repository Save should NOT be called on failure")
			}
		})
	}
}

func TestAllocate_Deterministic(t *testing.T) {

	input := domain.AllocationInput{
		Accounts: []domain.AccountSnapshot{
			account("a", 700, 1000, 35, 24),
			account("b", 700, 1000, 35, 24), // empate deliberado en saldo y tasa
			account("c", 150, 500, 15, 19),
		},
		AvailableFunds: decimal.NewFromInt(400),
		Strategy:       domain.StrategyUtilization,
	}

	// Servicios independientes: mismo input, resultado idéntico
	first, err := newTestService(&MockPlanRepository{}).Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newTestService(&MockPlanRepository{}).Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Errorf("expected identical plans, got\n%s\n%s", firstJSON, secondJSON)
	}
}

func TestAllocate_SaveFailureIsNotFatal(t *testing.T) {

	mockRepo := &MockPlanRepository{ForceError: true}
	service := newTestService(mockRepo)

	input := domain.AllocationInput{
		Accounts:       []domain.AccountSnapshot{account("a", 500, 1000, 25, 20)},
		AvailableFunds: decimal.NewFromInt(100),
		Strategy:       domain.StrategySnowball,
	}

	if _, err := service.Allocate(input); err != nil {
		t.Fatalf("save failure should not fail the plan: %v", err)
	}
	if !mockRepo.SaveCalled {
		t.Errorf("expected repository Save to be called")
	}
}

func TestAllocate_UsesCache(t *testing.T) {

	cache := repository.NewMockCache()
	service := NewAllocationService(
		&MockPlanRepository{},
		cache,
		NewScoreService(DefaultBaselineScore),
		nil,
	)

	input := domain.AllocationInput{
		Accounts:       []domain.AccountSnapshot{account("a", 500, 1000, 25, 20)},
		AvailableFunds: decimal.NewFromInt(100),
		Strategy:       domain.StrategySnowball,
	}

	first, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.Data) != 1 {
		t.Fatalf("expected 1 cached plan, got %d", len(cache.Data))
	}

	second, err := service.Allocate(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Errorf("cached plan differs from computed plan")
	}
}
