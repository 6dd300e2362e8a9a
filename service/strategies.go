package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"payment-allocator/domain"
)

// accountState es el estado de trabajo mutable de una cuenta durante la asignación.
// El motor es dueño del slice; las estrategias ordenan una copia propia y mutan
// a través de punteros, nunca el input del caller.
type accountState struct {
	snapshot   domain.AccountSnapshot
	payment    decimal.Decimal
	newBalance decimal.Decimal
}

func (a *accountState) utilization() float64 {
	return utilizationRatio(a.snapshot.CurrentBalance, a.snapshot.CreditLimit)
}

// pay aplica un abono adicional acotado por el saldo restante; devuelve lo abonado.
func (a *accountState) pay(amount decimal.Decimal) decimal.Decimal {
	if amount.GreaterThan(a.newBalance) {
		amount = a.newBalance
	}
	if !amount.IsPositive() {
		return decimal.Zero
	}
	a.payment = a.payment.Add(amount)
	a.newBalance = a.newBalance.Sub(amount)
	return amount
}

// utilizationRatio calcula saldo/límite como razón en [0,1].
func utilizationRatio(balance, limit decimal.Decimal) float64 {
	if !limit.IsPositive() {
		return 0
	}
	ratio, _ := balance.DivRound(limit, 8).Float64()
	return ratio
}

func sortedCopy(states []*accountState, less func(i, j *accountState) bool) []*accountState {
	order := make([]*accountState, len(states))
	copy(order, states)
	sort.Slice(order, func(i, j int) bool {
		return less(order[i], order[j])
	})
	return order
}

// Ordenar por utilización descendente; empates por saldo mayor y luego por ID.
func byUtilizationDesc(a, b *accountState) bool {
	ua, ub := a.utilization(), b.utilization()
	if ua != ub {
		return ua > ub
	}
	if !a.snapshot.CurrentBalance.Equal(b.snapshot.CurrentBalance) {
		return a.snapshot.CurrentBalance.GreaterThan(b.snapshot.CurrentBalance)
	}
	return a.snapshot.ID < b.snapshot.ID
}

// Ordenar por tasa de interés descendente; empates por saldo mayor y luego por ID.
func byInterestRateDesc(a, b *accountState) bool {
	if a.snapshot.InterestRateAnnualPercent != b.snapshot.InterestRateAnnualPercent {
		return a.snapshot.InterestRateAnnualPercent > b.snapshot.InterestRateAnnualPercent
	}
	if !a.snapshot.CurrentBalance.Equal(b.snapshot.CurrentBalance) {
		return a.snapshot.CurrentBalance.GreaterThan(b.snapshot.CurrentBalance)
	}
	return a.snapshot.ID < b.snapshot.ID
}

// Ordenar por saldo ascendente (deudas pequeñas primero); empates por ID.
func byBalanceAsc(a, b *accountState) bool {
	if !a.snapshot.CurrentBalance.Equal(b.snapshot.CurrentBalance) {
		return a.snapshot.CurrentBalance.LessThan(b.snapshot.CurrentBalance)
	}
	return a.snapshot.ID < b.snapshot.ID
}

// allocateUtilization distribuye el excedente minimizando la utilización agregada.
func allocateUtilization(states []*accountState, remaining decimal.Decimal) decimal.Decimal {
	order := sortedCopy(states, byUtilizationDesc)

	// Fase A: bajar cada cuenta al umbral saludable (30% del límite)
	for _, acc := range order {
		if !remaining.IsPositive() {
			return remaining
		}
		target := acc.snapshot.CreditLimit.Mul(healthyUtilizationTarget)
		needed := acc.newBalance.Sub(target)
		if !needed.IsPositive() {
			continue
		}
		if needed.GreaterThan(remaining) {
			needed = remaining
		}
		remaining = remaining.Sub(acc.pay(needed))
	}

	// Fase B: barrido proporcional en incrementos acotados para repartir
	// lo que queda entre las cuentas con saldo
	for remaining.IsPositive() {
		swept := decimal.Zero
		for _, acc := range order {
			if !remaining.IsPositive() {
				break
			}
			chunk := sweepChunk
			if chunk.GreaterThan(remaining) {
				chunk = remaining
			}
			paid := acc.pay(chunk)
			remaining = remaining.Sub(paid)
			swept = swept.Add(paid)
		}
		// Un barrido completo sin abonos significa que no queda saldo por pagar
		if swept.IsZero() {
			break
		}
	}

	return remaining
}

// allocateInterest distribuye el excedente a las tasas más altas primero.
func allocateInterest(states []*accountState, remaining decimal.Decimal) decimal.Decimal {
	return allocateSinglePass(sortedCopy(states, byInterestRateDesc), remaining)
}

// allocateSnowball extingue primero las deudas más pequeñas.
func allocateSnowball(states []*accountState, remaining decimal.Decimal) decimal.Decimal {
	return allocateSinglePass(sortedCopy(states, byBalanceAsc), remaining)
}

// allocateSinglePass abona en orden min(restante, saldo) hasta agotar fondos o cuentas.
func allocateSinglePass(order []*accountState, remaining decimal.Decimal) decimal.Decimal {
	for _, acc := range order {
		if !remaining.IsPositive() {
			break
		}
		amount := remaining
		if amount.GreaterThan(acc.newBalance) {
			amount = acc.newBalance
		}
		remaining = remaining.Sub(acc.pay(amount))
	}
	return remaining
}
