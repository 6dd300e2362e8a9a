package repository

import "payment-allocator/domain"

type PlanRepository interface {
	Save(input domain.AllocationInput, plan domain.AllocationPlan) error
}
