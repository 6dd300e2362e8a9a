package repository

import (
	"sync"

	"payment-allocator/domain"
)

// PlanRepositoryMemory is an in-memory implementation of PlanRepository.
type PlanRepositoryMemory struct {
	mu   sync.Mutex
	data []domain.AllocationPlan
}

// NewPlanRepositoryMemory creates a new in-memory plan repository.
func NewPlanRepositoryMemory() *PlanRepositoryMemory {
	return &PlanRepositoryMemory{
		data: []domain.AllocationPlan{},
	}
}

// Save stores the computed plan in memory.
func (r *PlanRepositoryMemory) Save(
	input domain.AllocationInput,
	plan domain.AllocationPlan,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, plan)
	return nil
}
