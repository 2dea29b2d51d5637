package memory

import (
	"context"
	"sort"
	"sync"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"
)

type MemoryScenarioRepository struct {
	scenarios map[domain.ScenarioID]*domain.Scenario
	mu        sync.RWMutex
}

func NewMemoryScenarioRepository() ports.ScenarioRepository {
	return &MemoryScenarioRepository{
		scenarios: make(map[domain.ScenarioID]*domain.Scenario),
	}
}

func (r *MemoryScenarioRepository) Create(ctx context.Context, scenario *domain.Scenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenarios[scenario.ID]; exists {
		return domain.ErrScenarioExists
	}

	r.scenarios[scenario.ID] = scenario.Clone()
	return nil
}

func (r *MemoryScenarioRepository) GetByID(ctx context.Context, id domain.ScenarioID) (*domain.Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenario, exists := r.scenarios[id]
	if !exists {
		return nil, domain.ErrScenarioNotFound
	}

	return scenario.Clone(), nil
}

func (r *MemoryScenarioRepository) Update(ctx context.Context, scenario *domain.Scenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenarios[scenario.ID]; !exists {
		return domain.ErrScenarioNotFound
	}

	r.scenarios[scenario.ID] = scenario.Clone()
	return nil
}

func (r *MemoryScenarioRepository) Delete(ctx context.Context, id domain.ScenarioID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scenarios[id]; !exists {
		return domain.ErrScenarioNotFound
	}

	delete(r.scenarios, id)
	return nil
}

func (r *MemoryScenarioRepository) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Scenario, 0)
	for _, scenario := range r.scenarios {
		if scenario.OwnerID == owner {
			result = append(result, scenario.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryScenarioRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
