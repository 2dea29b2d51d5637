package ports

import (
	"context"

	"netqoe/internal/core/domain"
)

// ScenarioRepository persists saved scenarios. Implementations return
// domain.ErrScenarioNotFound and domain.ErrScenarioExists for the matching
// conditions so callers can tell them apart from storage failures.
type ScenarioRepository interface {
	Create(ctx context.Context, scenario *domain.Scenario) error
	GetByID(ctx context.Context, id domain.ScenarioID) (*domain.Scenario, error)
	Update(ctx context.Context, scenario *domain.Scenario) error
	Delete(ctx context.Context, id domain.ScenarioID) error
	// ListByOwner returns the owner's scenarios, newest first.
	ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Scenario, error)
	Ping(ctx context.Context) error
}
