package ports

import (
	"context"
	"time"

	"netqoe/internal/core/domain"
)

// QoECalculator turns a parameter set into a scored result.
type QoECalculator interface {
	Compute(params domain.Parameters) domain.QoEResult
}

// QoERecorder receives every computed result and saved scenario.
type QoERecorder interface {
	RecordCalculation(result domain.QoEResult)
	RecordScenarioSaved()
}

// SaveScenarioRequest is the input of ScenarioService.SaveScenario.
type SaveScenarioRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  domain.Parameters `json:"parameters"`
	IsBaseline  bool              `json:"is_baseline"`
}

// Locker serializes updates to one key. The returned function releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type ScenarioService interface {
	Calculate(ctx context.Context, params domain.Parameters) domain.QoEResult
	EstimateWhatIf(ctx context.Context, in domain.WhatIfInput) (domain.WhatIfResult, error)
	SaveScenario(ctx context.Context, owner domain.Principal, req SaveScenarioRequest) (*domain.Scenario, error)
	GetScenario(ctx context.Context, requester domain.Principal, id domain.ScenarioID) (*domain.Scenario, error)
	ListScenarios(ctx context.Context, owner domain.Principal) ([]*domain.Scenario, error)
	DeleteScenario(ctx context.Context, requester domain.Principal, id domain.ScenarioID) error
	CompareScenarios(ctx context.Context, requester domain.Principal, a, b domain.ScenarioID) (*domain.ScenarioComparison, error)
	MarkRecommendationImplemented(ctx context.Context, requester domain.Principal, id domain.ScenarioID, index int) (*domain.Scenario, error)
}

type AuthService interface {
	GenerateToken(principal domain.Principal) (token string, expiresAt time.Time, err error)
	ValidateToken(token string) (*domain.Principal, error)
}
