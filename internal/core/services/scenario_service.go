package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"
	"netqoe/pkg/distributed"
	"netqoe/pkg/tracing"
	"netqoe/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type scenarioService struct {
	engine   ports.QoECalculator
	repo     ports.ScenarioRepository
	recorder ports.QoERecorder // optional
	locker   ports.Locker
	logger   *zap.SugaredLogger
	now      func() time.Time
}

type ScenarioServiceOption func(*scenarioService)

// WithLocker replaces the in-process locker, e.g. with a Redis one when
// several replicas share a store.
func WithLocker(l ports.Locker) ScenarioServiceOption {
	return func(s *scenarioService) {
		if l != nil {
			s.locker = l
		}
	}
}

func NewScenarioService(
	engine ports.QoECalculator,
	repo ports.ScenarioRepository,
	recorder ports.QoERecorder,
	logger *zap.SugaredLogger,
	opts ...ScenarioServiceOption,
) ports.ScenarioService {
	s := &scenarioService{
		engine:   engine,
		repo:     repo,
		recorder: recorder,
		locker:   distributed.NewLocalLocker(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scenarioService) Calculate(ctx context.Context, params domain.Parameters) domain.QoEResult {
	return s.compute(ctx, "request", params)
}

func (s *scenarioService) EstimateWhatIf(ctx context.Context, in domain.WhatIfInput) (domain.WhatIfResult, error) {
	ctx, span := tracing.TraceQoECalculation(ctx, "whatif", 0)
	defer span.End()

	result, err := EstimateWhatIf(in)
	if err != nil {
		return domain.WhatIfResult{}, err
	}
	tracing.AnnotateQoEResult(ctx, result.Score, string(result.Rating), 0, map[string]float64{
		"radio":       result.DomainScores.Radio,
		"transport":   result.DomainScores.Transport,
		"core":        result.DomainScores.Core,
		"packet_core": result.DomainScores.PacketCore,
	})
	return result, nil
}

func (s *scenarioService) compute(ctx context.Context, source string, params domain.Parameters) domain.QoEResult {
	ctx, span := tracing.TraceQoECalculation(ctx, source, len(params))
	defer span.End()

	result := s.engine.Compute(params)
	tracing.AnnotateQoEResult(ctx, result.Score, string(result.Rating), len(result.Recommendations), result.Impacts.ByName())

	if s.recorder != nil {
		s.recorder.RecordCalculation(result)
	}
	return result
}

func (s *scenarioService) SaveScenario(ctx context.Context, owner domain.Principal, req ports.SaveScenarioRequest) (*domain.Scenario, error) {
	ctx, span := tracing.TraceScenarioOperation(ctx, "save", "", string(owner.UserID))
	defer span.End()

	if err := validation.ValidateScenarioName(req.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScenario, err)
	}
	if err := validation.ValidateScenarioDescription(req.Description); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidScenario, err)
	}
	if len(req.Parameters) == 0 {
		return nil, fmt.Errorf("%w: no parameters provided", domain.ErrInvalidScenario)
	}
	for name, v := range req.Parameters {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: parameter %s must be a finite number", domain.ErrInvalidScenario, name)
		}
	}

	result := s.compute(ctx, "scenario", req.Parameters)

	scenario := &domain.Scenario{
		ID:              domain.ScenarioID(uuid.NewString()),
		Name:            req.Name,
		Description:     req.Description,
		OwnerID:         owner.UserID,
		IsBaseline:      req.IsBaseline,
		Parameters:      req.Parameters.Clone(),
		Result:          result,
		Implementations: make([]domain.Implementation, len(result.Recommendations)),
		CreatedAt:       s.now().UTC(),
	}

	tracing.AddSpanAttributes(ctx, tracing.ScenarioIDKey.String(string(scenario.ID)))

	if err := s.repo.Create(ctx, scenario); err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to save scenario: %w", err)
	}
	if s.recorder != nil {
		s.recorder.RecordScenarioSaved()
	}

	s.logger.Infow("scenario saved",
		"scenario_id", scenario.ID,
		"owner", owner.UserID,
		"score", result.Score,
		"rating", result.Rating,
	)
	return scenario, nil
}

func (s *scenarioService) GetScenario(ctx context.Context, requester domain.Principal, id domain.ScenarioID) (*domain.Scenario, error) {
	scenario, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(requester, scenario) {
		return nil, domain.ErrForbidden
	}
	return scenario, nil
}

func (s *scenarioService) ListScenarios(ctx context.Context, owner domain.Principal) ([]*domain.Scenario, error) {
	ctx, span := tracing.TraceScenarioOperation(ctx, "list", "", string(owner.UserID))
	defer span.End()

	return s.repo.ListByOwner(ctx, owner.UserID)
}

func (s *scenarioService) DeleteScenario(ctx context.Context, requester domain.Principal, id domain.ScenarioID) error {
	ctx, span := tracing.TraceScenarioOperation(ctx, "delete", string(id), string(requester.UserID))
	defer span.End()

	if _, err := s.GetScenario(ctx, requester, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("scenario deleted", "scenario_id", id, "by", requester.UserID)
	return nil
}

func (s *scenarioService) CompareScenarios(ctx context.Context, requester domain.Principal, a, b domain.ScenarioID) (*domain.ScenarioComparison, error) {
	first, err := s.GetScenario(ctx, requester, a)
	if err != nil {
		return nil, err
	}
	second, err := s.GetScenario(ctx, requester, b)
	if err != nil {
		return nil, err
	}

	return &domain.ScenarioComparison{
		A:          first.ID,
		B:          second.ID,
		Parameters: CompareParameters(first.Parameters, second.Parameters),
		RatingA:    first.Result.Rating,
		RatingB:    second.Result.Rating,
		ScoreDelta: second.Result.Score - first.Result.Score,
		MetricsA:   first.Result.Metrics,
		MetricsB:   second.Result.Metrics,
	}, nil
}

func (s *scenarioService) MarkRecommendationImplemented(ctx context.Context, requester domain.Principal, id domain.ScenarioID, index int) (*domain.Scenario, error) {
	ctx, span := tracing.TraceScenarioOperation(ctx, "implement", string(id), string(requester.UserID))
	defer span.End()

	unlock, err := s.locker.Lock(ctx, "scenario:"+string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock scenario %s: %w", id, err)
	}
	defer unlock()

	scenario, err := s.GetScenario(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateRecommendationIndex(index, len(scenario.Result.Recommendations)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecommendationNotFound, err)
	}

	// Older records may predate implementation tracking.
	if len(scenario.Implementations) < len(scenario.Result.Recommendations) {
		padded := make([]domain.Implementation, len(scenario.Result.Recommendations))
		copy(padded, scenario.Implementations)
		scenario.Implementations = padded
	}

	if scenario.Implementations[index].Implemented {
		return scenario, nil
	}

	now := s.now().UTC()
	scenario.Implementations[index] = domain.Implementation{
		Implemented:   true,
		ImplementedBy: requester.UserID,
		ImplementedAt: &now,
	}

	if err := s.repo.Update(ctx, scenario); err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("failed to update scenario: %w", err)
	}

	s.logger.Infow("recommendation implemented",
		"scenario_id", id,
		"index", index,
		"domain", scenario.Result.Recommendations[index].Domain,
		"by", requester.UserID,
	)
	return scenario, nil
}

// CompareParameters diffs two submitted parameter sets. Keys missing on one
// side count as 0; keys with equal values are left out.
func CompareParameters(a, b domain.Parameters) map[domain.ParameterName]domain.ParameterDifference {
	diffs := make(map[domain.ParameterName]domain.ParameterDifference)

	keys := make(map[domain.ParameterName]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	for k := range keys {
		va, vb := a[k], b[k]
		if va == vb {
			continue
		}
		d := domain.ParameterDifference{A: va, B: vb, Difference: vb - va}
		if va != 0 {
			d.Percentage = (vb - va) / va * 100
		}
		diffs[k] = d
	}
	return diffs
}

func canAccess(p domain.Principal, scenario *domain.Scenario) bool {
	return p.IsAdmin() || scenario.OwnerID == p.UserID
}
