package reliability

import (
	"context"
	"errors"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"
	"netqoe/pkg/circuitbreaker"
	"netqoe/pkg/retry"
	"netqoe/pkg/tracing"

	"go.uber.org/zap"
)

// ScenarioRepositoryWrapper guards a remote ScenarioRepository with retries,
// a circuit breaker and a tracing span per operation.
type ScenarioRepositoryWrapper struct {
	repo    ports.ScenarioRepository
	backend string
	logger  *zap.SugaredLogger

	retryConfig    retry.Config
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// outcomes that say nothing about the health of the backend
var expectedErrors = []error{
	domain.ErrScenarioNotFound,
	domain.ErrScenarioExists,
	circuitbreaker.ErrOpen,
}

func isBackendFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	for _, target := range expectedErrors {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}

func NewScenarioRepositoryWrapper(
	repo ports.ScenarioRepository,
	backend string,
	retryConfig retry.Config,
	cbConfig circuitbreaker.Config,
	logger *zap.SugaredLogger,
) *ScenarioRepositoryWrapper {
	retryConfig.NonRetryableErrors = append(retryConfig.NonRetryableErrors, expectedErrors...)
	cbConfig.IsFailure = isBackendFailure

	w := &ScenarioRepositoryWrapper{
		repo:           repo,
		backend:        backend,
		logger:         logger,
		retryConfig:    retryConfig,
		circuitBreaker: circuitbreaker.New(cbConfig),
	}

	w.circuitBreaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("scenario repository circuit breaker state changed",
			"backend", backend,
			"from", from.String(),
			"to", to.String(),
		)
	})

	return w
}

var _ ports.ScenarioRepository = (*ScenarioRepositoryWrapper)(nil)

func guarded[T any](ctx context.Context, w *ScenarioRepositoryWrapper, op string, retryable bool, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := tracing.TraceRepositoryOperation(ctx, w.backend, op)
	defer span.End()

	call := func() (T, error) {
		return circuitbreaker.Execute(ctx, w.circuitBreaker, func() (T, error) {
			return fn(ctx)
		})
	}

	var (
		result T
		err    error
	)
	if retryable {
		result, err = retry.RetryWithResult(ctx, w.retryConfig, call)
	} else {
		result, err = call()
	}

	if err != nil && isBackendFailure(err) {
		tracing.RecordError(ctx, err)
		w.logger.Errorw("scenario repository operation failed",
			"backend", w.backend,
			"operation", op,
			"error", err,
		)
	}
	return result, err
}

// Create is not retried: a lost reply would come back as ErrScenarioExists.
func (w *ScenarioRepositoryWrapper) Create(ctx context.Context, scenario *domain.Scenario) error {
	_, err := guarded(ctx, w, "create", false, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.repo.Create(ctx, scenario)
	})
	return err
}

func (w *ScenarioRepositoryWrapper) GetByID(ctx context.Context, id domain.ScenarioID) (*domain.Scenario, error) {
	return guarded(ctx, w, "get", true, func(ctx context.Context) (*domain.Scenario, error) {
		return w.repo.GetByID(ctx, id)
	})
}

func (w *ScenarioRepositoryWrapper) Update(ctx context.Context, scenario *domain.Scenario) error {
	_, err := guarded(ctx, w, "update", true, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.repo.Update(ctx, scenario)
	})
	return err
}

func (w *ScenarioRepositoryWrapper) Delete(ctx context.Context, id domain.ScenarioID) error {
	_, err := guarded(ctx, w, "delete", true, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.repo.Delete(ctx, id)
	})
	return err
}

func (w *ScenarioRepositoryWrapper) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Scenario, error) {
	return guarded(ctx, w, "list", true, func(ctx context.Context) ([]*domain.Scenario, error) {
		return w.repo.ListByOwner(ctx, owner)
	})
}

// Ping bypasses the breaker so readiness reflects the backend itself.
func (w *ScenarioRepositoryWrapper) Ping(ctx context.Context) error {
	return w.repo.Ping(ctx)
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (w *ScenarioRepositoryWrapper) GetCircuitBreakerStats() circuitbreaker.Stats {
	return w.circuitBreaker.GetStats()
}
