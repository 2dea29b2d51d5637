package monitoring

import (
	"context"
	"time"

	"netqoe/internal/core/ports"
)

// AddRepositoryCheck adds a scenario storage reachability check
func (h *HealthChecker) AddRepositoryCheck(repo ports.ScenarioRepository, interval, timeout time.Duration) {
	h.AddCheck("repository", func(ctx context.Context) (bool, error) {
		if err := repo.Ping(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, interval, timeout)
}

// IsReady checks if the service is ready to accept traffic
func (h *HealthChecker) IsReady(ctx context.Context) bool {
	return h.CheckAll(ctx).Status == StatusHealthy
}
