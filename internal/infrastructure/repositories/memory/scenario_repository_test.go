package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"netqoe/internal/core/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScenario(id string, owner domain.UserID, createdAt time.Time) *domain.Scenario {
	return &domain.Scenario{
		ID:         domain.ScenarioID(id),
		Name:       "scenario " + id,
		OwnerID:    owner,
		Parameters: domain.Parameters{domain.ParamSINR: 12},
		Result: domain.QoEResult{
			Score:           80,
			Rating:          domain.RatingGood,
			Parameters:      domain.Parameters{domain.ParamSINR: 12},
			Recommendations: []domain.Recommendation{{Domain: domain.DomainRAN, Severity: domain.SeverityHigh}},
		},
		Implementations: make([]domain.Implementation, 1),
		CreatedAt:       createdAt,
	}
}

func TestMemoryScenarioRepository_CRUD(t *testing.T) {
	repo := NewMemoryScenarioRepository()
	ctx := context.Background()
	s := newScenario("s1", "alice", time.Now())

	require.NoError(t, repo.Create(ctx, s))
	assert.ErrorIs(t, repo.Create(ctx, s), domain.ErrScenarioExists)

	got, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("GetByID mismatch (-want +got):\n%s", diff)
	}

	got.Name = "renamed"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", again.Name)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.GetByID(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrScenarioNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "s1"), domain.ErrScenarioNotFound)
	assert.ErrorIs(t, repo.Update(ctx, s), domain.ErrScenarioNotFound)
}

func TestMemoryScenarioRepository_NoAliasing(t *testing.T) {
	repo := NewMemoryScenarioRepository()
	ctx := context.Background()
	s := newScenario("s1", "alice", time.Now())
	require.NoError(t, repo.Create(ctx, s))

	// Mutating the caller's copy after Create must not leak into storage.
	s.Parameters[domain.ParamSINR] = -5
	s.Implementations[0].Implemented = true

	got, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.Parameters[domain.ParamSINR])
	assert.False(t, got.Implementations[0].Implemented)

	// Nor must mutating a fetched copy.
	got.Result.Recommendations[0].Message = "changed"
	fresh, err := repo.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Result.Recommendations[0].Message)
}

func TestMemoryScenarioRepository_ListByOwnerNewestFirst(t *testing.T) {
	repo := NewMemoryScenarioRepository()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newScenario("old", "alice", base)))
	require.NoError(t, repo.Create(ctx, newScenario("new", "alice", base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newScenario("mid", "alice", base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newScenario("other", "bob", base.Add(2*time.Hour))))

	list, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)

	ids := make([]domain.ScenarioID, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []domain.ScenarioID{"new", "mid", "old"}, ids)

	empty, err := repo.ListByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryScenarioRepository_ConcurrentAccess(t *testing.T) {
	repo := NewMemoryScenarioRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			assert.NoError(t, repo.Create(ctx, newScenario(id, "alice", time.Now())))
			_, err := repo.GetByID(ctx, domain.ScenarioID(id))
			assert.NoError(t, err)
			_, err = repo.ListByOwner(ctx, "alice")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestMemoryScenarioRepository_Ping(t *testing.T) {
	repo := NewMemoryScenarioRepository()
	assert.NoError(t, repo.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}
