package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix         = "netqoe:"
	scenarioKeyPrefix = keyPrefix + "scenario:"
)

func scenarioKey(id domain.ScenarioID) string {
	return scenarioKeyPrefix + string(id)
}

func ownerKey(owner domain.UserID) string {
	return keyPrefix + "owner:" + string(owner) + ":scenarios"
}

func ownerMember(s *domain.Scenario) redis.Z {
	return redis.Z{
		Score:  float64(s.CreatedAt.UnixNano()),
		Member: string(s.ID),
	}
}

// createScript writes the owner index entry before the document so a failed
// ZADD leaves nothing behind. SET cannot fail on an existing key type.
var createScript = redis.NewScript(`
if redis.call("exists", KEYS[1]) == 1 then
	return 0
end
redis.call("zadd", KEYS[2], ARGV[2], ARGV[3])
redis.call("set", KEYS[1], ARGV[1])
return 1
`)

type RedisScenarioRepository struct {
	client *redis.Client
}

func NewRedisScenarioRepository(client *redis.Client) ports.ScenarioRepository {
	return &RedisScenarioRepository{client: client}
}

func (r *RedisScenarioRepository) Create(ctx context.Context, scenario *domain.Scenario) error {
	data, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	member := ownerMember(scenario)
	created, err := createScript.Run(ctx, r.client,
		[]string{scenarioKey(scenario.ID), ownerKey(scenario.OwnerID)},
		data, strconv.FormatFloat(member.Score, 'f', -1, 64), member.Member,
	).Int()
	if err != nil {
		return fmt.Errorf("failed to create scenario in Redis: %w", err)
	}
	if created == 0 {
		return domain.ErrScenarioExists
	}
	return nil
}

func (r *RedisScenarioRepository) GetByID(ctx context.Context, id domain.ScenarioID) (*domain.Scenario, error) {
	data, err := r.client.Get(ctx, scenarioKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrScenarioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario from Redis: %w", err)
	}

	return decodeScenario(data)
}

func (r *RedisScenarioRepository) Update(ctx context.Context, scenario *domain.Scenario) error {
	data, err := json.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	updated, err := r.client.SetXX(ctx, scenarioKey(scenario.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update scenario in Redis: %w", err)
	}
	if !updated {
		return domain.ErrScenarioNotFound
	}
	return nil
}

func (r *RedisScenarioRepository) Delete(ctx context.Context, id domain.ScenarioID) error {
	scenario, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, scenarioKey(id))
		pipe.ZRem(ctx, ownerKey(scenario.OwnerID), string(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete scenario from Redis: %w", err)
	}
	return nil
}

func (r *RedisScenarioRepository) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Scenario, error) {
	ids, err := r.client.ZRevRange(ctx, ownerKey(owner), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}

	scenarios := make([]*domain.Scenario, 0, len(ids))
	if len(ids) == 0 {
		return scenarios, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = scenarioKey(domain.ScenarioID(id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}

	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry outlived its document.
			continue
		}
		scenario, err := decodeScenario([]byte(raw))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

func (r *RedisScenarioRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeScenario(data []byte) (*domain.Scenario, error) {
	var scenario domain.Scenario
	if err := json.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario: %w", err)
	}
	return &scenario, nil
}
