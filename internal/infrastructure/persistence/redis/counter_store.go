package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementScript atomically increments a key, arms its expiry on first hit,
// and returns the new count together with the remaining TTL in one round
// trip. Atomicity is the point: two concurrent hits on the same key must
// never read the same pre-increment value.
const incrementScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
    ttl = tonumber(ARGV[1])
end
return {count, ttl}
`

// CounterStore implements service.CounterStore on Redis.
type CounterStore struct {
	client redis.UniversalClient
	script *redis.Script
}

// NewCounterStore creates a Redis-backed counter store.
func NewCounterStore(client redis.UniversalClient) *CounterStore {
	return &CounterStore{
		client: client,
		script: redis.NewScript(incrementScript),
	}
}

// IncrementWithTTL atomically increments the key and returns the new count
// and the key's remaining TTL.
func (s *CounterStore) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	result, err := s.script.Run(ctx, s.client, []string{key}, ttl.Milliseconds()).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("increment %q: %w", key, err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("increment %q: unexpected script result %v", key, result)
	}
	count, ok1 := values[0].(int64)
	ttlMs, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("increment %q: unexpected script result types %v", key, result)
	}

	return count, time.Duration(ttlMs) * time.Millisecond, nil
}

// GetTTL returns the remaining TTL of the key.
func (s *CounterStore) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("pttl %q: %w", key, err)
	}
	return ttl, nil
}

// SetWithTTL stores a value under the key with the given TTL.
func (s *CounterStore) SetWithTTL(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
