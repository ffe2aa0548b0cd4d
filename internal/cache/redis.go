package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"example.com/workload/internal/domain"
)

// Redis caches rendered summaries in Redis with a TTL as a backstop for
// missed invalidations.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis cache around the given client.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{client: client, ttl: ttl}
}

func summaryKey(trainerUsername string) string {
	return fmt.Sprintf("workload:summary:%s", trainerUsername)
}

// Get returns the cached summary, treating every error as a miss.
func (r *Redis) Get(ctx context.Context, trainerUsername string) (*domain.Summary, bool) {
	raw, err := r.client.Get(ctx, summaryKey(trainerUsername)).Result()
	if err != nil {
		return nil, false
	}
	var summary domain.Summary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// Set stores the summary under the trainer's key.
func (r *Redis) Set(ctx context.Context, trainerUsername string, summary *domain.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return r.client.Set(ctx, summaryKey(trainerUsername), raw, r.ttl).Err()
}

// Invalidate removes the trainer's cached summary.
func (r *Redis) Invalidate(ctx context.Context, trainerUsername string) error {
	return r.client.Del(ctx, summaryKey(trainerUsername)).Err()
}
