package ratelimit

import (
	"context"
	"time"

	"github.com/oggyb/vibeu-engine/internal/cache"
	"github.com/oggyb/vibeu-engine/internal/domain"
	"github.com/oggyb/vibeu-engine/internal/repository"
)

// RedisStore keeps windows as expiring Redis counters.
type RedisStore struct {
	cache *cache.RedisCache
}

func NewRedisStore(c *cache.RedisCache) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) IncrementWithCeiling(
	ctx context.Context,
	visitorID string,
	action domain.ActionType,
	windowStart, resetAt time.Time,
	limit int,
) (int, bool, error) {
	key := s.cache.KeyForRateWindow(visitorID, string(action), windowStart)
	// the key embeds the window start, so a full window length is always
	// enough to outlive the reset
	ttl := resetAt.Sub(windowStart) + time.Minute
	return s.cache.IncrementWithCeiling(ctx, key, limit, ttl)
}

func (s *RedisStore) Release(ctx context.Context, visitorID string, action domain.ActionType, windowStart time.Time) error {
	_, err := s.cache.DecrementWithFloor(ctx, s.cache.KeyForRateWindow(visitorID, string(action), windowStart))
	return err
}

// SQLStore keeps windows as rows in the rate_limit_windows table.
type SQLStore struct {
	repo *repository.RateWindowRepository
}

func NewSQLStore(repo *repository.RateWindowRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) IncrementWithCeiling(
	ctx context.Context,
	visitorID string,
	action domain.ActionType,
	windowStart, _ time.Time,
	limit int,
) (int, bool, error) {
	return s.repo.IncrementWithCeiling(ctx, visitorID, string(action), windowStart.UTC(), limit)
}

func (s *SQLStore) Release(ctx context.Context, visitorID string, action domain.ActionType, windowStart time.Time) error {
	return s.repo.Decrement(ctx, visitorID, string(action), windowStart.UTC())
}
