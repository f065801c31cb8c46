package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/vibeu-engine/internal/cache"
	"github.com/oggyb/vibeu-engine/internal/config"
	"github.com/oggyb/vibeu-engine/internal/db/dbtest"
	"github.com/oggyb/vibeu-engine/internal/domain"
	"github.com/oggyb/vibeu-engine/internal/ratelimit"
	"github.com/oggyb/vibeu-engine/internal/repository"
)

func redisStore(t *testing.T) *ratelimit.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimit.NewRedisStore(cache.NewFromClient(client))
}

func defaultLimits() map[domain.ActionType]ratelimit.Limits {
	return ratelimit.LimitsFromConfig(config.EngineConfig{
		LikesFree: 100, RequestsFree: 10, RequestsPremium: 50, ReportsFree: 5, ReportsPremium: 10,
	})
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestWindow_LocalMidnight(t *testing.T) {
	ist := time.FixedZone("UTC+3", 3*3600)
	l := ratelimit.NewLimiter(nil, defaultLimits(), ist, nil)

	// 22:30 UTC is already 01:30 next day in UTC+3
	start, reset := l.Window(time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC))
	assert.True(t, start.Equal(time.Date(2026, 10, 18, 0, 0, 0, 0, ist)))
	assert.True(t, reset.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, ist)))
}

func TestCheckAndIncrement_FreeRequests(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	l := ratelimit.NewLimiter(redisStore(t), defaultLimits(), time.UTC, fixedClock(now))

	for i := 1; i <= 10; i++ {
		d, err := l.CheckAndIncrement(ctx, "u1", domain.ActionRequest, false)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 10-i, d.Remaining)
	}

	d, err := l.CheckAndIncrement(ctx, "u1", domain.ActionRequest, false)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.True(t, d.ResetAt.Equal(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))

	// a separate action has its own window
	d, err = l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

func TestCheckAndIncrement_NextDayResets(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)
	l := ratelimit.NewLimiter(redisStore(t), defaultLimits(), time.UTC, func() time.Time { return clock })

	for i := 0; i < 5; i++ {
		_, err := l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
		require.NoError(t, err)
	}
	d, err := l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	clock = clock.Add(2 * time.Hour)
	d, err = l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestCheckAndIncrement_PremiumLikesUnlimited(t *testing.T) {
	ctx := context.Background()
	l := ratelimit.NewLimiter(redisStore(t), defaultLimits(), time.UTC, nil)

	for i := 0; i < 150; i++ {
		d, err := l.CheckAndIncrement(ctx, "p1", domain.ActionLike, true)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		assert.Equal(t, ratelimit.Unlimited, d.Remaining)
	}
}

func TestCheckAndIncrement_UnknownAction(t *testing.T) {
	l := ratelimit.NewLimiter(redisStore(t), defaultLimits(), time.UTC, nil)
	_, err := l.CheckAndIncrement(context.Background(), "u1", domain.ActionType("poke"), false)
	assert.Error(t, err)
}

// Concurrent requests from one user never exceed the ceiling and the
// remaining counts handed out are all distinct.
func TestCheckAndIncrement_ConcurrentNeverExceeds(t *testing.T) {
	ctx := context.Background()
	l := ratelimit.NewLimiter(redisStore(t), defaultLimits(), time.UTC, nil)

	const callers = 40
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		allowed   int
		remaining = map[int]bool{}
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.CheckAndIncrement(ctx, "u1", domain.ActionRequest, false)
			assert.NoError(t, err)
			if d.Allowed {
				mu.Lock()
				allowed++
				remaining[d.Remaining] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
	assert.Len(t, remaining, 10)
}

func TestSQLStore_Ceiling(t *testing.T) {
	ctx := context.Background()
	store := ratelimit.NewSQLStore(repository.NewRateWindowRepository(dbtest.Open(t)))
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	l := ratelimit.NewLimiter(store, defaultLimits(), time.UTC, fixedClock(now))

	for i := 0; i < 5; i++ {
		d, err := l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err := l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = l.CheckAndIncrement(ctx, "u1", domain.ActionReport, true)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "premium ceiling is higher")
	assert.Equal(t, 4, d.Remaining)
}

func TestRefund_GivesBackOneUnit(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	stores := map[string]ratelimit.WindowStore{
		"redis": redisStore(t),
		"sql":   ratelimit.NewSQLStore(repository.NewRateWindowRepository(dbtest.Open(t))),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			l := ratelimit.NewLimiter(store, defaultLimits(), time.UTC, fixedClock(now))

			// nothing taken yet: a refund must not open credit
			require.NoError(t, l.Refund(ctx, "u1", domain.ActionReport, false))

			for i := 0; i < 5; i++ {
				_, err := l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
				require.NoError(t, err)
			}
			d, err := l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
			require.NoError(t, err)
			require.False(t, d.Allowed)

			require.NoError(t, l.Refund(ctx, "u1", domain.ActionReport, false))
			d, err = l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
			require.NoError(t, err)
			assert.True(t, d.Allowed)
			assert.Equal(t, 0, d.Remaining)

			d, err = l.CheckAndIncrement(ctx, "u1", domain.ActionReport, false)
			require.NoError(t, err)
			assert.False(t, d.Allowed, "one refund frees exactly one slot")

			assert.NoError(t, l.Refund(ctx, "p1", domain.ActionLike, true), "unlimited actions have nothing to refund")
			assert.Error(t, l.Refund(ctx, "u1", domain.ActionType("poke"), false))
		})
	}
}
