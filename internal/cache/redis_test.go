package cache_test

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
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewFromClient(client), mr
}

func TestIncrementWithCeiling(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)
	key := c.KeyForRateWindow("u1", "like", time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))

	for i := 1; i <= 2; i++ {
		count, ok, err := c.IncrementWithCeiling(ctx, key, 2, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, i, count)
	}

	count, ok, err := c.IncrementWithCeiling(ctx, key, 2, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, count)

	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(time.Hour + time.Second)
	count, ok, err = c.IncrementWithCeiling(ctx, key, 2, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestIncrementWithCeiling_Concurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	const limit, callers = 10, 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := c.IncrementWithCeiling(ctx, "rate:like:u1:0", limit, time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, limit, granted)
}

func TestJSONCache(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)
	key := c.KeyForTrending("adult", "global", "Turkey")
	assert.Equal(t, "trending:adult:global:*", key)
	assert.Equal(t, "trending:minor:local:Spain", c.KeyForTrending("minor", "local", "Spain"))

	type entry struct {
		UserID    string
		LikeCount int64
	}

	var got []entry
	ok, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	want := []entry{{"a", 3}, {"b", 1}}
	require.NoError(t, c.SetJSON(ctx, key, want, time.Minute))
	ok, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, mr.Set(key, "{not json"))
	ok, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetJSON(ctx, key, want, time.Minute))
	mr.FastForward(2 * time.Minute)
	ok, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecrementWithFloor(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)
	key := "rate:like:u1:0"

	n, err := c.DecrementWithFloor(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, mr.Exists(key), "refund must not create a window")

	_, _, err = c.IncrementWithCeiling(ctx, key, 2, time.Hour)
	require.NoError(t, err)
	_, _, err = c.IncrementWithCeiling(ctx, key, 2, time.Hour)
	require.NoError(t, err)

	n, err = c.DecrementWithFloor(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, time.Hour, mr.TTL(key), "refund keeps the window expiry")

	_, ok, err := c.IncrementWithCeiling(ctx, key, 2, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "refunded unit is usable again")

	require.NoError(t, mr.Set(key, "0"))
	n, err = c.DecrementWithFloor(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRawGetSetDel(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	_, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k1", []byte("v1"), time.Minute))
	require.NoError(t, c.Set(ctx, "k2", []byte("v2"), time.Minute))
	val, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), val)

	require.NoError(t, c.Del(ctx, "k1", "k2", "missing"))
	assert.False(t, mr.Exists("k1"))
	assert.False(t, mr.Exists("k2"))
	require.NoError(t, c.Del(ctx))
}
