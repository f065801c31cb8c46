package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/vibeu-engine/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

// NewFromClient wraps an existing client (tests use miniredis).
func NewFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// Set stores raw bytes at key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

// Get returns the bytes at key. A miss returns false and no error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Del drops keys; missing keys are ignored.
func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}

// incrWithCeiling increments KEYS[1] only while it is below ARGV[1] and sets
// the expiry (ARGV[2], millis) when the key is created.
// Returns {count, allowed}.
var incrWithCeiling = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return {current, 0}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {current, 1}
`)

// decrWithFloor decrements KEYS[1] when it exists and is above zero; the
// expiry is left untouched. Returns the counter after the attempt.
var decrWithFloor = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 0 then
  return current
end
return redis.call('DECR', KEYS[1])
`)

// KeyForRateWindow generates the Redis key of one daily action window.
func (c *RedisCache) KeyForRateWindow(visitorID, action string, windowStart time.Time) string {
	return fmt.Sprintf("rate:%s:%s:%d", action, visitorID, windowStart.Unix())
}

// IncrementWithCeiling atomically bumps key if it is below limit.
//
// Behavior:
//   - Runs as one Lua script, so concurrent callers never overshoot limit.
//   - ttl is applied when the window key is first created.
//   - Returns the counter after the attempt and whether this call was counted.
func (c *RedisCache) IncrementWithCeiling(ctx context.Context, key string, limit int, ttl time.Duration) (int, bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	res, err := incrWithCeiling.Run(ctx, c.Client, []string{key}, limit, ttl.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("rate window script: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("rate window script: unexpected reply %v", res)
	}
	return int(res[0]), res[1] == 1, nil
}

// DecrementWithFloor gives back one unit taken by IncrementWithCeiling.
// The counter never goes below zero and a missing key is not created.
func (c *RedisCache) DecrementWithFloor(ctx context.Context, key string) (int, error) {
	n, err := decrWithFloor.Run(ctx, c.Client, []string{key}).Int64()
	if err != nil {
		return 0, fmt.Errorf("rate window refund script: %w", err)
	}
	return int(n), nil
}

// KeyForTrending generates the cache key for a trending list scope.
func (c *RedisCache) KeyForTrending(bracket, mode, country string) string {
	if mode != "local" {
		country = "*"
	}
	return fmt.Sprintf("trending:%s:%s:%s", bracket, mode, country)
}

// GetJSON decodes the cached value at key into dst. A miss returns false
// and no error; an undecodable entry also counts as a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	val, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON caches v as JSON for ttl.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl)
}
