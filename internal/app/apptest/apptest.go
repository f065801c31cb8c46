// Package apptest wires an AppContext over in-memory SQLite and miniredis for
// service and transport tests.
package apptest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/app"
	"github.com/oggyb/vibeu-engine/internal/cache"
	"github.com/oggyb/vibeu-engine/internal/config"
	"github.com/oggyb/vibeu-engine/internal/db/dbtest"
	"github.com/oggyb/vibeu-engine/internal/logger"
	"github.com/oggyb/vibeu-engine/internal/notify"
)

// Clock is a settable test clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Notifications records intents synchronously.
type Notifications struct {
	mu  sync.Mutex
	got []notify.Intent
}

func (n *Notifications) Notify(_ context.Context, in notify.Intent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, in)
}

// For returns the intents addressed to userID.
func (n *Notifications) For(userID string) []notify.Intent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Intent
	for _, in := range n.got {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out
}

func (n *Notifications) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.got)
}

// Env is a wired test environment.
type Env struct {
	App      *app.AppContext
	DB       *gorm.DB
	Redis    *miniredis.Miniredis
	Clock    *Clock
	Notified *Notifications
}

// Config returns engine defaults independent of the process environment.
func Config() *config.Config {
	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Engine = config.EngineConfig{
		TimeZone:         "UTC",
		StoreTimeout:     5 * time.Second,
		DefaultPageSize:  20,
		MaxPageSize:      50,
		RateBackend:      "redis",
		LikesFree:        100,
		RequestsFree:     10,
		RequestsPremium:  50,
		ReportsFree:      5,
		ReportsPremium:   10,
		RejectCooldown:   7 * 24 * time.Hour,
		UnfriendCooldown: 30 * 24 * time.Hour,
		SkipTTL:          24 * time.Hour,
		TrendingCacheTTL: 5 * time.Minute,
		NotifyQueueSize:  16,
		InboundRPS:       1000,
		InboundBurst:     1000,
	}
	return cfg
}

// New builds an Env at the given instant. mutate may adjust config first.
func New(t *testing.T, now time.Time, mutate ...func(*config.Config)) *Env {
	t.Helper()

	cfg := Config()
	for _, m := range mutate {
		m(cfg)
	}

	gdb := dbtest.Open(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := NewClock(now)
	notified := &Notifications{}
	appCtx, err := app.New(cfg, gdb, cache.NewFromClient(client), logger.Discard(),
		app.WithClock(clock.Now),
		app.WithNotifier(notified),
	)
	require.NoError(t, err)

	return &Env{App: appCtx, DB: gdb, Redis: mr, Clock: clock, Notified: notified}
}
