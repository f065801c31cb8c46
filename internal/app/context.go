package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/cache"
	"github.com/oggyb/vibeu-engine/internal/config"
	"github.com/oggyb/vibeu-engine/internal/notify"
	"github.com/oggyb/vibeu-engine/internal/ratelimit"
	"github.com/oggyb/vibeu-engine/internal/repository"
	"github.com/oggyb/vibeu-engine/internal/scoring"
	"github.com/oggyb/vibeu-engine/internal/skips"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Config     *config.Config

	Store    *repository.Store
	Limiter  *ratelimit.Limiter
	Skips    *skips.Registry
	Scorer   *scoring.Engine
	Notifier notify.Notifier

	Clock func() time.Time
	NewID func() string

	loc *time.Location
}

// Option overrides a collaborator, mostly for tests.
type Option func(*AppContext)

func WithNotifier(n notify.Notifier) Option { return func(a *AppContext) { a.Notifier = n } }

func WithClock(now func() time.Time) Option { return func(a *AppContext) { a.Clock = now } }

func WithIDs(newID func() string) Option { return func(a *AppContext) { a.NewID = newID } }

func WithScorer(e *scoring.Engine) Option { return func(a *AppContext) { a.Scorer = e } }

// New creates a new AppContext
//
// Behavior:
//   - Builds the repository Store over db.
//   - Picks the rate-limit backend from config; without a Redis client the
//     SQL window table is used.
//   - Loads scoring weights from SCORING_CONFIG when set.
//   - Defaults: no-op notifier, wall clock, random UUIDs.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, opts ...Option) (*AppContext, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Config:     cfg,
		Store:      repository.NewStore(db),
		Notifier:   notify.Nop{},
		Clock:      time.Now,
		NewID:      uuid.NewString,
		loc:        cfg.Engine.Location(),
	}
	for _, o := range opts {
		o(a)
	}

	if a.Scorer == nil {
		w, err := scoring.LoadWeights(cfg.Engine.ScoringFile)
		if err != nil {
			return nil, err
		}
		a.Scorer = scoring.NewEngine(w)
	}

	var windows ratelimit.WindowStore
	if cfg.Engine.RateBackend == "db" || rdb == nil {
		windows = ratelimit.NewSQLStore(a.Store.RateWindows)
		logger.Debug("rate limiter backend", "backend", "db")
	} else {
		windows = ratelimit.NewRedisStore(rdb)
		logger.Debug("rate limiter backend", "backend", "redis")
	}
	a.Limiter = ratelimit.NewLimiter(windows, ratelimit.LimitsFromConfig(cfg.Engine), a.loc, a.Clock)
	a.Skips = skips.NewRegistry(a.Store.Skips, cfg.Engine.SkipTTL, a.Clock)

	return a, nil
}

// Now is the current instant in UTC, the form every stored timestamp uses.
func (a *AppContext) Now() time.Time { return a.Clock().UTC() }

// LocalNow is the current instant in the engine's time zone. Calendar-day
// decisions (age, quota windows) use it.
func (a *AppContext) LocalNow() time.Time { return a.Clock().In(a.loc) }

// WithStoreTimeout bounds ctx by the configured store timeout.
func (a *AppContext) WithStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Config.Engine.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.Config.Engine.StoreTimeout)
}
