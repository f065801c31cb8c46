// Package ratelimit enforces per-user daily quotas on throttled actions.
//
// Windows are fixed calendar days in the engine's time zone: a window starts
// at local midnight and resets at the next one. The counter increment and the
// ceiling check happen in one atomic step inside the WindowStore.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/oggyb/vibeu-engine/internal/config"
	"github.com/oggyb/vibeu-engine/internal/domain"
	"github.com/oggyb/vibeu-engine/internal/metrics"
)

// Unlimited is the Remaining value reported for actions without a ceiling.
const Unlimited = -1

// Decision is the outcome of one CheckAndIncrement call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limits holds the daily ceiling for free and premium users.
// Unlimited disables the ceiling.
type Limits struct {
	Free    int
	Premium int
}

// WindowStore increments a window counter only while it is below limit and
// returns the counter after the attempt. Release gives one unit back without
// going below zero.
type WindowStore interface {
	IncrementWithCeiling(ctx context.Context, visitorID string, action domain.ActionType, windowStart, resetAt time.Time, limit int) (int, bool, error)
	Release(ctx context.Context, visitorID string, action domain.ActionType, windowStart time.Time) error
}

// LimitsFromConfig builds the action table from engine config.
// Premium likes are always unlimited.
func LimitsFromConfig(cfg config.EngineConfig) map[domain.ActionType]Limits {
	return map[domain.ActionType]Limits{
		domain.ActionLike:    {Free: cfg.LikesFree, Premium: Unlimited},
		domain.ActionRequest: {Free: cfg.RequestsFree, Premium: cfg.RequestsPremium},
		domain.ActionReport:  {Free: cfg.ReportsFree, Premium: cfg.ReportsPremium},
	}
}

type Limiter struct {
	store  WindowStore
	limits map[domain.ActionType]Limits
	loc    *time.Location
	now    func() time.Time
}

// NewLimiter creates a limiter. A nil loc means UTC, a nil now means time.Now.
func NewLimiter(store WindowStore, limits map[domain.ActionType]Limits, loc *time.Location, now func() time.Time) *Limiter {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, limits: limits, loc: loc, now: now}
}

// Limit returns the daily ceiling for action, or Unlimited.
func (l *Limiter) Limit(action domain.ActionType, premium bool) (int, error) {
	lim, ok := l.limits[action]
	if !ok {
		return 0, fmt.Errorf("no rate limit configured for action %q", action)
	}
	if premium {
		return lim.Premium, nil
	}
	return lim.Free, nil
}

// Window returns the bounds of the daily window containing t.
func (l *Limiter) Window(t time.Time) (start, reset time.Time) {
	local := t.In(l.loc)
	y, m, d := local.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, l.loc)
	return start, start.AddDate(0, 0, 1)
}

// CheckAndIncrement consumes one unit of visitorID's daily quota for action.
//
// Behavior:
//   - Unlimited actions are always allowed and never counted.
//   - Otherwise the store increments only while count < limit; a refused
//     increment yields Allowed=false with Remaining=0.
//   - ResetAt is the next local midnight.
func (l *Limiter) CheckAndIncrement(ctx context.Context, visitorID string, action domain.ActionType, premium bool) (Decision, error) {
	limit, err := l.Limit(action, premium)
	if err != nil {
		return Decision{}, err
	}
	start, reset := l.Window(l.now())

	if limit == Unlimited {
		metrics.RateLimitDecisions.WithLabelValues(string(action), "unlimited").Inc()
		return Decision{Allowed: true, Remaining: Unlimited, ResetAt: reset}, nil
	}

	count, ok, err := l.store.IncrementWithCeiling(ctx, visitorID, action, start, reset, limit)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		metrics.RateLimitDecisions.WithLabelValues(string(action), "denied").Inc()
		return Decision{Allowed: false, Remaining: 0, ResetAt: reset}, nil
	}

	metrics.RateLimitDecisions.WithLabelValues(string(action), "allowed").Inc()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Remaining: remaining, ResetAt: reset}, nil
}

// Refund returns one unit taken by CheckAndIncrement to the window
// containing now. Unlimited actions have nothing to refund.
func (l *Limiter) Refund(ctx context.Context, visitorID string, action domain.ActionType, premium bool) error {
	limit, err := l.Limit(action, premium)
	if err != nil {
		return err
	}
	if limit == Unlimited {
		return nil
	}
	start, _ := l.Window(l.now())
	if err := l.store.Release(ctx, visitorID, action, start); err != nil {
		return err
	}
	metrics.RateLimitDecisions.WithLabelValues(string(action), "refunded").Inc()
	return nil
}
