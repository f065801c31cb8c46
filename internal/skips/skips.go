// Package skips keeps the short-lived "not now" list that hides profiles from
// a user's discovery feed.
package skips

import (
	"context"
	"time"

	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
)

// Store is the persistence the registry needs.
type Store interface {
	Upsert(ctx context.Context, userID, skippedID string, expiresAt time.Time) error
	ActiveIDs(ctx context.Context, userID string, now time.Time) ([]string, error)
}

type Registry struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewRegistry creates a registry whose skips last ttl.
func NewRegistry(store Store, ttl time.Duration, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{store: store, ttl: ttl, now: now}
}

// Skip hides targetID from userID until now+ttl. Skipping again refreshes
// the expiry. Returns the new expiry.
func (r *Registry) Skip(ctx context.Context, userID, targetID string) (time.Time, error) {
	if targetID == "" {
		return time.Time{}, svcErr.InvalidArgument("target user id is required")
	}
	if userID == targetID {
		return time.Time{}, svcErr.InvalidArgument("cannot skip yourself")
	}
	expires := r.now().UTC().Add(r.ttl)
	if err := r.store.Upsert(ctx, userID, targetID, expires); err != nil {
		return time.Time{}, svcErr.Normalize(err)
	}
	return expires, nil
}

// ActiveSkippedIDs lists ids userID skipped that have not expired yet.
func (r *Registry) ActiveSkippedIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.store.ActiveIDs(ctx, userID, r.now().UTC())
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	return ids, nil
}
