package skips_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/vibeu-engine/internal/db/dbtest"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/repository"
	"github.com/oggyb/vibeu-engine/internal/skips"
)

func TestRegistry_SkipExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	reg := skips.NewRegistry(repository.NewSkipRepository(dbtest.Open(t)), 24*time.Hour, func() time.Time { return clock })

	expires, err := reg.Skip(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, expires.Equal(clock.Add(24*time.Hour)))

	ids, err := reg.ActiveSkippedIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	clock = clock.Add(25 * time.Hour)
	ids, err = reg.ActiveSkippedIDs(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRegistry_RepeatSkipRefreshes(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	reg := skips.NewRegistry(repository.NewSkipRepository(dbtest.Open(t)), 24*time.Hour, func() time.Time { return clock })

	_, err := reg.Skip(ctx, "a", "b")
	require.NoError(t, err)

	clock = clock.Add(20 * time.Hour)
	_, err = reg.Skip(ctx, "a", "b")
	require.NoError(t, err)

	clock = clock.Add(10 * time.Hour)
	ids, err := reg.ActiveSkippedIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestRegistry_InvalidTargets(t *testing.T) {
	reg := skips.NewRegistry(repository.NewSkipRepository(dbtest.Open(t)), time.Hour, nil)

	_, err := reg.Skip(context.Background(), "a", "a")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, err = reg.Skip(context.Background(), "a", "")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}
