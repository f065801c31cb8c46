package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/db/dbtest"
	"github.com/oggyb/vibeu-engine/internal/repository"
)

func TestLikeCreate_UniquePair(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	ok, err := store.Likes.Create(ctx, &db.Like{ID: "l1", FromUserID: "a", ToUserID: "b", CreatedAt: now})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Likes.Create(ctx, &db.Like{ID: "l2", FromUserID: "a", ToUserID: "b", CreatedAt: now})
	require.NoError(t, err)
	assert.False(t, ok)

	liked, err := store.Likes.HasLiked(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = store.Likes.HasLiked(ctx, "b", "a")
	require.NoError(t, err)
	assert.False(t, liked)

	likedIDs, err := store.Likes.LikedIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, likedIDs)
}

func TestFavorite_UniquePairAndOwnedDelete(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	ok, err := store.Favorites.Create(ctx, &db.Favorite{ID: "f1", UserID: "a", FavoritedUserID: "b", CreatedAt: now})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.Favorites.Create(ctx, &db.Favorite{ID: "f2", UserID: "a", FavoritedUserID: "b", CreatedAt: now})
	require.NoError(t, err)
	assert.False(t, ok, "duplicate pair is ignored")

	ok, err = store.Favorites.Create(ctx, &db.Favorite{ID: "f3", UserID: "a", FavoritedUserID: "c", CreatedAt: now.Add(time.Minute)})
	require.NoError(t, err)
	require.True(t, ok)

	favs, err := store.Favorites.ForUser(ctx, "a")
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "f3", favs[0].ID, "newest first")
	assert.Equal(t, "f1", favs[1].ID)

	deleted, err := store.Favorites.Delete(ctx, "f1", "someone-else")
	require.NoError(t, err)
	assert.False(t, deleted, "only the owner may delete")

	deleted, err = store.Favorites.Delete(ctx, "f1", "a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Favorites.Delete(ctx, "f1", "a")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRequest_PendingUniquenessAndTransition(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	ok, err := store.Requests.Create(ctx, &db.Request{ID: "r1", FromUserID: "a", ToUserID: "b", CreatedAt: now})
	require.NoError(t, err)
	assert.True(t, ok)

	// second pending request for the same ordered pair is refused
	ok, err = store.Requests.Create(ctx, &db.Request{ID: "r2", FromUserID: "a", ToUserID: "b", CreatedAt: now})
	require.NoError(t, err)
	assert.False(t, ok)

	// reverse direction is a different pair
	ok, err = store.Requests.Create(ctx, &db.Request{ID: "r3", FromUserID: "b", ToUserID: "a", CreatedAt: now})
	require.NoError(t, err)
	assert.True(t, ok)

	pending, err := store.Requests.HasPending(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, pending)

	moved, err := store.Requests.Transition(ctx, "r1", db.RequestRejected, now)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = store.Requests.Transition(ctx, "r1", db.RequestAccepted, now)
	require.NoError(t, err)
	assert.False(t, moved, "terminal requests never transition again")

	req, err := store.Requests.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, db.RequestRejected, req.Status)
	assert.Nil(t, req.PendingKey)
	require.NotNil(t, req.RespondedAt)

	pending, err = store.Requests.HasPending(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, pending)

	// once terminal, a fresh pending request for the pair is allowed
	ok, err = store.Requests.Create(ctx, &db.Request{ID: "r4", FromUserID: "a", ToUserID: "b", CreatedAt: now})
	require.NoError(t, err)
	assert.True(t, ok)

	incoming, err := store.Requests.PendingTo(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, incoming, 1)
	assert.Equal(t, "r4", incoming[0].ID)

	outgoing, err := store.Requests.PendingFrom(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
	assert.Equal(t, "r3", outgoing[0].ID)
}

func TestFriendship_NormalizedPair(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	f, err := store.Friendships.CreateOrGet(ctx, "f1", "zed", "amy", now)
	require.NoError(t, err)
	assert.Equal(t, "amy", f.UserAID)
	assert.Equal(t, "zed", f.UserBID)

	again, err := store.Friendships.CreateOrGet(ctx, "f2", "amy", "zed", now)
	require.NoError(t, err)
	assert.Equal(t, "f1", again.ID)

	for _, pair := range [][2]string{{"amy", "zed"}, {"zed", "amy"}} {
		ok, err := store.Friendships.Exists(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, ok)
	}

	list, err := store.Friendships.ForUser(ctx, "zed")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "amy", list[0].Other("zed"))

	removed, err := store.Friendships.DeletePair(ctx, "zed", "amy")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Friendships.Delete(ctx, "f1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCooldown_UpsertAndLazyExpiry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	require.NoError(t, store.Cooldowns.Upsert(ctx, db.Cooldown{
		UserID: "a", TargetUserID: "b", ActionType: "request", ExpiresAt: now.Add(-time.Hour),
	}))
	c, err := store.Cooldowns.Active(ctx, "a", "b", "request", now)
	require.NoError(t, err)
	assert.Nil(t, c)

	require.NoError(t, store.Cooldowns.Upsert(ctx, db.Cooldown{
		UserID: "a", TargetUserID: "b", ActionType: "request", ExpiresAt: now.Add(7 * 24 * time.Hour),
	}))
	c, err = store.Cooldowns.Active(ctx, "a", "b", "request", now)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.ExpiresAt.Equal(now.Add(7*24*time.Hour)))

	c, err = store.Cooldowns.Active(ctx, "b", "a", "request", now)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestSkips_RefreshAndExpire(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	require.NoError(t, store.Skips.Upsert(ctx, "a", "b", now.Add(-time.Minute)))
	require.NoError(t, store.Skips.Upsert(ctx, "a", "c", now.Add(time.Hour)))

	active, err := store.Skips.ActiveIDs(ctx, "a", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, active)

	require.NoError(t, store.Skips.Upsert(ctx, "a", "b", now.Add(24*time.Hour)))
	active, err = store.Skips.ActiveIDs(ctx, "a", now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, active)
}

func TestRateWindow_Ceiling(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))
	window := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		count, ok, err := store.RateWindows.IncrementWithCeiling(ctx, "v", "like", window, 3)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, i, count)
	}

	count, ok, err := store.RateWindows.IncrementWithCeiling(ctx, "v", "like", window, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, count)

	// a new window starts from zero
	count, ok, err = store.RateWindows.IncrementWithCeiling(ctx, "v", "like", window.AddDate(0, 0, 1), 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestRateWindow_Decrement(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))
	window := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.RateWindows.Decrement(ctx, "v", "like", window))
	count, err := store.RateWindows.Count(ctx, "v", "like", window)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 0; i < 2; i++ {
		_, _, err := store.RateWindows.IncrementWithCeiling(ctx, "v", "like", window, 2)
		require.NoError(t, err)
	}
	require.NoError(t, store.RateWindows.Decrement(ctx, "v", "like", window))
	count, err = store.RateWindows.Count(ctx, "v", "like", window)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.RateWindows.Decrement(ctx, "v", "like", window))
	require.NoError(t, store.RateWindows.Decrement(ctx, "v", "like", window))
	count, err = store.RateWindows.Count(ctx, "v", "like", window)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "counter floors at zero")
}

func TestTransaction_RollsBack(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	err := store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Friendships.CreateOrGet(ctx, "f1", "a", "b", now); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	ok, err := store.Friendships.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotifications_ForUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	require.NoError(t, store.Notifications.Create(ctx, &db.Notification{
		ID: "n1", UserID: "a", Type: "request_received", Payload: `{"from":"b"}`, CreatedAt: now,
	}))
	out, err := store.Notifications.ForUser(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "request_received", out[0].Type)
}

func TestReports_Create(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(dbtest.Open(t))

	require.NoError(t, store.Reports.Create(ctx, &db.Report{
		ID: "rep1", ReporterID: "a", ReportedUserID: "b", Reason: "spam", Status: "pending", CreatedAt: now,
	}))
	n, err := store.Reports.CountAgainst(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
