package discovery_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/vibeu-engine/internal/agegroup"
	"github.com/oggyb/vibeu-engine/internal/app/apptest"
	"github.com/oggyb/vibeu-engine/internal/db/dbtest"
	"github.com/oggyb/vibeu-engine/internal/domain"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/service/discovery"
	"github.com/oggyb/vibeu-engine/internal/utils/pagination"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*discovery.Service, *apptest.Env) {
	t.Helper()
	env := apptest.New(t, now)
	return discovery.NewService(env.App), env
}

func profileIDs(ps []discovery.Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

// collect walks every page of the feed and returns all ids in page order.
func collect(t *testing.T, svc *discovery.Service, userID string, mode domain.Mode, limit int) []string {
	t.Helper()
	var (
		all    []string
		cursor string
	)
	for page := 0; page < 100; page++ {
		res, err := svc.Feed(context.Background(), discovery.FeedRequest{UserID: userID, Mode: mode, Cursor: cursor, Limit: limit})
		require.NoError(t, err)
		all = append(all, profileIDs(res.Profiles)...)
		if !res.HasMore {
			assert.Nil(t, res.NextCursor)
			return all
		}
		require.NotNil(t, res.NextCursor)
		cursor = *res.NextCursor
	}
	t.Fatal("feed never ended")
	return nil
}

func TestFeed_AgeIsolation(t *testing.T) {
	svc, env := setup(t)

	for i := 0; i < 6; i++ {
		dbtest.CreateUser(t, env.DB, now, fmt.Sprintf("minor-%d", i), dbtest.BornYearsAgo(now, 15+i%2, 10))
		dbtest.CreateUser(t, env.DB, now, fmt.Sprintf("adult-%d", i), dbtest.BornYearsAgo(now, 18+i*5, 1))
	}

	for _, viewer := range []string{"minor-0", "adult-0"} {
		v, err := env.App.Store.Users.Get(context.Background(), viewer)
		require.NoError(t, err)
		want, _ := agegroup.BracketOf(v.BirthDate, now)

		for _, id := range collect(t, svc, viewer, domain.ModeGlobal, 3) {
			u, err := env.App.Store.Users.Get(context.Background(), id)
			require.NoError(t, err)
			got, ok := agegroup.BracketOf(u.BirthDate, now)
			require.True(t, ok)
			assert.Equal(t, want, got, "viewer %s saw %s", viewer, id)
		}
	}
}

func TestFeed_LocalityContainment(t *testing.T) {
	svc, env := setup(t)

	dbtest.CreateUser(t, env.DB, now, "me")
	dbtest.CreateUser(t, env.DB, now, "tr-1")
	dbtest.CreateUser(t, env.DB, now, "tr-2", dbtest.City("Ankara"))
	dbtest.CreateUser(t, env.DB, now, "de-1", dbtest.Country("Germany"))

	local := collect(t, svc, "me", domain.ModeLocal, 10)
	assert.ElementsMatch(t, []string{"tr-1", "tr-2"}, local)

	global := collect(t, svc, "me", domain.ModeGlobal, 10)
	assert.ElementsMatch(t, []string{"tr-1", "tr-2", "de-1"}, global)
}

func TestFeed_SeventeenYearsAndOneDay(t *testing.T) {
	svc, env := setup(t)

	dbtest.CreateUser(t, env.DB, now, "caller", dbtest.BornYearsAgo(now, 17, 1))
	dbtest.CreateUser(t, env.DB, now, "minor-same-country", dbtest.BornYearsAgo(now, 16, 0))
	dbtest.CreateUser(t, env.DB, now, "minor-abroad", dbtest.BornYearsAgo(now, 16, 0), dbtest.Country("Spain"))
	dbtest.CreateUser(t, env.DB, now, "adult-18y1d", dbtest.BornYearsAgo(now, 18, 1))

	caller, err := env.App.Store.Users.Get(context.Background(), "caller")
	require.NoError(t, err)
	bracket, ok := agegroup.BracketOf(caller.BirthDate, now)
	require.True(t, ok)
	require.Equal(t, agegroup.Minor, bracket)

	got := collect(t, svc, "caller", domain.ModeLocal, 10)
	assert.Equal(t, []string{"minor-same-country"}, got)
	assert.NotContains(t, collect(t, svc, "caller", domain.ModeGlobal, 10), "adult-18y1d")
}

func TestFeed_ExcludesLikedSkippedBannedAndSelf(t *testing.T) {
	svc, env := setup(t)
	ctx := context.Background()

	for _, id := range []string{"me", "liked", "skipped", "expired-skip", "visible"} {
		dbtest.CreateUser(t, env.DB, now, id)
	}
	dbtest.CreateUser(t, env.DB, now, "banned", dbtest.Banned())
	dbtest.CreateLike(t, env.DB, "me", "liked", now)
	require.NoError(t, env.App.Store.Skips.Upsert(ctx, "me", "skipped", now.Add(time.Hour)))
	require.NoError(t, env.App.Store.Skips.Upsert(ctx, "me", "expired-skip", now.Add(-time.Hour)))

	got := collect(t, svc, "me", domain.ModeLocal, 10)
	assert.ElementsMatch(t, []string{"expired-skip", "visible"}, got)
}

func TestFeed_PaginationIsCompleteAndDisjoint(t *testing.T) {
	svc, env := setup(t)

	dbtest.CreateUser(t, env.DB, now, "me")
	want := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("cand-%02d", i)
		dbtest.CreateUser(t, env.DB, now, id)
		want = append(want, id)
	}

	got := collect(t, svc, "me", domain.ModeLocal, 3)
	assert.ElementsMatch(t, want, got)
	assert.Len(t, got, len(want), "no duplicates across pages")
}

func TestFeed_CursorIsOnlyAPositionMarker(t *testing.T) {
	svc, env := setup(t)
	ctx := context.Background()

	dbtest.CreateUser(t, env.DB, now, "me")
	dbtest.CreateUser(t, env.DB, now, "a")
	dbtest.CreateUser(t, env.DB, now, "c")

	// "b" never existed; results resume after it
	res, err := svc.Feed(ctx, discovery.FeedRequest{UserID: "me", Cursor: pagination.After("b"), Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, profileIDs(res.Profiles))
	assert.False(t, res.HasMore)
}

func TestFeed_InvalidInput(t *testing.T) {
	svc, env := setup(t)
	ctx := context.Background()
	dbtest.CreateUser(t, env.DB, now, "me")

	_, err := svc.Feed(ctx, discovery.FeedRequest{UserID: "me", Cursor: "!!not-a-cursor"})
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, err = svc.Feed(ctx, discovery.FeedRequest{UserID: "ghost"})
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	dbtest.CreateUser(t, env.DB, now, "kid", dbtest.BornYearsAgo(now, 13, 0))
	_, err = svc.Feed(ctx, discovery.FeedRequest{UserID: "kid"})
	assert.ErrorIs(t, err, svcErr.ErrAgeGroupMismatch)
}

func TestFeed_PageSizeBounds(t *testing.T) {
	svc, env := setup(t)
	ctx := context.Background()

	dbtest.CreateUser(t, env.DB, now, "me")
	for i := 0; i < 55; i++ {
		dbtest.CreateUser(t, env.DB, now, fmt.Sprintf("c-%03d", i))
	}

	res, err := svc.Feed(ctx, discovery.FeedRequest{UserID: "me", Limit: 0})
	require.NoError(t, err)
	assert.Len(t, res.Profiles, 20)
	assert.True(t, res.HasMore)

	res, err = svc.Feed(ctx, discovery.FeedRequest{UserID: "me", Limit: 500})
	require.NoError(t, err)
	assert.Len(t, res.Profiles, 50)
}

func TestFeed_RankedByScoreWithEnrichment(t *testing.T) {
	svc, env := setup(t)
	ctx := context.Background()

	dbtest.CreateUser(t, env.DB, now, "me", dbtest.Coords(41.0082, 28.9784))
	dbtest.CreateUser(t, env.DB, now, "a-plain", dbtest.City("Bursa"))
	dbtest.CreateUser(t, env.DB, now, "b-boosted", dbtest.City("Bursa"), dbtest.Coords(39.9334, 32.8597))
	dbtest.CreateBoost(t, env.DB, "b-boosted", 2, now.Add(time.Hour))
	dbtest.CreateInterest(t, env.DB, "i-music", "Music", "me", "a-plain")

	res, err := svc.Feed(ctx, discovery.FeedRequest{UserID: "me", Mode: domain.ModeLocal})
	require.NoError(t, err)
	require.Len(t, res.Profiles, 2)

	top := res.Profiles[0]
	assert.Equal(t, "b-boosted", top.ID)
	assert.True(t, top.IsBoosted)
	require.NotNil(t, top.DistanceKm)
	assert.Equal(t, 349.4, *top.DistanceKm)

	second := res.Profiles[1]
	assert.Equal(t, []string{"Music"}, second.CommonInterests)
	assert.Nil(t, second.DistanceKm, "no coordinates means no distance")
	assert.Greater(t, top.Score, second.Score)
}

func TestTrending_CachedPerScope(t *testing.T) {
	svc, env := setup(t)
	ctx := context.Background()

	for _, id := range []string{"me", "fan1", "fan2", "star", "rising"} {
		dbtest.CreateUser(t, env.DB, now, id)
	}
	dbtest.CreateUser(t, env.DB, now, "minor-star", dbtest.BornYearsAgo(now, 16, 0))
	dbtest.CreateLike(t, env.DB, "fan1", "star", now.Add(-time.Hour))
	dbtest.CreateLike(t, env.DB, "fan2", "star", now.Add(-time.Hour))
	dbtest.CreateLike(t, env.DB, "fan1", "rising", now.Add(-time.Hour))
	dbtest.CreateLike(t, env.DB, "fan1", "me", now.Add(-time.Hour))
	dbtest.CreateLike(t, env.DB, "fan1", "minor-star", now.Add(-time.Hour))

	got, err := svc.Trending(ctx, "me", domain.ModeGlobal)
	require.NoError(t, err)
	assert.Equal(t, []string{"star", "rising"}, profileIDs(got))
	assert.Equal(t, int64(2), got[0].RecentLikes)

	key := env.App.RedisCache.KeyForTrending(string(agegroup.Adult), string(domain.ModeGlobal), "Turkey")
	assert.True(t, env.Redis.Exists(key))

	// rows written outside social.Like do not evict, so the entry serves until expiry
	dbtest.CreateLike(t, env.DB, "fan2", "rising", now.Add(-time.Minute))
	dbtest.CreateLike(t, env.DB, "star", "rising", now.Add(-time.Minute))
	got, err = svc.Trending(ctx, "me", domain.ModeGlobal)
	require.NoError(t, err)
	assert.Equal(t, []string{"star", "rising"}, profileIDs(got))

	env.Redis.FastForward(6 * time.Minute)
	got, err = svc.Trending(ctx, "me", domain.ModeGlobal)
	require.NoError(t, err)
	assert.Equal(t, []string{"rising", "star"}, profileIDs(got))
}

func TestSpotlight(t *testing.T) {
	svc, env := setup(t)
	ctx := context.Background()

	dbtest.CreateUser(t, env.DB, now, "me", dbtest.Verified())
	dbtest.CreateUser(t, env.DB, now, "verified", dbtest.Verified(), dbtest.ActiveAt(now.Add(-time.Hour)))
	dbtest.CreateUser(t, env.DB, now, "plain")
	dbtest.CreateUser(t, env.DB, now, "abroad", dbtest.Verified(), dbtest.Country("Spain"))

	got, err := svc.Spotlight(ctx, "me", domain.ModeLocal)
	require.NoError(t, err)
	assert.Equal(t, []string{"verified"}, profileIDs(got))

	got, err = svc.Spotlight(ctx, "me", domain.ModeGlobal)
	require.NoError(t, err)
	assert.Equal(t, []string{"abroad", "verified"}, profileIDs(got))
}

func TestProfile(t *testing.T) {
	svc, env := setup(t)
	ctx := context.Background()

	dbtest.CreateUser(t, env.DB, now, "me")
	dbtest.CreateUser(t, env.DB, now, "peer", dbtest.Verified())
	dbtest.CreateUser(t, env.DB, now, "teen", dbtest.BornYearsAgo(now, 16, 0))
	dbtest.CreateUser(t, env.DB, now, "banned", dbtest.Banned())

	p, err := svc.Profile(ctx, "me", "peer", domain.ModeLocal)
	require.NoError(t, err)
	assert.Equal(t, "peer", p.ID)
	assert.Equal(t, 25, p.Age)
	assert.True(t, p.IsVerified)

	_, err = svc.Profile(ctx, "me", "teen", domain.ModeLocal)
	assert.ErrorIs(t, err, svcErr.ErrAgeGroupMismatch)

	_, err = svc.Profile(ctx, "me", "banned", domain.ModeLocal)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)

	_, err = svc.Profile(ctx, "me", "ghost", domain.ModeLocal)
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
}
