package discovery

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/agegroup"
	"github.com/oggyb/vibeu-engine/internal/app"
	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/domain"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/metrics"
	"github.com/oggyb/vibeu-engine/internal/repository"
	"github.com/oggyb/vibeu-engine/internal/utils/pagination"
)

// Service answers "who should this user see next".
// It is stateless; every call reads the store afresh.
type Service struct {
	appCtx *app.AppContext
	store  *repository.Store
}

// NewService creates a discovery service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx, store: appCtx.Store}
}

// viewer is the caller resolved for one request.
type viewer struct {
	user    *db.User
	bracket agegroup.Bracket
	today   time.Time
}

func (s *Service) loadViewer(ctx context.Context, userID string) (*viewer, error) {
	if userID == "" {
		return nil, svcErr.InvalidArgument("user id is required")
	}
	u, err := s.store.Users.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("user")
	}
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	today := s.appCtx.LocalNow()
	bracket, ok := agegroup.BracketOf(u.BirthDate, today)
	if !ok {
		return nil, svcErr.New(svcErr.KindAgeGroupMismatch, "caller is below the minimum age")
	}
	return &viewer{user: u, bracket: bracket, today: today}, nil
}

// predicate builds the eligibility filter shared by every discovery query.
func (v *viewer) predicate(mode domain.Mode, exclude []string) repository.Predicate {
	p := repository.Predicate{
		ExcludeIDs: exclude,
		Birth:      agegroup.RangeFor(v.bracket, v.today),
	}
	if mode.IsLocal() {
		p.Country = v.user.Country
	}
	return p
}

// sameBracket drops rows whose bracket differs from the viewer's.
func (v *viewer) sameBracket(users []db.User) []db.User {
	out := users[:0]
	for _, u := range users {
		if b, ok := agegroup.BracketOf(u.BirthDate, v.today); ok && b == v.bracket {
			out = append(out, u)
		}
	}
	return out
}

// Feed returns one ranked page of candidates for req.UserID.
//
// Behavior:
//  1. Excludes the caller, everyone the caller liked, and active skips.
//  2. Filters to the caller's age bracket, and to the caller's country in
//     local mode. Banned users never appear.
//  3. Fetches limit+1 rows after the cursor in id order; the extra row only
//     signals HasMore.
//  4. Ranks the page with the scoring engine. NextCursor is the last id of
//     the page in id order, so pagination stays stable regardless of scores.
//
// Example:
//
//	svc.Feed(ctx, FeedRequest{UserID: "u1", Mode: domain.ModeLocal, Limit: 20})
func (s *Service) Feed(ctx context.Context, req FeedRequest) (*FeedPage, error) {
	start := time.Now()
	defer metrics.ObserveDiscovery("feed", start)

	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	log := s.appCtx.Logger.With("op", "discovery.feed", "user_id", req.UserID)
	log.Debug("Feed called", "mode", req.Mode, "limit", req.Limit)

	limit := s.pageSize(req.Limit)
	cursor, err := pagination.Decode(req.Cursor)
	if err != nil {
		return nil, svcErr.InvalidArgument("malformed cursor")
	}

	v, err := s.loadViewer(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	exclude, err := s.exclusions(ctx, v.user.ID)
	if err != nil {
		log.Error("exclusion lookup failed", "err", err)
		return nil, svcErr.Normalize(err)
	}

	p := v.predicate(req.Mode, exclude)
	p.AfterID = cursor.LastID

	users, err := s.store.Users.FindEligible(ctx, p, limit+1)
	if err != nil {
		log.Error("FindEligible failed", "err", err)
		return nil, svcErr.Normalize(err)
	}

	page := &FeedPage{Profiles: []Profile{}}
	if len(users) > limit {
		page.HasMore = true
		users = users[:limit]
	}
	if page.HasMore && len(users) > 0 {
		next := pagination.After(users[len(users)-1].ID)
		page.NextCursor = &next
	}

	profiles, err := s.rank(ctx, v, v.sameBracket(users), req.Mode)
	if err != nil {
		log.Error("ranking lookups failed", "err", err)
		return nil, svcErr.Normalize(err)
	}
	page.Profiles = profiles

	log.Debug("Feed result", "count", len(page.Profiles), "has_more", page.HasMore)
	return page, nil
}

// Trending returns up to ten users with the most likes in the last 24 hours
// within the caller's bracket (and country in local mode).
//
// The ranked id list is cached per (bracket, mode, country); the caller is
// removed after the cache so one entry serves everyone in the scope.
func (s *Service) Trending(ctx context.Context, userID string, mode domain.Mode) ([]Profile, error) {
	start := time.Now()
	defer metrics.ObserveDiscovery("trending", start)

	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	log := s.appCtx.Logger.With("op", "discovery.trending", "user_id", userID)

	v, err := s.loadViewer(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.trendingEntries(ctx, v, mode)
	if err != nil {
		log.Error("trending lookup failed", "err", err)
		return nil, svcErr.Normalize(err)
	}

	ids := make([]string, 0, len(entries))
	likes := make(map[string]int64, len(entries))
	for _, e := range entries {
		if e.UserID == v.user.ID {
			continue
		}
		ids = append(ids, e.UserID)
		likes[e.UserID] = e.LikeCount
	}

	byID, err := s.store.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	users := make([]db.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok && !u.IsBanned {
			users = append(users, u)
		}
	}
	users = v.sameBracket(users)
	if len(users) > trendingLimit {
		users = users[:trendingLimit]
	}

	profiles, err := s.describe(ctx, v, users, mode)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	for i := range profiles {
		profiles[i].RecentLikes = likes[profiles[i].ID]
	}
	return profiles, nil
}

func (s *Service) trendingEntries(ctx context.Context, v *viewer, mode domain.Mode) ([]repository.TrendingEntry, error) {
	rc := s.appCtx.RedisCache
	log := s.appCtx.Logger

	var key string
	if rc != nil {
		key = rc.KeyForTrending(string(v.bracket), string(mode), v.user.Country)
		var cached []repository.TrendingEntry
		if ok, err := rc.GetJSON(ctx, key, &cached); err != nil {
			log.Warn("trending cache read failed", "key", key, "err", err)
		} else if ok {
			return cached, nil
		}
	}

	// one extra row so removing the caller still leaves a full list
	entries, err := s.store.Users.Trending(ctx, v.predicate(mode, nil), s.appCtx.Now().Add(-trendingWindow), trendingLimit+1)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		if err := rc.SetJSON(ctx, key, entries, s.appCtx.Config.Engine.TrendingCacheTTL); err != nil {
			log.Warn("trending cache write failed", "key", key, "err", err)
		}
	}
	return entries, nil
}

// Spotlight returns up to ten highlighted users (boosted, verified or with
// photos) from the caller's scope, most recently active first.
func (s *Service) Spotlight(ctx context.Context, userID string, mode domain.Mode) ([]Profile, error) {
	start := time.Now()
	defer metrics.ObserveDiscovery("spotlight", start)

	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	v, err := s.loadViewer(ctx, userID)
	if err != nil {
		return nil, err
	}

	users, err := s.store.Users.Spotlight(ctx, v.predicate(mode, []string{v.user.ID}), s.appCtx.Now(), spotlightLimit)
	if err != nil {
		s.appCtx.Logger.Error("Spotlight failed", "user_id", userID, "err", err)
		return nil, svcErr.Normalize(err)
	}

	profiles, err := s.describe(ctx, v, v.sameBracket(users), mode)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	return profiles, nil
}

// Profile returns targetID as seen by viewerID.
//
// Behavior:
//   - Unknown or banned targets are NotFound.
//   - A target in another age bracket is AgeGroupMismatch.
func (s *Service) Profile(ctx context.Context, viewerID, targetID string, mode domain.Mode) (*Profile, error) {
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	v, err := s.loadViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	target, err := s.store.Users.Get(ctx, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && target.IsBanned) {
		return nil, svcErr.NotFound("user")
	}
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	if !agegroup.Same(v.user.BirthDate, target.BirthDate, v.today) {
		return nil, svcErr.AgeGroupMismatch()
	}

	profiles, err := s.rank(ctx, v, []db.User{*target}, mode)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	return &profiles[0], nil
}

func (s *Service) pageSize(requested int) int {
	cfg := s.appCtx.Config.Engine
	switch {
	case requested <= 0:
		return cfg.DefaultPageSize
	case requested > cfg.MaxPageSize:
		return cfg.MaxPageSize
	default:
		return requested
	}
}

// exclusions is {caller} ∪ liked ∪ active skips; both lookups run concurrently.
func (s *Service) exclusions(ctx context.Context, userID string) ([]string, error) {
	var liked, skipped []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		liked, err = s.store.Likes.LikedIDs(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		skipped, err = s.appCtx.Skips.ActiveSkippedIDs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, 1+len(liked)+len(skipped))
	out := make([]string, 0, 1+len(liked)+len(skipped))
	for _, group := range [][]string{{userID}, liked, skipped} {
		for _, id := range group {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}
