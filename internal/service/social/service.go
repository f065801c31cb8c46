package social

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/agegroup"
	"github.com/oggyb/vibeu-engine/internal/app"
	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/domain"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/metrics"
	"github.com/oggyb/vibeu-engine/internal/ratelimit"
	"github.com/oggyb/vibeu-engine/internal/repository"
)

// Service owns likes, friend requests, friendships, skips and reports.
//
// Every operation that touches two users requires both to be in the same age
// bracket. Uniqueness (likes, pending requests, friendships) is enforced by
// unique indexes; multi-row transitions run in one transaction.
type Service struct {
	appCtx *app.AppContext
	store  *repository.Store
}

// NewService creates a social-graph service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx, store: appCtx.Store}
}

// observe records the outcome of op; use as `defer s.observe("like", &err)`.
func (s *Service) observe(op string, err *error) {
	metrics.SocialTransitions.WithLabelValues(op, metrics.Result(string(svcErr.KindOf(*err)))).Inc()
}

func (s *Service) getUser(ctx context.Context, id string) (*db.User, error) {
	u, err := s.store.Users.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && u.IsBanned) {
		return nil, svcErr.NotFound("user")
	}
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	return u, nil
}

// pair loads actor and target and enforces the cross-user preconditions:
// distinct ids, both exist, same age bracket.
func (s *Service) pair(ctx context.Context, actorID, targetID string) (*db.User, *db.User, error) {
	if actorID == "" || targetID == "" {
		return nil, nil, svcErr.InvalidArgument("user ids are required")
	}
	if actorID == targetID {
		return nil, nil, svcErr.InvalidArgument("cannot target yourself")
	}
	actor, err := s.getUser(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.getUser(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if !agegroup.Same(actor.BirthDate, target.BirthDate, s.appCtx.LocalNow()) {
		return nil, nil, svcErr.AgeGroupMismatch()
	}
	return actor, target, nil
}

// consume takes one unit of the actor's daily quota for action.
func (s *Service) consume(ctx context.Context, actor *db.User, action domain.ActionType) (ratelimit.Decision, error) {
	d, err := s.appCtx.Limiter.CheckAndIncrement(ctx, actor.ID, action, actor.HasPremium(s.appCtx.Now()))
	if err != nil {
		s.appCtx.Logger.Error("rate limiter failed", "action", action, "user_id", actor.ID, "err", err)
		return ratelimit.Decision{}, svcErr.Unavailable(err)
	}
	if !d.Allowed {
		return d, svcErr.RateLimited(d.ResetAt)
	}
	return d, nil
}

func (s *Service) summary(u db.User) UserSummary {
	return UserSummary{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Age:         agegroup.Age(u.BirthDate, s.appCtx.LocalNow()),
		City:        u.City,
		PhotoURL:    u.ProfilePhotoURL,
		IsVerified:  u.IsVerified,
		IsOnline:    s.appCtx.Now().Sub(u.LastActiveAt) < onlineWindow,
	}
}

// visible filters counterpart ids down to users the viewer may see.
func (s *Service) visible(ctx context.Context, viewer *db.User, ids []string) (map[string]db.User, error) {
	users, err := s.store.Users.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	today := s.appCtx.LocalNow()
	for id, u := range users {
		if u.IsBanned || !agegroup.Same(viewer.BirthDate, u.BirthDate, today) {
			delete(users, id)
		}
	}
	return users, nil
}

// dropTrending evicts the cached trending lists target can appear in, so a
// new like shows up before the cache TTL runs out. Failures are logged only.
func (s *Service) dropTrending(ctx context.Context, target *db.User) {
	rc := s.appCtx.RedisCache
	if rc == nil {
		return
	}
	bracket, ok := agegroup.BracketOf(target.BirthDate, s.appCtx.LocalNow())
	if !ok {
		return
	}
	keys := []string{
		rc.KeyForTrending(string(bracket), string(domain.ModeGlobal), ""),
		rc.KeyForTrending(string(bracket), string(domain.ModeLocal), target.Country),
	}
	if err := rc.Del(ctx, keys...); err != nil {
		s.appCtx.Logger.Warn("trending cache eviction failed", "keys", keys, "err", err)
	}
}

// Like records a one-way like from -> to.
//
// Behavior:
//   - Self, unknown and cross-bracket targets fail before any quota is used.
//   - A repeated like fails AlreadyLiked; the unique pair index decides races.
//     The loser of such a race gets its quota unit refunded.
//   - Free users get a daily quota; premium likes are unlimited.
//   - Evicts the cached trending lists of the liked user.
//   - Never notifies the liked user.
//
// Example:
//
//	svc.Like(ctx, "u1", "u2")
func (s *Service) Like(ctx context.Context, fromID, toID string) (res *LikeResult, err error) {
	defer s.observe("like", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	s.appCtx.Logger.Debug("Like called", "from", fromID, "to", toID)

	from, to, err := s.pair(ctx, fromID, toID)
	if err != nil {
		return nil, err
	}

	liked, err := s.store.Likes.HasLiked(ctx, fromID, toID)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	if liked {
		return nil, svcErr.AlreadyLiked()
	}

	decision, err := s.consume(ctx, from, domain.ActionLike)
	if err != nil {
		return nil, err
	}

	like := db.Like{ID: s.appCtx.NewID(), FromUserID: fromID, ToUserID: toID, CreatedAt: s.appCtx.Now()}
	inserted, err := s.store.Likes.Create(ctx, &like)
	if err != nil {
		s.appCtx.Logger.Error("like insert failed", "from", fromID, "to", toID, "err", err)
		return nil, svcErr.Normalize(err)
	}
	if !inserted {
		if err := s.appCtx.Limiter.Refund(ctx, fromID, domain.ActionLike, from.HasPremium(s.appCtx.Now())); err != nil {
			s.appCtx.Logger.Error("like quota refund failed", "from", fromID, "err", err)
		}
		return nil, svcErr.AlreadyLiked()
	}
	s.dropTrending(ctx, to)

	return &LikeResult{LikeID: like.ID, Remaining: decision.Remaining, ResetAt: decision.ResetAt}, nil
}

// ReceivedLikes lists who liked userID, newest first. Premium only.
func (s *Service) ReceivedLikes(ctx context.Context, userID string) (out []ReceivedLike, err error) {
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasPremium(s.appCtx.Now()) {
		return nil, svcErr.PremiumRequired()
	}

	likes, err := s.store.Likes.Received(ctx, userID, receivedLikesLimit)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.FromUserID)
	}
	users, err := s.visible(ctx, user, ids)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}

	out = make([]ReceivedLike, 0, len(likes))
	for _, l := range likes {
		u, ok := users[l.FromUserID]
		if !ok {
			continue
		}
		out = append(out, ReceivedLike{LikeID: l.ID, CreatedAt: l.CreatedAt, User: s.summary(u)})
	}
	return out, nil
}

// Skip hides targetID from userID's discovery feed for the skip TTL.
func (s *Service) Skip(ctx context.Context, userID, targetID string) (expires time.Time, err error) {
	defer s.observe("skip", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	return s.appCtx.Skips.Skip(ctx, userID, targetID)
}

// Report files a moderation report against targetID.
//
// Reports are not bracket-restricted: anyone may report any existing user.
// They are throttled by the daily report quota.
func (s *Service) Report(ctx context.Context, reporterID, targetID, reason, description string) (res *ReportResult, err error) {
	defer s.observe("report", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, svcErr.InvalidArgument("reason is required")
	}
	if reporterID == targetID {
		return nil, svcErr.InvalidArgument("cannot report yourself")
	}
	reporter, err := s.getUser(ctx, reporterID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Users.Get(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, svcErr.NotFound("user")
		}
		return nil, svcErr.Normalize(err)
	}

	decision, err := s.consume(ctx, reporter, domain.ActionReport)
	if err != nil {
		return nil, err
	}

	report := db.Report{
		ID:             s.appCtx.NewID(),
		ReporterID:     reporterID,
		ReportedUserID: targetID,
		Reason:         reason,
		Description:    description,
		Status:         "pending",
		CreatedAt:      s.appCtx.Now(),
	}
	if err := s.store.Reports.Create(ctx, &report); err != nil {
		return nil, svcErr.Normalize(err)
	}
	s.appCtx.Logger.Info("report filed", "report_id", report.ID, "reporter", reporterID, "target", targetID)

	return &ReportResult{ReportID: report.ID, Remaining: decision.Remaining, ResetAt: decision.ResetAt}, nil
}
