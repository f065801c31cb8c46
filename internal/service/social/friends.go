package social

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/domain"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/repository"
)

// Friends lists userID's friendships, newest first. Friends who have since
// left the caller's bracket are hidden.
func (s *Service) Friends(ctx context.Context, userID string) ([]Friend, error) {
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Friendships.ForUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	ids := make([]string, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, f.Other(userID))
	}
	users, err := s.visible(ctx, user, ids)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}

	out := make([]Friend, 0, len(rows))
	for _, f := range rows {
		u, ok := users[f.Other(userID)]
		if !ok {
			continue
		}
		out = append(out, Friend{FriendshipID: f.ID, Since: f.CreatedAt, User: s.summary(u)})
	}
	return out, nil
}

// RemoveFriendship deletes friendship friendshipID on behalf of actorID, who
// must be a participant. Both users then wait out the unfriend cooldown
// before either can send the other a request.
func (s *Service) RemoveFriendship(ctx context.Context, friendshipID, actorID string) (err error) {
	defer s.observe("remove_friendship", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	if friendshipID == "" {
		return svcErr.InvalidArgument("friendship id is required")
	}
	f, err := s.store.Friendships.Get(ctx, friendshipID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("friendship")
	}
	if err != nil {
		return svcErr.Normalize(err)
	}
	if !f.Involves(actorID) {
		return svcErr.NotAuthorized()
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.Friendships.Delete(ctx, f.ID)
		if err != nil {
			return err
		}
		if !ok {
			return svcErr.NotFound("friendship")
		}
		return s.unfriendCooldowns(ctx, tx, f.UserAID, f.UserBID)
	})
	if err != nil {
		return svcErr.Normalize(err)
	}
	return nil
}

// RemoveFriendshipByParticipants removes the friendship between userID and
// otherID, whichever way it was created.
func (s *Service) RemoveFriendshipByParticipants(ctx context.Context, userID, otherID string) (err error) {
	defer s.observe("remove_friendship", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	if userID == "" || otherID == "" {
		return svcErr.InvalidArgument("user ids are required")
	}
	if userID == otherID {
		return svcErr.InvalidArgument("cannot unfriend yourself")
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.Friendships.DeletePair(ctx, userID, otherID)
		if err != nil {
			return err
		}
		if !ok {
			return svcErr.NotFound("friendship")
		}
		return s.unfriendCooldowns(ctx, tx, userID, otherID)
	})
	if err != nil {
		return svcErr.Normalize(err)
	}
	return nil
}

func (s *Service) unfriendCooldowns(ctx context.Context, tx *repository.Store, x, y string) error {
	expires := s.appCtx.Now().Add(s.appCtx.Config.Engine.UnfriendCooldown)
	for _, p := range [][2]string{{x, y}, {y, x}} {
		if err := tx.Cooldowns.Upsert(ctx, cooldown(p[0], p[1], expires)); err != nil {
			return err
		}
	}
	return nil
}

func cooldown(userID, targetID string, expires time.Time) db.Cooldown {
	return db.Cooldown{
		UserID:       userID,
		TargetUserID: targetID,
		ActionType:   string(domain.ActionRequest),
		ExpiresAt:    expires,
	}
}
