package social

import (
	"context"

	"github.com/oggyb/vibeu-engine/internal/db"
	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
)

// AddFavorite bookmarks targetID for userID.
//
// Behavior:
//   - Same preconditions as a like: distinct, existing, same-bracket users.
//   - A repeated favorite fails AlreadyFavorited.
//   - Not rate limited and never notifies the target.
func (s *Service) AddFavorite(ctx context.Context, userID, targetID string) (fav *Favorite, err error) {
	defer s.observe("add_favorite", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	_, target, err := s.pair(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	row := db.Favorite{ID: s.appCtx.NewID(), UserID: userID, FavoritedUserID: targetID, CreatedAt: s.appCtx.Now()}
	inserted, err := s.store.Favorites.Create(ctx, &row)
	if err != nil {
		s.appCtx.Logger.Error("favorite insert failed", "user_id", userID, "target", targetID, "err", err)
		return nil, svcErr.Normalize(err)
	}
	if !inserted {
		return nil, svcErr.AlreadyFavorited()
	}
	return &Favorite{FavoriteID: row.ID, CreatedAt: row.CreatedAt, User: s.summary(*target)}, nil
}

// Favorites lists userID's favorites, newest first. Banned users and users
// now in another bracket are hidden.
func (s *Service) Favorites(ctx context.Context, userID string) ([]Favorite, error) {
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Favorites.ForUser(ctx, userID)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}
	ids := make([]string, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, f.FavoritedUserID)
	}
	users, err := s.visible(ctx, user, ids)
	if err != nil {
		return nil, svcErr.Normalize(err)
	}

	out := make([]Favorite, 0, len(rows))
	for _, f := range rows {
		u, ok := users[f.FavoritedUserID]
		if !ok {
			continue
		}
		out = append(out, Favorite{FavoriteID: f.ID, CreatedAt: f.CreatedAt, User: s.summary(u)})
	}
	return out, nil
}

// RemoveFavorite deletes favoriteID if userID owns it. Someone else's
// favorite is reported as not found.
func (s *Service) RemoveFavorite(ctx context.Context, userID, favoriteID string) (err error) {
	defer s.observe("remove_favorite", &err)
	ctx, cancel := s.appCtx.WithStoreTimeout(ctx)
	defer cancel()

	if userID == "" || favoriteID == "" {
		return svcErr.InvalidArgument("user id and favorite id are required")
	}
	deleted, err := s.store.Favorites.Delete(ctx, favoriteID, userID)
	if err != nil {
		return svcErr.Normalize(err)
	}
	if !deleted {
		return svcErr.NotFound("favorite")
	}
	return nil
}
