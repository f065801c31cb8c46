package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// FavoriteRepository stores per-user bookmarks of other profiles.
type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(database *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: database}
}

// Create inserts fav unless the (user, favorited) pair already exists.
// Returns inserted=false when the unique pair index already holds a row.
func (r *FavoriteRepository) Create(ctx context.Context, fav *db.Favorite) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ForUser lists userID's favorites, newest first.
func (r *FavoriteRepository) ForUser(ctx context.Context, userID string) ([]db.Favorite, error) {
	var favs []db.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favs).Error
	return favs, err
}

// Delete removes favorite id only when userID owns it.
// Returns deleted=false for unknown ids and for other users' favorites.
func (r *FavoriteRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&db.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
