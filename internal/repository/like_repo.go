package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// LikeRepository stores one-way likes.
type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Create inserts like unless the (from, to) pair already exists.
//
// Behavior:
//   - Returns inserted=false when the unique pair index already holds a row.
//   - The unique index is authoritative; a prior HasLiked check is only a
//     fast path and may race.
//
// Example:
//
//	ok, err := repo.Create(ctx, &db.Like{ID: id, FromUserID: "a", ToUserID: "b"})
func (r *LikeRepository) Create(ctx context.Context, like *db.Like) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasLiked checks whether from has liked to.
func (r *LikeRepository) HasLiked(ctx context.Context, from, to string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", from, to).
		Count(&count).Error
	return count > 0, err
}

// LikedIDs returns every user id that from has liked.
func (r *LikeRepository) LikedIDs(ctx context.Context, from string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ?", from).
		Pluck("to_user_id", &ids).Error
	return ids, err
}

// Received lists likes sent to userID, newest first.
func (r *LikeRepository) Received(ctx context.Context, userID string, limit int) ([]db.Like, error) {
	var likes []db.Like
	err := r.db.WithContext(ctx).
		Where("to_user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&likes).Error
	return likes, err
}
