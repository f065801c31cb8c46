package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// FriendshipRepository stores undirected friendships as normalized pairs.
type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(database *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: database}
}

// Exists reports whether x and y are friends, in either argument order.
func (r *FriendshipRepository) Exists(ctx context.Context, x, y string) (bool, error) {
	a, b := db.NormalizePair(x, y)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Friendship{}).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		Count(&count).Error
	return count > 0, err
}

// CreateOrGet inserts the friendship for (x, y) or returns the existing row.
//
// Behavior:
//   - The pair is normalized so (x, y) and (y, x) map to the same row.
//   - A conflicting insert is ignored and the stored row returned, which keeps
//     accept idempotent at the friendship level.
func (r *FriendshipRepository) CreateOrGet(ctx context.Context, id, x, y string, at time.Time) (*db.Friendship, error) {
	a, b := db.NormalizePair(x, y)
	f := db.Friendship{ID: id, UserAID: a, UserBID: b, CreatedAt: at}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&f).Error
	if err != nil {
		return nil, err
	}

	var stored db.Friendship
	err = r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get loads a friendship by id. Missing rows return gorm.ErrRecordNotFound.
func (r *FriendshipRepository) Get(ctx context.Context, id string) (*db.Friendship, error) {
	var f db.Friendship
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes a friendship by id and reports whether a row was removed.
func (r *FriendshipRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Friendship{})
	return res.RowsAffected > 0, res.Error
}

// DeletePair removes the friendship between x and y, in either order.
func (r *FriendshipRepository) DeletePair(ctx context.Context, x, y string) (bool, error) {
	a, b := db.NormalizePair(x, y)
	res := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		Delete(&db.Friendship{})
	return res.RowsAffected > 0, res.Error
}

// ForUser lists friendships involving userID, newest first.
func (r *FriendshipRepository) ForUser(ctx context.Context, userID string) ([]db.Friendship, error) {
	var fs []db.Friendship
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&fs).Error
	return fs, err
}
