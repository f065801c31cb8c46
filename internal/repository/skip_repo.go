package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// SkipRepository stores temporary discovery exclusions.
type SkipRepository struct {
	db *gorm.DB
}

func NewSkipRepository(database *gorm.DB) *SkipRepository {
	return &SkipRepository{db: database}
}

// Upsert records the skip or pushes its expiry forward.
func (r *SkipRepository) Upsert(ctx context.Context, userID, skippedID string, expiresAt time.Time) error {
	row := db.SkippedUser{UserID: userID, SkippedUserID: skippedID, ExpiresAt: expiresAt}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "skipped_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
		}).
		Create(&row).Error
}

// ActiveIDs returns the ids userID skipped whose expiry is after now.
func (r *SkipRepository) ActiveIDs(ctx context.Context, userID string, now time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.SkippedUser{}).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Pluck("skipped_user_id", &ids).Error
	return ids, err
}
