package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// CooldownRepository stores per-pair action suppressions.
type CooldownRepository struct {
	db *gorm.DB
}

func NewCooldownRepository(database *gorm.DB) *CooldownRepository {
	return &CooldownRepository{db: database}
}

// Upsert creates the cooldown or refreshes its expiry.
func (r *CooldownRepository) Upsert(ctx context.Context, c db.Cooldown) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_user_id"}, {Name: "action_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
		}).
		Create(&c).Error
}

// Active returns the unexpired cooldown for (user, target, action), or nil.
// Expired rows are ignored rather than deleted.
func (r *CooldownRepository) Active(ctx context.Context, userID, targetID, action string, now time.Time) (*db.Cooldown, error) {
	var c db.Cooldown
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_user_id = ? AND action_type = ? AND expires_at > ?",
			userID, targetID, action, now).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
