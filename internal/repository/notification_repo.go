package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// NotificationRepository persists notification intents for the delivery layer.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

func (r *NotificationRepository) Create(ctx context.Context, n *db.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ForUser lists userID's notifications, newest first.
func (r *NotificationRepository) ForUser(ctx context.Context, userID string, limit int) ([]db.Notification, error) {
	var out []db.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
