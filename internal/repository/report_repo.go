package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// ReportRepository stores user reports for the moderation queue.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{db: database}
}

func (r *ReportRepository) Create(ctx context.Context, report *db.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// CountAgainst returns how many reports name userID.
func (r *ReportRepository) CountAgainst(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.Report{}).Where("reported_user_id = ?", userID).Count(&n).Error
	return n, err
}
