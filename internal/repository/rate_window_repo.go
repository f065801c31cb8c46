package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// RateWindowRepository keeps fixed-window action counters in SQL.
type RateWindowRepository struct {
	db *gorm.DB
}

func NewRateWindowRepository(database *gorm.DB) *RateWindowRepository {
	return &RateWindowRepository{db: database}
}

// IncrementWithCeiling bumps the counter for (visitor, action, windowStart)
// only while it is below limit.
//
// Behavior:
//   - The window row is created on first use.
//   - The increment is a single conditional UPDATE (count < limit), so two
//     concurrent callers can never both take the last slot.
//   - Returns the counter after the attempt and whether this call was counted.
//
// Example:
//
//	count, ok, err := repo.IncrementWithCeiling(ctx, "u1", "like", midnight, 100)
func (r *RateWindowRepository) IncrementWithCeiling(
	ctx context.Context,
	visitorID, action string,
	windowStart time.Time,
	limit int,
) (int, bool, error) {
	q := r.db.WithContext(ctx)

	seed := db.RateLimitWindow{VisitorID: visitorID, ActionType: action, WindowStart: windowStart}
	if err := q.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, false, err
	}

	res := q.Model(&db.RateLimitWindow{}).
		Where("visitor_id = ? AND action_type = ? AND window_start = ? AND count < ?",
			visitorID, action, windowStart, limit).
		Update("count", gorm.Expr("count + 1"))
	if res.Error != nil {
		return 0, false, res.Error
	}

	count, err := r.Count(ctx, visitorID, action, windowStart)
	if err != nil {
		return 0, false, err
	}
	return count, res.RowsAffected == 1, nil
}

// Decrement gives back one unit of a window. Counters never go below zero
// and a missing window is left missing.
func (r *RateWindowRepository) Decrement(ctx context.Context, visitorID, action string, windowStart time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.RateLimitWindow{}).
		Where("visitor_id = ? AND action_type = ? AND window_start = ? AND count > 0",
			visitorID, action, windowStart).
		Update("count", gorm.Expr("count - 1")).Error
}

// Count reads the counter for one window; missing windows count as zero.
func (r *RateWindowRepository) Count(ctx context.Context, visitorID, action string, windowStart time.Time) (int, error) {
	var counts []int
	err := r.db.WithContext(ctx).
		Model(&db.RateLimitWindow{}).
		Where("visitor_id = ? AND action_type = ? AND window_start = ?", visitorID, action, windowStart).
		Pluck("count", &counts).Error
	if err != nil || len(counts) == 0 {
		return 0, err
	}
	return counts[0], nil
}
