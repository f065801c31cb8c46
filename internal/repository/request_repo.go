package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// RequestRepository stores friend requests and their transitions.
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(database *gorm.DB) *RequestRepository {
	return &RequestRepository{db: database}
}

// Create inserts a pending request.
//
// Behavior:
//   - PendingKey is filled in from the pair; its unique index allows one
//     pending request per ordered pair.
//   - Returns inserted=false when a pending request for the pair exists.
func (r *RequestRepository) Create(ctx context.Context, req *db.Request) (bool, error) {
	key := db.PendingKeyFor(req.FromUserID, req.ToUserID)
	req.Status = db.RequestPending
	req.PendingKey = &key

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(req)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Get loads a request by id. Missing requests return gorm.ErrRecordNotFound.
func (r *RequestRepository) Get(ctx context.Context, id string) (*db.Request, error) {
	var req db.Request
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// Transition moves a pending request to a terminal status.
//
// Behavior:
//   - Conditional on status = pending, so concurrent responders race on a
//     single row update and exactly one wins.
//   - Clears PendingKey so a new request for the pair becomes possible.
//   - Returns false when the request was no longer pending.
//
// Example:
//
//	ok, err := repo.Transition(ctx, id, db.RequestAccepted, now)
func (r *RequestRepository) Transition(ctx context.Context, id string, to db.RequestStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Request{}).
		Where("id = ? AND status = ?", id, db.RequestPending).
		Updates(map[string]any{
			"status":       to,
			"pending_key":  nil,
			"responded_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// HasPending reports whether a pending request from -> to exists.
func (r *RequestRepository) HasPending(ctx context.Context, from, to string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Request{}).
		Where("pending_key = ?", db.PendingKeyFor(from, to)).
		Count(&count).Error
	return count > 0, err
}

// PendingTo lists pending requests received by userID, newest first.
func (r *RequestRepository) PendingTo(ctx context.Context, userID string) ([]db.Request, error) {
	var reqs []db.Request
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", userID, db.RequestPending).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}

// PendingFrom lists pending requests sent by userID, newest first.
func (r *RequestRepository) PendingFrom(ctx context.Context, userID string) ([]db.Request, error) {
	var reqs []db.Request
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND status = ?", userID, db.RequestPending).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, err
}
