package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// UserRepository is the read side of the profile store.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Get loads one user. Missing users return gorm.ErrRecordNotFound.
func (r *UserRepository) Get(ctx context.Context, id string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetMany loads users by id. Missing ids are silently absent from the map.
func (r *UserRepository) GetMany(ctx context.Context, ids []string) (map[string]db.User, error) {
	out := make(map[string]db.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// FindEligible returns up to limit users matching p, ordered by id ascending.
//
// Behavior:
//   - Banned users are never returned.
//   - p.AfterID positions the page; it need not exist any more.
//   - Callers ask for limit+1 rows to learn whether another page exists.
//
// Example:
//
//	repo.FindEligible(ctx, Predicate{Country: "Turkey", Birth: rng}, 21)
func (r *UserRepository) FindEligible(ctx context.Context, p Predicate, limit int) ([]db.User, error) {
	var users []db.User
	q := p.apply(r.db.WithContext(ctx).Model(&db.User{})).
		Order("users.id ASC").
		Limit(limit)
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// TrendingEntry is one user with their like count inside the trending window.
type TrendingEntry struct {
	UserID    string
	LikeCount int64
}

// Trending ranks users matching p by likes received since `since`.
//
// Behavior:
//   - p.AfterID is ignored; trending is a single page.
//   - Ties break on user id ascending so the order is stable.
func (r *UserRepository) Trending(ctx context.Context, p Predicate, since time.Time, limit int) ([]TrendingEntry, error) {
	p.AfterID = ""

	var rows []TrendingEntry
	q := r.db.WithContext(ctx).
		Table("likes").
		Select("likes.to_user_id AS user_id, COUNT(*) AS like_count").
		Joins("JOIN users ON users.id = likes.to_user_id").
		Where("likes.created_at >= ?", since)
	q = p.apply(q).
		Group("likes.to_user_id").
		Order("like_count DESC, likes.to_user_id ASC").
		Limit(limit)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Spotlight returns users matching p that are verified, carry an active
// boost, or have at least one photo, most recently active first.
func (r *UserRepository) Spotlight(ctx context.Context, p Predicate, now time.Time, limit int) ([]db.User, error) {
	p.AfterID = ""

	hasPhoto := r.db.Table("photos").Select("1").Where("photos.user_id = users.id")
	hasBoost := r.db.Table("boosts").Select("1").
		Where("boosts.user_id = users.id AND boosts.is_active = ? AND boosts.expires_at > ?", true, now)

	var users []db.User
	q := p.apply(r.db.WithContext(ctx).Model(&db.User{})).
		Where("users.is_verified = ? OR EXISTS (?) OR EXISTS (?)", true, hasPhoto, hasBoost).
		Order("users.last_active_at DESC, users.id ASC").
		Limit(limit)
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// InterestRef is an interest attached to a user.
type InterestRef struct {
	UserID string
	ID     string
	Name   string
}

// InterestsFor batch-loads interests for all userIDs in one query.
func (r *UserRepository) InterestsFor(ctx context.Context, userIDs []string) (map[string][]InterestRef, error) {
	out := make(map[string][]InterestRef, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []InterestRef
	err := r.db.WithContext(ctx).
		Table("user_interests").
		Select("user_interests.user_id AS user_id, interests.id AS id, interests.name AS name").
		Joins("JOIN interests ON interests.id = user_interests.interest_id").
		Where("user_interests.user_id IN ?", userIDs).
		Order("interests.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row)
	}
	return out, nil
}

// ActiveBoosts returns the highest active, unexpired multiplier per user.
// Users without a boost are absent.
func (r *UserRepository) ActiveBoosts(ctx context.Context, userIDs []string, now time.Time) (map[string]float64, error) {
	out := make(map[string]float64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID     string
		Multiplier float64
	}
	err := r.db.WithContext(ctx).
		Model(&db.Boost{}).
		Select("user_id, MAX(multiplier) AS multiplier").
		Where("user_id IN ? AND is_active = ? AND expires_at > ?", userIDs, true, now).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row.Multiplier
	}
	return out, nil
}

// PhotoCounts returns how many photos each user has. Users without photos are absent.
func (r *UserRepository) PhotoCounts(ctx context.Context, userIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID string
		Total  int
	}
	err := r.db.WithContext(ctx).
		Model(&db.Photo{}).
		Select("user_id, COUNT(*) AS total").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row.Total
	}
	return out, nil
}
