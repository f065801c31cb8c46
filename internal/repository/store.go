package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles every repository over one connection or transaction.
type Store struct {
	db *gorm.DB

	Users         *UserRepository
	Likes         *LikeRepository
	Requests      *RequestRepository
	Friendships   *FriendshipRepository
	Cooldowns     *CooldownRepository
	Skips         *SkipRepository
	RateWindows   *RateWindowRepository
	Reports       *ReportRepository
	Notifications *NotificationRepository
	Favorites     *FavoriteRepository
}

// NewStore binds all repositories to database.
func NewStore(database *gorm.DB) *Store {
	return &Store{
		db:            database,
		Users:         NewUserRepository(database),
		Likes:         NewLikeRepository(database),
		Requests:      NewRequestRepository(database),
		Friendships:   NewFriendshipRepository(database),
		Cooldowns:     NewCooldownRepository(database),
		Skips:         NewSkipRepository(database),
		RateWindows:   NewRateWindowRepository(database),
		Reports:       NewReportRepository(database),
		Notifications: NewNotificationRepository(database),
		Favorites:     NewFavoriteRepository(database),
	}
}

// Transaction runs fn against a Store bound to a single transaction.
// Returning an error from fn rolls everything back.
//
// Every query inside fn must go through the Store it receives; touching the
// outer Store would run outside the transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
