package db

import (
	"time"
)

// User is the profile-store row. The engine only reads it.
//
// Indexes:
//   - idx_users_eligibility(is_banned, birth_date, country)
//     Covers the discovery predicate (banned flag, bracket range, locality).
type User struct {
	ID               string    `gorm:"primaryKey;size:36"`
	DisplayName      string    `gorm:"size:64;not null"`
	BirthDate        time.Time `gorm:"not null;index:idx_users_eligibility,priority:2"`
	Country          string    `gorm:"size:64;not null;index:idx_users_eligibility,priority:3"`
	City             string    `gorm:"size:64"`
	Latitude         *float64
	Longitude        *float64
	IsVerified       bool   `gorm:"not null;default:false"`
	IsBanned         bool   `gorm:"not null;default:false;index:idx_users_eligibility,priority:1"`
	ProfilePhotoURL  string `gorm:"size:255"`
	LastActiveAt     time.Time
	IsPremium        bool `gorm:"not null;default:false"`
	PremiumExpiresAt *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// HasPremium reports whether the premium entitlement is active at now.
// A nil expiry means a non-expiring entitlement.
func (u *User) HasPremium(now time.Time) bool {
	if !u.IsPremium {
		return false
	}
	return u.PremiumExpiresAt == nil || u.PremiumExpiresAt.After(now)
}

// HasCoordinates reports whether both latitude and longitude are present.
func (u *User) HasCoordinates() bool {
	return u.Latitude != nil && u.Longitude != nil
}

type Interest struct {
	ID   string `gorm:"primaryKey;size:36"`
	Name string `gorm:"size:64;not null"`
}

// UserInterest links a user to an interest. Composite PK (UserID, InterestID).
type UserInterest struct {
	UserID     string `gorm:"primaryKey;size:36"`
	InterestID string `gorm:"primaryKey;size:36;index"`
}

type Photo struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     string `gorm:"size:36;not null;index"`
	URL        string `gorm:"size:255;not null"`
	OrderIndex int    `gorm:"not null;default:0"`
}

// Boost is a time-limited visibility multiplier.
type Boost struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"size:36;not null;index:idx_boosts_active,priority:1"`
	Multiplier float64   `gorm:"not null"`
	IsActive   bool      `gorm:"not null;index:idx_boosts_active,priority:2"`
	ExpiresAt  time.Time `gorm:"not null;index:idx_boosts_active,priority:3"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Like is a one-way like. Unique per ordered pair (FromUserID, ToUserID).
//
// Indexes:
//   - idx_likes_pair (unique): insert-or-fail for AlreadyLiked.
//   - idx_likes_to_created(to_user_id, created_at): trending and received lists.
type Like struct {
	ID         string    `gorm:"primaryKey;size:36"`
	FromUserID string    `gorm:"size:36;not null;uniqueIndex:idx_likes_pair,priority:1"`
	ToUserID   string    `gorm:"size:36;not null;uniqueIndex:idx_likes_pair,priority:2;index:idx_likes_to_created,priority:1"`
	CreatedAt  time.Time `gorm:"not null;index:idx_likes_to_created,priority:2"`
}

// Favorite is a private bookmark; the favorited user is never told.
type Favorite struct {
	ID              string    `gorm:"primaryKey;size:36"`
	UserID          string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_pair,priority:1"`
	FavoritedUserID string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_pair,priority:2"`
	CreatedAt       time.Time `gorm:"not null"`
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s RequestStatus) Terminal() bool { return s != RequestPending }

// Request is a friend request.
//
// PendingKey is "from:to" while the request is pending and NULL afterwards.
// Its unique index enforces one pending request per ordered pair while
// letting terminal rows accumulate.
type Request struct {
	ID          string        `gorm:"primaryKey;size:36"`
	FromUserID  string        `gorm:"size:36;not null;index"`
	ToUserID    string        `gorm:"size:36;not null;index"`
	Status      RequestStatus `gorm:"size:16;not null"`
	PendingKey  *string       `gorm:"size:80;uniqueIndex"`
	CreatedAt   time.Time     `gorm:"not null"`
	RespondedAt *time.Time
}

// PendingKeyFor builds the pending-uniqueness key for an ordered pair.
func PendingKeyFor(from, to string) string { return from + ":" + to }

// Friendship is stored once per unordered pair with UserAID < UserBID.
type Friendship struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserAID   string    `gorm:"size:36;not null;uniqueIndex:idx_friendships_pair,priority:1"`
	UserBID   string    `gorm:"size:36;not null;uniqueIndex:idx_friendships_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// NormalizePair orders two ids so the lexicographically smaller comes first.
func NormalizePair(x, y string) (a, b string) {
	if x < y {
		return x, y
	}
	return y, x
}

// Other returns the participant that is not userID.
func (f *Friendship) Other(userID string) string {
	if f.UserAID == userID {
		return f.UserBID
	}
	return f.UserAID
}

// Involves reports whether userID is one of the two participants.
func (f *Friendship) Involves(userID string) bool {
	return f.UserAID == userID || f.UserBID == userID
}

// Cooldown suppresses ActionType from UserID toward TargetUserID until ExpiresAt.
type Cooldown struct {
	UserID       string    `gorm:"primaryKey;size:36"`
	TargetUserID string    `gorm:"primaryKey;size:36"`
	ActionType   string    `gorm:"primaryKey;size:16"`
	ExpiresAt    time.Time `gorm:"not null"`
}

// SkippedUser hides SkippedUserID from UserID's discovery until ExpiresAt.
type SkippedUser struct {
	UserID        string    `gorm:"primaryKey;size:36"`
	SkippedUserID string    `gorm:"primaryKey;size:36"`
	ExpiresAt     time.Time `gorm:"not null;index"`
}

// RateLimitWindow is a fixed daily counter per (visitor, action, window).
type RateLimitWindow struct {
	VisitorID   string    `gorm:"primaryKey;size:36"`
	ActionType  string    `gorm:"primaryKey;size:16"`
	WindowStart time.Time `gorm:"primaryKey"`
	Count       int       `gorm:"not null;default:0"`
}

// Report is a user report queued for moderation.
type Report struct {
	ID             string    `gorm:"primaryKey;size:36"`
	ReporterID     string    `gorm:"size:36;not null;index"`
	ReportedUserID string    `gorm:"size:36;not null;index"`
	Reason         string    `gorm:"size:64;not null"`
	Description    string    `gorm:"type:text"`
	Status         string    `gorm:"size:16;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

// Notification is a persisted notification intent for the delivery layer.
type Notification struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;not null;index"`
	Type      string    `gorm:"size:32;not null"`
	Payload   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	ReadAt    *time.Time
}

// AllModels lists every table for AutoMigrate.
func AllModels() []any {
	return []any{
		&User{}, &Interest{}, &UserInterest{}, &Photo{}, &Boost{},
		&Like{}, &Request{}, &Friendship{}, &Cooldown{}, &SkippedUser{},
		&RateLimitWindow{}, &Report{}, &Notification{}, &Favorite{},
	}
}
