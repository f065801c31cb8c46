package social

import "time"

// onlineWindow is how recently a user must have been active to show as online.
const onlineWindow = 24 * time.Hour

// receivedLikesLimit caps the premium "who liked me" list.
const receivedLikesLimit = 100

// UserSummary is the counterpart shown in lists and results.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Age         int    `json:"age"`
	City        string `json:"city"`
	PhotoURL    string `json:"photo_url,omitempty"`
	IsVerified  bool   `json:"is_verified"`
	IsOnline    bool   `json:"is_online"`
}

// LikeResult reports the like and the caller's remaining daily likes.
// Remaining is ratelimit.Unlimited for premium callers.
type LikeResult struct {
	LikeID    string    `json:"like_id"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// RequestResult reports the new request and the remaining daily requests.
type RequestResult struct {
	RequestID string    `json:"request_id"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Friend is one entry of a friend list.
type Friend struct {
	FriendshipID string      `json:"friendship_id"`
	Since        time.Time   `json:"since"`
	User         UserSummary `json:"user"`
}

// AcceptResult is returned when a request becomes a friendship.
type AcceptResult struct {
	FriendshipID string      `json:"friendship_id"`
	Friend       UserSummary `json:"friend"`
}

// RequestView is a pending request with its counterpart.
type RequestView struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

// ReceivedLike is one entry of the premium "who liked me" list.
type ReceivedLike struct {
	LikeID    string      `json:"like_id"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}

// ReportResult reports a filed report and the remaining daily reports.
type ReportResult struct {
	ReportID  string    `json:"report_id"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Favorite is one entry of the caller's favorites list.
type Favorite struct {
	FavoriteID string      `json:"favorite_id"`
	CreatedAt  time.Time   `json:"created_at"`
	User       UserSummary `json:"user"`
}
