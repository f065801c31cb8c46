package discovery

import (
	"time"

	"github.com/oggyb/vibeu-engine/internal/domain"
)

const (
	trendingLimit  = 10
	spotlightLimit = 10
	trendingWindow = 24 * time.Hour
)

// FeedRequest asks for one discovery page.
type FeedRequest struct {
	UserID string
	Mode   domain.Mode
	// Cursor is the opaque token from the previous page; empty for the first.
	Cursor string
	// Limit <= 0 selects the default page size; larger than max is clamped.
	Limit int
}

// Profile is a candidate as shown to the viewer.
type Profile struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	Age             int       `json:"age"`
	Country         string    `json:"country"`
	City            string    `json:"city"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	IsVerified      bool      `json:"is_verified"`
	IsBoosted       bool      `json:"is_boosted"`
	LastActiveAt    time.Time `json:"last_active_at"`
	Score           float64   `json:"score"`
	Interests       []string  `json:"interests"`
	CommonInterests []string  `json:"common_interests"`
	DistanceKm      *float64  `json:"distance_km,omitempty"`
	// RecentLikes is set on trending results only.
	RecentLikes int64 `json:"recent_likes,omitempty"`
}

// FeedPage is one page of ranked candidates.
type FeedPage struct {
	Profiles   []Profile `json:"profiles"`
	NextCursor *string   `json:"next_cursor"`
	HasMore    bool      `json:"has_more"`
}
