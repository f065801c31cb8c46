package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_HasPremium(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)

	assert.False(t, (&User{}).HasPremium(now))
	assert.True(t, (&User{IsPremium: true}).HasPremium(now))
	assert.True(t, (&User{IsPremium: true, PremiumExpiresAt: &future}).HasPremium(now))
	assert.False(t, (&User{IsPremium: true, PremiumExpiresAt: &past}).HasPremium(now))
}

func TestUser_HasCoordinates(t *testing.T) {
	lat, lon := 41.0, 29.0

	assert.True(t, (&User{Latitude: &lat, Longitude: &lon}).HasCoordinates())
	assert.False(t, (&User{Latitude: &lat}).HasCoordinates())
	assert.False(t, (&User{Longitude: &lon}).HasCoordinates())
	assert.False(t, (&User{}).HasCoordinates())
}
