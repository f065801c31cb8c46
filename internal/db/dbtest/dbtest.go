// Package dbtest opens isolated in-memory SQLite databases and builds fixture
// rows for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/vibeu-engine/internal/db"
)

// Open spins up a migrated in-memory SQLite DB private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// UserOpt customizes a fixture user.
type UserOpt func(*db.User)

func Country(c string) UserOpt { return func(u *db.User) { u.Country = c } }

func City(c string) UserOpt { return func(u *db.User) { u.City = c } }

func Verified() UserOpt { return func(u *db.User) { u.IsVerified = true } }

func Banned() UserOpt { return func(u *db.User) { u.IsBanned = true } }

func Premium() UserOpt { return func(u *db.User) { u.IsPremium = true } }

func Coords(lat, lon float64) UserOpt {
	return func(u *db.User) { u.Latitude, u.Longitude = &lat, &lon }
}

func ActiveAt(t time.Time) UserOpt { return func(u *db.User) { u.LastActiveAt = t } }

func Born(t time.Time) UserOpt { return func(u *db.User) { u.BirthDate = t } }

// BornYearsAgo sets the birth date to now minus years and extra days.
func BornYearsAgo(now time.Time, years, extraDays int) UserOpt {
	return func(u *db.User) {
		y, m, d := now.Date()
		u.BirthDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(-years, 0, -extraDays)
	}
}

// CreateUser inserts a user with the given id. Defaults: adult (25), Turkey,
// Istanbul, active at now.
func CreateUser(t *testing.T, gdb *gorm.DB, now time.Time, id string, opts ...UserOpt) db.User {
	t.Helper()

	u := db.User{
		ID:           id,
		DisplayName:  "user " + id,
		Country:      "Turkey",
		City:         "Istanbul",
		LastActiveAt: now,
	}
	BornYearsAgo(now, 25, 0)(&u)
	for _, o := range opts {
		o(&u)
	}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

// CreateInterest inserts an interest and links it to the given users.
func CreateInterest(t *testing.T, gdb *gorm.DB, id, name string, userIDs ...string) {
	t.Helper()

	require.NoError(t, gdb.Create(&db.Interest{ID: id, Name: name}).Error)
	for _, uid := range userIDs {
		require.NoError(t, gdb.Create(&db.UserInterest{UserID: uid, InterestID: id}).Error)
	}
}

// CreateBoost inserts an active boost for userID expiring at expires.
func CreateBoost(t *testing.T, gdb *gorm.DB, userID string, multiplier float64, expires time.Time) {
	t.Helper()

	require.NoError(t, gdb.Create(&db.Boost{
		ID:         uuid.NewString(),
		UserID:     userID,
		Multiplier: multiplier,
		IsActive:   true,
		ExpiresAt:  expires,
	}).Error)
}

// CreatePhoto inserts a photo for userID.
func CreatePhoto(t *testing.T, gdb *gorm.DB, userID string) {
	t.Helper()

	require.NoError(t, gdb.Create(&db.Photo{
		ID:     uuid.NewString(),
		UserID: userID,
		URL:    "https://cdn.example.com/" + userID + ".jpg",
	}).Error)
}

// CreateLike inserts a like row directly, bypassing the service.
func CreateLike(t *testing.T, gdb *gorm.DB, from, to string, at time.Time) {
	t.Helper()

	require.NoError(t, gdb.Create(&db.Like{
		ID:         uuid.NewString(),
		FromUserID: from,
		ToUserID:   to,
		CreatedAt:  at,
	}).Error)
}

// CountNotifications returns how many notification rows exist for userID.
func CountNotifications(t *testing.T, gdb *gorm.DB, userID string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, gdb.Model(&db.Notification{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
