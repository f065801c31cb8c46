package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedOptions tunes the demo dataset.
type SeedOptions struct {
	Users int
	Seed  int64
	Now   time.Time
	Reset bool
}

var (
	seedCountries = []struct {
		Country string
		Cities  []string
		Lat     float64
		Lon     float64
	}{
		{"Turkey", []string{"Istanbul", "Ankara", "Izmir"}, 41.01, 28.97},
		{"Germany", []string{"Berlin", "Hamburg"}, 52.52, 13.40},
		{"Spain", []string{"Madrid", "Barcelona"}, 40.42, -3.70},
	}
	seedInterests = []string{"Music", "Travel", "Football", "Gaming", "Books", "Cooking", "Art", "Cinema"}
)

// SeedTestData populates the database with demo users spread across both age
// brackets and several countries, plus interests, photos, boosts and likes.
//
// Behavior:
//  1. Optionally clears all engine tables (Reset).
//  2. Creates Users profiles; roughly a third are minors (15-17), the rest adults.
//  3. Gives each user 1-4 interests, 0-3 photos; ~10% get an active boost.
//  4. Generates same-bracket likes so trending has data.
func SeedTestData(db *gorm.DB, opts SeedOptions) error {
	if opts.Users <= 0 {
		opts.Users = 40
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	r := rand.New(rand.NewSource(opts.Seed))

	if opts.Reset {
		if err := resetTables(db); err != nil {
			return err
		}
		slog.Info("cleared existing data")
	}

	interestIDs := make([]string, 0, len(seedInterests))
	for _, name := range seedInterests {
		in := Interest{ID: uuid.NewString(), Name: name}
		if err := db.Create(&in).Error; err != nil {
			return fmt.Errorf("failed to seed interest: %w", err)
		}
		interestIDs = append(interestIDs, in.ID)
	}

	type seeded struct {
		id    string
		minor bool
	}
	users := make([]seeded, 0, opts.Users)

	for i := 1; i <= opts.Users; i++ {
		minor := i%3 == 0
		age := 18 + r.Intn(22)
		if minor {
			age = 15 + r.Intn(3)
		}
		birth := time.Date(opts.Now.Year()-age, opts.Now.Month(), opts.Now.Day(), 0, 0, 0, 0, time.UTC).
			AddDate(0, 0, -(1 + r.Intn(300)))

		loc := seedCountries[r.Intn(len(seedCountries))]
		lat := loc.Lat + r.Float64() - 0.5
		lon := loc.Lon + r.Float64() - 0.5

		u := User{
			ID:           uuid.NewString(),
			DisplayName:  fmt.Sprintf("user%d", i),
			BirthDate:    birth,
			Country:      loc.Country,
			City:         loc.Cities[r.Intn(len(loc.Cities))],
			Latitude:     &lat,
			Longitude:    &lon,
			IsVerified:   r.Intn(100) < 30,
			IsPremium:    r.Intn(100) < 15,
			LastActiveAt: opts.Now.Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&u).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, seeded{id: u.ID, minor: minor})

		for _, idx := range r.Perm(len(interestIDs))[:1+r.Intn(4)] {
			ui := UserInterest{UserID: u.ID, InterestID: interestIDs[idx]}
			if err := db.Create(&ui).Error; err != nil {
				return fmt.Errorf("failed to seed user interest: %w", err)
			}
		}

		for p := 0; p < r.Intn(4); p++ {
			photo := Photo{
				ID:         uuid.NewString(),
				UserID:     u.ID,
				URL:        fmt.Sprintf("https://cdn.example.com/%s/%d.jpg", u.ID, p),
				OrderIndex: p,
			}
			if err := db.Create(&photo).Error; err != nil {
				return fmt.Errorf("failed to seed photo: %w", err)
			}
		}

		if r.Intn(100) < 10 {
			boost := Boost{
				ID:         uuid.NewString(),
				UserID:     u.ID,
				Multiplier: 1.5,
				IsActive:   true,
				ExpiresAt:  opts.Now.Add(time.Duration(1+r.Intn(12)) * time.Hour),
			}
			if err := db.Create(&boost).Error; err != nil {
				return fmt.Errorf("failed to seed boost: %w", err)
			}
		}
	}
	slog.Info("seeded users", "count", len(users))

	// --- Seed Likes, same bracket only ---
	likes := 0
	for _, from := range users {
		for j := 0; j < 6; j++ {
			to := users[r.Intn(len(users))]
			if to.id == from.id || to.minor != from.minor {
				continue
			}
			like := Like{
				ID:         uuid.NewString(),
				FromUserID: from.id,
				ToUserID:   to.id,
				CreatedAt:  opts.Now.Add(-time.Duration(r.Intn(48)) * time.Hour),
			}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
			if res.Error != nil {
				return fmt.Errorf("failed to seed like: %w", res.Error)
			}
			likes += int(res.RowsAffected)
		}
	}
	slog.Info("seeded likes", "count", likes)

	return nil
}

func resetTables(db *gorm.DB) error {
	tables := []string{
		"notifications", "favorites", "reports", "rate_limit_windows", "skipped_users", "cooldowns",
		"friendships", "requests", "likes", "boosts", "photos",
		"user_interests", "interests", "users",
	}
	for _, t := range tables {
		if err := db.Exec("DELETE FROM " + t).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", t, err)
		}
	}
	return nil
}
