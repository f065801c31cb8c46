package discovery

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oggyb/vibeu-engine/internal/agegroup"
	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/domain"
	"github.com/oggyb/vibeu-engine/internal/repository"
	"github.com/oggyb/vibeu-engine/internal/scoring"
)

// pageData is everything the scorer needs beyond the user rows, loaded with
// one query per kind for the whole page.
type pageData struct {
	interests map[string][]repository.InterestRef
	boosts    map[string]float64
	photos    map[string]int
}

func (s *Service) loadPageData(ctx context.Context, v *viewer, users []db.User) (*pageData, error) {
	ids := make([]string, 0, len(users)+1)
	ids = append(ids, v.user.ID)
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	now := s.appCtx.Now()

	d := &pageData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.interests, err = s.store.Users.InterestsFor(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		d.boosts, err = s.store.Users.ActiveBoosts(gctx, ids[1:], now)
		return err
	})
	g.Go(func() (err error) {
		d.photos, err = s.store.Users.PhotoCounts(gctx, ids[1:])
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) scoringInputs(v *viewer, users []db.User, d *pageData) (scoring.Viewer, []scoring.Candidate) {
	sv := scoring.Viewer{
		Age:  agegroup.Age(v.user.BirthDate, v.today),
		City: v.user.City,
	}
	if v.user.HasCoordinates() {
		sv.Latitude, sv.Longitude = v.user.Latitude, v.user.Longitude
	}
	for _, in := range d.interests[v.user.ID] {
		sv.InterestIDs = append(sv.InterestIDs, in.ID)
	}

	out := make([]scoring.Candidate, 0, len(users))
	for _, u := range users {
		c := scoring.Candidate{
			ID:           u.ID,
			Age:          agegroup.Age(u.BirthDate, v.today),
			City:         u.City,
			LastActiveAt: u.LastActiveAt,
			Verified:     u.IsVerified,
			PhotoCount:   d.photos[u.ID],
			Boost:        d.boosts[u.ID],
		}
		if u.HasCoordinates() {
			c.Latitude, c.Longitude = u.Latitude, u.Longitude
		}
		for _, in := range d.interests[u.ID] {
			c.Interests = append(c.Interests, scoring.Interest{ID: in.ID, Name: in.Name})
		}
		out = append(out, c)
	}
	return sv, out
}

// rank scores users and orders them by score desc, id asc.
func (s *Service) rank(ctx context.Context, v *viewer, users []db.User, mode domain.Mode) ([]Profile, error) {
	if len(users) == 0 {
		return []Profile{}, nil
	}
	d, err := s.loadPageData(ctx, v, users)
	if err != nil {
		return nil, err
	}
	sv, candidates := s.scoringInputs(v, users, d)
	ranked := s.appCtx.Scorer.Rank(sv, candidates, mode, s.appCtx.Now())

	byID := make(map[string]db.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]Profile, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, toProfile(byID[r.Candidate.ID], r))
	}
	return out, nil
}

// describe scores users but keeps their input order.
func (s *Service) describe(ctx context.Context, v *viewer, users []db.User, mode domain.Mode) ([]Profile, error) {
	if len(users) == 0 {
		return []Profile{}, nil
	}
	d, err := s.loadPageData(ctx, v, users)
	if err != nil {
		return nil, err
	}
	sv, candidates := s.scoringInputs(v, users, d)
	now := s.appCtx.Now()

	out := make([]Profile, 0, len(users))
	for i, c := range candidates {
		score, common := s.appCtx.Scorer.Score(sv, c, mode, now)
		r := scoring.Ranked{Candidate: c, Score: score, CommonInterests: common}
		if mode.IsLocal() {
			r.DistanceKm = scoring.Distance(sv.Latitude, sv.Longitude, c.Latitude, c.Longitude)
		}
		out = append(out, toProfile(users[i], r))
	}
	return out, nil
}

func toProfile(u db.User, r scoring.Ranked) Profile {
	interests := make([]string, 0, len(r.Candidate.Interests))
	for _, in := range r.Candidate.Interests {
		interests = append(interests, in.Name)
	}
	common := r.CommonInterests
	if common == nil {
		common = []string{}
	}
	return Profile{
		ID:              u.ID,
		DisplayName:     u.DisplayName,
		Age:             r.Candidate.Age,
		Country:         u.Country,
		City:            u.City,
		PhotoURL:        u.ProfilePhotoURL,
		IsVerified:      u.IsVerified,
		IsBoosted:       r.Candidate.Boost > 1,
		LastActiveAt:    u.LastActiveAt,
		Score:           r.Score,
		Interests:       interests,
		CommonInterests: common,
		DistanceKm:      r.DistanceKm,
	}
}
