// Package scoring ranks discovery candidates. Scores are deterministic for a
// given input and clock; ties are broken by candidate id.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/oggyb/vibeu-engine/internal/domain"
)

// Viewer is the caller the page is ranked for.
type Viewer struct {
	Age         int
	City        string
	Latitude    *float64
	Longitude   *float64
	InterestIDs []string
}

type Interest struct {
	ID   string
	Name string
}

// Candidate carries everything the score needs about one profile.
type Candidate struct {
	ID           string
	Age          int
	City         string
	Latitude     *float64
	Longitude    *float64
	LastActiveAt time.Time
	Verified     bool
	Interests    []Interest
	PhotoCount   int
	// Boost is the active boost multiplier; values <= 1 mean no boost.
	Boost float64
}

// Ranked is a scored candidate.
type Ranked struct {
	Candidate       Candidate
	Score           float64
	CommonInterests []string
	// DistanceKm is set in local mode when both sides have coordinates.
	DistanceKm *float64
}

type Engine struct {
	w ModeWeights
}

func NewEngine(w ModeWeights) *Engine {
	return &Engine{w: w}
}

// Weights returns the set Score applies in mode.
func (e *Engine) Weights(mode domain.Mode) Weights { return e.w.For(mode) }

// Score computes the composite score of c for v and the names of their
// shared interests.
func (e *Engine) Score(v Viewer, c Candidate, mode domain.Mode, now time.Time) (float64, []string) {
	w := e.Weights(mode)
	common := CommonInterests(v.InterestIDs, c.Interests)

	ageDiff := math.Abs(float64(v.Age - c.Age))
	score := w.Age * math.Exp(-ageDiff/w.AgeDecayYears)

	score += w.Interest * float64(len(common))

	idle := now.Sub(c.LastActiveAt).Hours()
	if idle < 0 {
		idle = 0
	}
	score += w.Recency * math.Exp2(-idle/w.RecencyHalfLifeHours)

	if mode.IsLocal() && c.City != "" && c.City == v.City {
		score += w.Locality
	}
	if c.Verified {
		score += w.Verified
	}

	photos := c.PhotoCount
	if photos > w.PhotoTarget {
		photos = w.PhotoTarget
	}
	score += w.ProfileQuality * float64(photos) / float64(w.PhotoTarget)

	if c.Boost > 1 {
		score *= c.Boost
	}
	return score, common
}

// Rank scores every candidate and orders them by score desc, id asc.
func (e *Engine) Rank(v Viewer, candidates []Candidate, mode domain.Mode, now time.Time) []Ranked {
	out := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		score, common := e.Score(v, c, mode, now)
		r := Ranked{Candidate: c, Score: score, CommonInterests: common}
		if mode.IsLocal() {
			r.DistanceKm = Distance(v.Latitude, v.Longitude, c.Latitude, c.Longitude)
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Candidate.ID < out[j].Candidate.ID
	})
	return out
}

// CommonInterests returns the names of candidate interests whose id is in
// viewerIDs, in candidate order.
func CommonInterests(viewerIDs []string, candidate []Interest) []string {
	if len(viewerIDs) == 0 || len(candidate) == 0 {
		return []string{}
	}
	mine := make(map[string]struct{}, len(viewerIDs))
	for _, id := range viewerIDs {
		mine[id] = struct{}{}
	}
	out := make([]string, 0, len(candidate))
	for _, in := range candidate {
		if _, ok := mine[in.ID]; ok {
			out = append(out, in.Name)
		}
	}
	return out
}

// Distance is the haversine distance in km rounded to one decimal, or nil
// when any coordinate is missing.
func Distance(lat1, lon1, lat2, lon2 *float64) *float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return nil
	}
	d := math.Round(HaversineKM(*lat1, *lon1, *lat2, *lon2)*10) / 10
	return &d
}

// HaversineKM is the great-circle distance between two points in km.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
