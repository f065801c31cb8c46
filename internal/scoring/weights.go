package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oggyb/vibeu-engine/internal/domain"
)

// Weights tunes the composite score. Every term is non-negative.
type Weights struct {
	// Age is the age term at zero age difference.
	Age float64 `yaml:"age"`
	// AgeDecayYears is the e-folding distance of the age term.
	AgeDecayYears float64 `yaml:"age_decay_years"`
	// Interest is added once per shared interest.
	Interest float64 `yaml:"interest"`
	// Recency is the ceiling of the activity term.
	Recency float64 `yaml:"recency"`
	// RecencyHalfLifeHours halves the activity term every N hours idle.
	RecencyHalfLifeHours float64 `yaml:"recency_half_life_hours"`
	// Locality is the same-city bonus, local mode only.
	Locality float64 `yaml:"locality"`
	Verified float64 `yaml:"verified"`
	// ProfileQuality is reached at PhotoTarget photos.
	ProfileQuality float64 `yaml:"profile_quality"`
	PhotoTarget    int     `yaml:"photo_target"`
}

// ModeWeights holds one weight set per discovery mode.
type ModeWeights struct {
	Local  Weights `yaml:"local"`
	Global Weights `yaml:"global"`
}

// For returns the set used for mode. Anything but local is global.
func (m ModeWeights) For(mode domain.Mode) Weights {
	if mode.IsLocal() {
		return m.Local
	}
	return m.Global
}

// Uniform uses w for both modes.
func Uniform(w Weights) ModeWeights {
	return ModeWeights{Local: w, Global: w}
}

// DefaultModeWeights pairs DefaultWeights for local mode with
// DefaultGlobalWeights.
func DefaultModeWeights() ModeWeights {
	return ModeWeights{Local: DefaultWeights(), Global: DefaultGlobalWeights()}
}

// DefaultWeights is the local-mode set: age proximity first, then
// locality and shared interests.
func DefaultWeights() Weights {
	return Weights{
		Age:                  100,
		AgeDecayYears:        5,
		Interest:             10,
		Recency:              40,
		RecencyHalfLifeHours: 24,
		Locality:             20,
		Verified:             15,
		ProfileQuality:       30,
		PhotoTarget:          5,
	}
}

// DefaultGlobalWeights leans on shared interests and activity since
// candidates are spread across countries. There is no locality bonus.
func DefaultGlobalWeights() Weights {
	return Weights{
		Age:                  100,
		AgeDecayYears:        5,
		Interest:             16,
		Recency:              80,
		RecencyHalfLifeHours: 24,
		Locality:             0,
		Verified:             15,
		ProfileQuality:       30,
		PhotoTarget:          5,
	}
}

// LoadWeights overlays the YAML file at path on DefaultModeWeights. The
// file has a local and a global section; keys left out keep their
// default. An empty path returns the defaults.
func LoadWeights(path string) (ModeWeights, error) {
	w := DefaultModeWeights()
	if path == "" {
		return w, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ModeWeights{}, fmt.Errorf("read scoring weights: %w", err)
	}
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return ModeWeights{}, fmt.Errorf("parse scoring weights: %w", err)
	}
	if err := w.Local.Validate(); err != nil {
		return ModeWeights{}, fmt.Errorf("local: %w", err)
	}
	if err := w.Global.Validate(); err != nil {
		return ModeWeights{}, fmt.Errorf("global: %w", err)
	}
	return w, nil
}

// Validate rejects weights that would break monotonicity or produce
// negative terms.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"age": w.Age, "interest": w.Interest, "recency": w.Recency,
		"locality": w.Locality, "verified": w.Verified, "profile_quality": w.ProfileQuality,
	} {
		if v < 0 {
			return fmt.Errorf("scoring weight %s must be non-negative, got %v", name, v)
		}
	}
	if w.AgeDecayYears <= 0 {
		return fmt.Errorf("age_decay_years must be positive")
	}
	if w.RecencyHalfLifeHours <= 0 {
		return fmt.Errorf("recency_half_life_hours must be positive")
	}
	if w.PhotoTarget <= 0 {
		return fmt.Errorf("photo_target must be positive")
	}
	return nil
}
