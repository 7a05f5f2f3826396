// Package intensity holds the global animation intensity settings and the
// registry that pushes them to every live effect-bearing control.
package intensity

import (
	"log/slog"
	"math"
	"strings"
)

// Feature is a bitset of optional visual features.
type Feature uint8

const (
	FeatureParticleEffects Feature = 1 << iota
	FeatureBasicGlow
	FeatureComplexTransitions
	FeatureUIAnimations

	NoFeatures  Feature = 0
	AllFeatures         = FeatureParticleEffects | FeatureBasicGlow | FeatureComplexTransitions | FeatureUIAnimations
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{FeatureParticleEffects, "particle_effects"},
	{FeatureBasicGlow, "basic_glow"},
	{FeatureComplexTransitions, "complex_transitions"},
	{FeatureUIAnimations, "ui_animations"},
}

// Has reports whether all bits of f are set.
func (s Feature) Has(f Feature) bool {
	return s&f == f
}

// With returns s with f set.
func (s Feature) With(f Feature) Feature {
	return s | f
}

// Without returns s with f cleared.
func (s Feature) Without(f Feature) Feature {
	return s &^ f
}

func (s Feature) String() string {
	if s == NoFeatures {
		return "none"
	}
	var parts []string
	for _, fn := range featureNames {
		if s.Has(fn.f) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseFeatures converts feature names into a bitset. Unknown names are ignored.
func ParseFeatures(names []string) Feature {
	var out Feature
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		for _, fn := range featureNames {
			if fn.name == n {
				out |= fn.f
			}
		}
	}
	return out
}

// PerformanceMode selects between full rendering and a resource-constrained mode.
type PerformanceMode uint8

const (
	ModeFull PerformanceMode = iota
	ModePowerSaver
)

func (m PerformanceMode) String() string {
	if m == ModePowerSaver {
		return "power_saver"
	}
	return "full"
}

// ParseMode parses a mode name. Anything unrecognized is ModeFull.
func ParseMode(s string) PerformanceMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "power_saver", "powersaver", "power-saver":
		return ModePowerSaver
	default:
		return ModeFull
	}
}

// Speed limits for AnimationSpeed.
const (
	MinAnimationSpeed = 0.0
	MaxAnimationSpeed = 3.0
)

// Settings describes how much visual flourish the whole application shows.
// It is passed by value; receivers never share or mutate an instance.
type Settings struct {
	Master         float64
	Glow           float64
	Particle       float64
	AnimationSpeed float64
	Features       Feature
	Mode           PerformanceMode
}

// DefaultSettings returns full intensity with every feature enabled.
func DefaultSettings() Settings {
	return Settings{
		Master:         1,
		Glow:           1,
		Particle:       1,
		AnimationSpeed: 1,
		Features:       AllFeatures,
		Mode:           ModeFull,
	}
}

// PowerSaverSettings returns a low-resource configuration:
// particles and complex transitions off, dimmed glow, slower animation.
func PowerSaverSettings() Settings {
	return Settings{
		Master:         0.6,
		Glow:           0.5,
		Particle:       0,
		AnimationSpeed: 0.5,
		Features:       FeatureBasicGlow,
		Mode:           ModePowerSaver,
	}
}

// Clamped returns a copy with every scalar in range. NaN becomes 0.
func (s Settings) Clamped() Settings {
	s.Master = clamp(s.Master, 0, 1)
	s.Glow = clamp(s.Glow, 0, 1)
	s.Particle = clamp(s.Particle, 0, 1)
	s.AnimationSpeed = clamp(s.AnimationSpeed, MinAnimationSpeed, MaxAnimationSpeed)
	s.Features &= AllFeatures
	if s.Mode > ModePowerSaver {
		s.Mode = ModeFull
	}
	return s
}

// EffectiveParticle is the particle density scale a target should use.
func (s Settings) EffectiveParticle() float64 {
	if !s.Features.Has(FeatureParticleEffects) {
		return 0
	}
	return clamp(s.Master, 0, 1) * clamp(s.Particle, 0, 1)
}

// EffectiveGlow is the glow strength a target should use.
func (s Settings) EffectiveGlow() float64 {
	if !s.Features.Has(FeatureBasicGlow) {
		return 0
	}
	return clamp(s.Master, 0, 1) * clamp(s.Glow, 0, 1)
}

// Simplified reports whether targets should enter simplified mode.
func (s Settings) Simplified() bool {
	return s.Mode == ModePowerSaver
}

// WithMaster returns a copy with Master set.
func (s Settings) WithMaster(v float64) Settings {
	s.Master = v
	return s
}

// WithParticle returns a copy with Particle set.
func (s Settings) WithParticle(v float64) Settings {
	s.Particle = v
	return s
}

// WithGlow returns a copy with Glow set.
func (s Settings) WithGlow(v float64) Settings {
	s.Glow = v
	return s
}

// WithAnimationSpeed returns a copy with AnimationSpeed set.
func (s Settings) WithAnimationSpeed(v float64) Settings {
	s.AnimationSpeed = v
	return s
}

// WithFeatures returns a copy with Features replaced.
func (s Settings) WithFeatures(f Feature) Settings {
	s.Features = f
	return s
}

// WithMode returns a copy with Mode set.
func (s Settings) WithMode(m PerformanceMode) Settings {
	s.Mode = m
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("master", s.Master),
		slog.Float64("glow", s.Glow),
		slog.Float64("particle", s.Particle),
		slog.Float64("animation_speed", s.AnimationSpeed),
		slog.String("features", s.Features.String()),
		slog.String("mode", s.Mode.String()),
	)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
