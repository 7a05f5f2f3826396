package main

import (
	"fmt"

	"github.com/pthm-cable/glimmer/config"
	"github.com/pthm-cable/glimmer/systems"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Emitter int     // Index into the preset's emitters
	Life    bool    // false = spawn rate, true = mean lifetime
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the tunable parameters of one preset: a spawn rate and
// a mean lifetime per emitter.
type ParamVector struct {
	Specs []ParamSpec
	base  systems.Preset
}

// lifeSpread is the half-width of the lifetime range as a share of its mean.
const lifeSpread = 0.25

// NewParamVector builds the parameter set for p. Defaults are read from
// the normalized emitters so kind defaults count as the starting point.
func NewParamVector(p systems.Preset, bounds systems.Rect) (*ParamVector, error) {
	if len(p.Emitters) == 0 {
		return nil, fmt.Errorf("preset %q has no emitters to tune", p.ID)
	}

	sys := systems.NewParticleSystem(p.SystemConfig(bounds, systems.DefaultCap))
	defer sys.Stop()

	pv := &ParamVector{base: p}
	for i, e := range sys.Emitters() {
		c := e.Config()
		kind := c.Kind.String()
		pv.Specs = append(pv.Specs,
			ParamSpec{
				Name: fmt.Sprintf("%d_%s_spawn_rate", i, kind), Emitter: i,
				Min: 0.5, Max: max(60, c.SpawnRate*4), Default: c.SpawnRate,
			},
			ParamSpec{
				Name: fmt.Sprintf("%d_%s_life", i, kind), Emitter: i, Life: true,
				Min: 0.2, Max: 12, Default: (c.Life.Min + c.Life.Max) / 2,
			},
		)
	}
	return pv, nil
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Apply returns a copy of the base preset with values applied.
func (pv *ParamVector) Apply(values []float64) systems.Preset {
	clamped := pv.Clamp(values)

	p := pv.base
	p.Emitters = append([]config.EmitterSpec(nil), pv.base.Emitters...)
	for i, spec := range pv.Specs {
		e := &p.Emitters[spec.Emitter]
		if spec.Life {
			e.Life = [2]float64{clamped[i] * (1 - lifeSpread), clamped[i] * (1 + lifeSpread)}
		} else {
			e.SpawnRate = clamped[i]
		}
	}
	return p
}
