package systems

import (
	"math"

	"github.com/ojrac/opensimplex-go"
)

// FlowSampler provides flow vectors at bounds positions.
// t is simulation time in seconds.
type FlowSampler interface {
	Sample(x, y, t float64) (fx, fy float64)
}

// FlowConfig tunes a NoiseFlow.
type FlowConfig struct {
	Scale     float64 // spatial frequency (per bounds unit)
	TimeSpeed float64 // how fast the field evolves
	Strength  float64 // peak acceleration (units/s²)
}

// DefaultFlowConfig returns a slow, gentle current.
func DefaultFlowConfig() FlowConfig {
	return FlowConfig{Scale: 0.004, TimeSpeed: 0.15, Strength: 60}
}

// NoiseFlow is a time-varying flow field built from simplex noise.
// One noise sample picks the direction and a second offset sample picks
// the magnitude.
type NoiseFlow struct {
	noise opensimplex.Noise
	cfg   FlowConfig
}

// NewNoiseFlow creates a flow field from a seed.
func NewNoiseFlow(seed int64, cfg FlowConfig) *NoiseFlow {
	d := DefaultFlowConfig()
	if cfg.Scale <= 0 {
		cfg.Scale = d.Scale
	}
	if cfg.TimeSpeed < 0 {
		cfg.TimeSpeed = 0
	}
	if cfg.Strength < 0 {
		cfg.Strength = 0
	}
	return &NoiseFlow{noise: opensimplex.New(seed), cfg: cfg}
}

// Sample returns the flow acceleration at (x, y) at time t.
func (f *NoiseFlow) Sample(x, y, t float64) (float64, float64) {
	sx, sy, st := x*f.cfg.Scale, y*f.cfg.Scale, t*f.cfg.TimeSpeed

	angle := f.noise.Eval3(sx, sy, st) * math.Pi * 2
	magnitude := (f.noise.Eval3(sx+100, sy+100, st) + 1) * 0.5

	return math.Cos(angle) * magnitude * f.cfg.Strength,
		math.Sin(angle) * magnitude * f.cfg.Strength
}

// Config returns the field's tuning.
func (f *NoiseFlow) Config() FlowConfig {
	return f.cfg
}
