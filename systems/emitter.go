package systems

import (
	"math"
	"math/rand"
	"strings"

	"github.com/pthm-cable/glimmer/config"
)

// EmitterKind selects an emitter's spawn policy.
type EmitterKind uint8

const (
	EmitVertical EmitterKind = iota
	EmitHorizontal
	EmitDiagonal
	EmitRadial
	EmitOrbit
	EmitAmbient
)

var emitterKindNames = [...]string{
	EmitVertical:   "vertical",
	EmitHorizontal: "horizontal",
	EmitDiagonal:   "diagonal",
	EmitRadial:     "radial",
	EmitOrbit:      "orbit",
	EmitAmbient:    "ambient",
}

func (k EmitterKind) String() string {
	if int(k) < len(emitterKindNames) {
		return emitterKindNames[k]
	}
	return "unknown"
}

// ParseEmitterKind parses a kind name. Unknown names fall back to ambient.
func ParseEmitterKind(s string) (EmitterKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range emitterKindNames {
		if name == s {
			return EmitterKind(i), true
		}
	}
	return EmitAmbient, false
}

// ParticleKind returns the kind of particle this emitter produces.
func (k EmitterKind) ParticleKind() ParticleKind {
	if k == EmitAmbient {
		return KindAmbient
	}
	return KindStream
}

// defaultDirection is the flow direction when none is configured.
// Screen coordinates: y grows downward, so "up" is negative y.
func (k EmitterKind) defaultDirection() Vec2 {
	switch k {
	case EmitVertical:
		return Vec2{0, -1}
	case EmitHorizontal:
		return Vec2{1, 0}
	case EmitDiagonal:
		return Vec2{1, -1}.Normalize()
	default:
		return Vec2{}
	}
}

// Per-kind sampling defaults.
var (
	flowSpeed     = Range{80, 200}
	flowJitter    = 0.30
	flowLife      = Range{1.5, 3.0}
	flowSize      = Range{1.5, 3.0}
	radialSpeed   = Range{40, 90}
	radialLife    = Range{0.6, 1.2}
	orbitSpeed    = Range{30, 60}
	orbitLife     = Range{1.5, 2.5}
	ringSize      = Range{1.5, 2.5}
	ambientSpeed  = 10.0
	ambientLife   = Range{4, 8}
	ambientSize   = Range{1, 2.5}
	defaultRadius = 24.0
)

// EmitterConfig describes one emitter in bounds coordinates.
type EmitterConfig struct {
	Kind EmitterKind

	// Direction overrides the kind's default flow direction (flow kinds only).
	Direction Vec2
	// Focus and Radius place radial and orbit particles on a circle.
	Focus  Vec2
	Radius float64
	// Region restricts where flow and ambient particles spawn. Empty means
	// the upwind edge of the system bounds (flow) or the whole bounds (ambient).
	Region Rect

	// SpawnRate is the expected particles per second before scaling.
	SpawnRate float64
	// IntensityScale multiplies both the spawn rate and flow speed.
	IntensityScale float64
	// MaxParticles caps this emitter; 0 derives a share of the system cap.
	MaxParticles int

	Life  Range // seconds
	Size  Range
	Speed Range // before IntensityScale

	// FlowInfluence scales flow-field steering for this emitter's particles.
	FlowInfluence float64
}

// normalize clamps out-of-range values and fills kind defaults.
func (c EmitterConfig) normalize() EmitterConfig {
	if c.Kind > EmitAmbient {
		c.Kind = EmitAmbient
	}
	c.SpawnRate = clampFloat(c.SpawnRate, 0, 10000)
	c.IntensityScale = clampFloat(c.IntensityScale, 0, 10)
	if c.MaxParticles < 0 {
		c.MaxParticles = 0
	}
	c.FlowInfluence = clampFloat(c.FlowInfluence, 0, 10)
	c.Radius = clampFloat(c.Radius, 0, 1e6)

	if c.Direction.Len() == 0 {
		c.Direction = c.Kind.defaultDirection()
	} else {
		c.Direction = c.Direction.Normalize()
	}

	var life, size, speed Range
	switch c.Kind {
	case EmitRadial:
		life, size, speed = radialLife, ringSize, radialSpeed
	case EmitOrbit:
		life, size, speed = orbitLife, ringSize, orbitSpeed
	case EmitAmbient:
		life, size, speed = ambientLife, ambientSize, Range{0, ambientSpeed}
	default:
		life, size, speed = flowLife, flowSize, flowSpeed
	}
	if c.Life.zero() {
		c.Life = life
	}
	if c.Size.zero() {
		c.Size = size
	}
	if c.Speed.zero() {
		c.Speed = speed
	}
	// Lifetimes must stay positive so life decays at a finite rate
	c.Life.Min = clampFloat(c.Life.Min, 0.05, 3600)
	c.Life.Max = clampFloat(c.Life.Max, 0.05, 3600)
	if (c.Kind == EmitRadial || c.Kind == EmitOrbit) && c.Radius == 0 {
		c.Radius = defaultRadius
	}
	return c
}

// effectiveRate is the unscaled-by-system spawn contribution per second.
func (c EmitterConfig) effectiveRate() float64 {
	return c.SpawnRate * c.IntensityScale
}

// EmitterFromSpec converts a preset emitter (geometry as fractions of the
// bounds) into an absolute EmitterConfig for the given bounds.
func EmitterFromSpec(spec config.EmitterSpec, bounds Rect) EmitterConfig {
	kind, _ := ParseEmitterKind(spec.Kind)
	minSide := math.Min(bounds.W, bounds.H)

	c := EmitterConfig{
		Kind:           kind,
		Direction:      Vec2{spec.Direction[0], spec.Direction[1]},
		Focus:          Vec2{bounds.X + spec.Focus[0]*bounds.W, bounds.Y + spec.Focus[1]*bounds.H},
		Radius:         spec.Radius * minSide,
		SpawnRate:      spec.SpawnRate,
		IntensityScale: spec.Scale(),
		MaxParticles:   spec.MaxParticles,
		Life:           Range{spec.Life[0], spec.Life[1]},
		Size:           Range{spec.Size[0], spec.Size[1]},
		Speed:          Range{spec.Speed[0], spec.Speed[1]},
		FlowInfluence:  spec.FlowInfluence,
	}
	if spec.Region[2] > 0 && spec.Region[3] > 0 {
		c.Region = Rect{
			X: bounds.X + spec.Region[0]*bounds.W,
			Y: bounds.Y + spec.Region[1]*bounds.H,
			W: spec.Region[2] * bounds.W,
			H: spec.Region[3] * bounds.H,
		}
	}
	return c
}

// Emitter is a live spawn policy owned by one ParticleSystem.
type Emitter struct {
	id    EmitterID
	cfg   EmitterConfig
	accum float64 // fractional spawn carry
	live  int
	cap   int
}

// ID returns the emitter's system-unique id.
func (e *Emitter) ID() EmitterID {
	return e.id
}

// Config returns the normalized configuration.
func (e *Emitter) Config() EmitterConfig {
	return e.cfg
}

// Live returns how many particles this emitter currently owns.
func (e *Emitter) Live() int {
	return e.live
}

// Cap returns this emitter's particle cap.
func (e *Emitter) Cap() int {
	return e.cap
}

// accumulate adds this tick's spawn budget and returns the whole part.
func (e *Emitter) accumulate(scale, dt float64) int {
	rate := e.cfg.effectiveRate() * scale
	if rate <= 0 || dt <= 0 {
		e.accum = 0
		return 0
	}
	e.accum += rate * dt
	n := math.Floor(e.accum)
	e.accum -= n
	return int(n)
}

// spawn fills p with a freshly sampled particle. The visual handle is
// left to the caller.
func (e *Emitter) spawn(p *Particle, bounds Rect, rng *rand.Rand) {
	c := &e.cfg
	p.Kind = c.Kind.ParticleKind()
	p.Emitter = e.id
	p.Life = 1
	p.MaxLife = c.Life.Sample(rng)
	p.Size = c.Size.Sample(rng)

	switch c.Kind {
	case EmitRadial, EmitOrbit:
		angle := rng.Float64() * 2 * math.Pi
		normal := Vec2{math.Cos(angle), math.Sin(angle)}
		p.Pos = c.Focus.Add(normal.Scale(c.Radius))
		speed := c.Speed.Sample(rng) * c.IntensityScale
		if c.Kind == EmitRadial {
			p.Vel = normal.Scale(speed)
		} else {
			// Counter-clockwise tangent
			p.Vel = Vec2{-normal.Y, normal.X}.Scale(speed)
		}

	case EmitAmbient:
		region := c.Region
		if region.Empty() {
			region = bounds
		}
		p.Pos = region.randomPoint(rng)
		max := math.Min(c.Speed.Max, ambientSpeed)
		p.Vel = Vec2{(rng.Float64()*2 - 1) * max, (rng.Float64()*2 - 1) * max}

	default:
		d := c.Direction
		speed := c.Speed.Sample(rng) * c.IntensityScale
		jx := 1 + (rng.Float64()*2-1)*flowJitter
		jy := 1 + (rng.Float64()*2-1)*flowJitter
		p.Vel = Vec2{d.X * speed * jx, d.Y * speed * jy}
		if !c.Region.Empty() {
			p.Pos = c.Region.randomPoint(rng)
		} else {
			p.Pos = upwindEdgePoint(d, bounds, rng)
		}
	}
}

// upwindEdgePoint picks a point on the bounds edge a flow enters through.
// Edges are weighted by the direction's component along them.
func upwindEdgePoint(d Vec2, b Rect, rng *rand.Rand) Vec2 {
	wx, wy := math.Abs(d.X), math.Abs(d.Y)
	if wx+wy == 0 {
		return b.randomPoint(rng)
	}
	if rng.Float64()*(wx+wy) < wx {
		x := b.X
		if d.X < 0 {
			x = b.X + b.W
		}
		return Vec2{x, b.Y + rng.Float64()*b.H}
	}
	y := b.Y
	if d.Y < 0 {
		y = b.Y + b.H
	}
	return Vec2{b.X + rng.Float64()*b.W, y}
}

// rescale maps emitter geometry from one bounds to another.
func (c EmitterConfig) rescale(from, to Rect) EmitterConfig {
	if from.Empty() || to.Empty() {
		return c
	}
	sx, sy := to.W/from.W, to.H/from.H
	mapPoint := func(p Vec2) Vec2 {
		return Vec2{to.X + (p.X-from.X)*sx, to.Y + (p.Y-from.Y)*sy}
	}
	c.Focus = mapPoint(c.Focus)
	c.Radius *= math.Min(sx, sy)
	if !c.Region.Empty() {
		origin := mapPoint(Vec2{c.Region.X, c.Region.Y})
		c.Region = Rect{origin.X, origin.Y, c.Region.W * sx, c.Region.H * sy}
	}
	return c
}
