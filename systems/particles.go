package systems

import (
	"math"
	"math/rand"
	"slices"
	"time"
)

// ParticleKind identifies how a particle treats the system bounds.
type ParticleKind uint8

const (
	// KindStream particles die once they leave the bounds.
	KindStream ParticleKind = iota
	// KindAmbient particles wrap around the bounds.
	KindAmbient
)

func (k ParticleKind) String() string {
	if k == KindAmbient {
		return "ambient"
	}
	return "stream"
}

// EmitterID identifies an emitter within one system. IDs are never reused.
type EmitterID uint32

// NoEmitter marks a particle whose emitter is gone.
const NoEmitter EmitterID = 0

// Particle is one simulated point.
// Life is normalized: 1 at spawn, 0 at death.
type Particle struct {
	Pos     Vec2
	Vel     Vec2
	Life    float64
	MaxLife float64 // seconds
	Size    float64
	Kind    ParticleKind
	Emitter EmitterID
	Handle  VisualHandle
}

// Default engine limits.
const (
	DefaultCap          = 50
	DefaultMaxDT        = 0.1
	DefaultBoundsMargin = 8.0
	MaxIntensityScale   = 4.0
)

// SystemConfig configures a ParticleSystem.
type SystemConfig struct {
	Bounds       Rect
	Cap          int
	Emitters     []EmitterConfig
	BoundsMargin float64
	MaxDT        float64
	// AmbientFallback spawns a gentle ambient field when Emitters is empty.
	AmbientFallback bool
}

func (c SystemConfig) normalize() SystemConfig {
	if c.Cap <= 0 {
		c.Cap = DefaultCap
	}
	if c.MaxDT <= 0 || math.IsNaN(c.MaxDT) {
		c.MaxDT = DefaultMaxDT
	}
	if c.BoundsMargin < 0 || math.IsNaN(c.BoundsMargin) {
		c.BoundsMargin = DefaultBoundsMargin
	}
	c.Bounds.W = clampFloat(c.Bounds.W, 0, math.MaxFloat32)
	c.Bounds.H = clampFloat(c.Bounds.H, 0, math.MaxFloat32)
	return c
}

// Stats are cumulative lifecycle counters.
type Stats struct {
	Spawned  int // new particles appended to the pool
	Recycled int // dead particles respawned in place
	Expired  int // removed for running out of life
	Culled   int // removed for leaving the bounds
	Shed     int // removed by the adaptive controller
}

// Option configures a ParticleSystem.
type Option func(*ParticleSystem)

// WithRenderer attaches a renderer that receives visual updates.
func WithRenderer(r Renderer) Option {
	return func(s *ParticleSystem) { s.renderer = r }
}

// WithController attaches an adaptive quality controller.
func WithController(c *AdaptiveController) Option {
	return func(s *ParticleSystem) { s.controller = c }
}

// WithFlow steers particles with a flow field.
func WithFlow(f FlowSampler) Option {
	return func(s *ParticleSystem) { s.flow = f }
}

// WithClock replaces the wall clock used by Tick.
func WithClock(now func() time.Time) Option {
	return func(s *ParticleSystem) { s.now = now }
}

// WithRand sets the random source used for sampling.
func WithRand(rng *rand.Rand) Option {
	return func(s *ParticleSystem) { s.rng = rng }
}

// ParticleSystem owns a fixed-capacity pool of particles and the emitters
// that feed it. It is driven from a single animation thread.
type ParticleSystem struct {
	cfg       SystemConfig
	particles []Particle
	emitters  []*Emitter
	byID      map[EmitterID]int
	budget    []int
	nextID    EmitterID

	renderer   Renderer
	controller *AdaptiveController
	flow       FlowSampler
	now        func() time.Time
	rng        *rand.Rand

	lastTick time.Time
	elapsed  float64
	limit    int
	scale    float64
	emitting bool
	stopped  bool

	stats Stats
}

// NewParticleSystem creates a system with its pool preallocated to the cap.
func NewParticleSystem(cfg SystemConfig, opts ...Option) *ParticleSystem {
	cfg = cfg.normalize()
	s := &ParticleSystem{
		cfg:       cfg,
		particles: make([]Particle, 0, cfg.Cap),
		byID:      make(map[EmitterID]int),
		now:       time.Now,
		limit:     cfg.Cap,
		scale:     1,
		emitting:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.SetEmitters(cfg.Emitters)
	return s
}

// SetEmitters replaces the emitter set. Particles from removed emitters
// finish their life and are not respawned.
func (s *ParticleSystem) SetEmitters(cfgs []EmitterConfig) {
	if s.stopped {
		return
	}
	s.cfg.Emitters = slices.Clone(cfgs)
	if len(cfgs) == 0 && s.cfg.AmbientFallback {
		cfgs = []EmitterConfig{s.fallbackEmitter()}
	}

	s.emitters = s.emitters[:0]
	clear(s.byID)
	for _, c := range cfgs {
		s.nextID++
		e := &Emitter{id: s.nextID, cfg: c.normalize()}
		s.byID[e.id] = len(s.emitters)
		s.emitters = append(s.emitters, e)
	}
	s.budget = make([]int, len(s.emitters))
	s.assignCaps()

	for i := range s.particles {
		if idx, ok := s.byID[s.particles[i].Emitter]; ok {
			s.emitters[idx].live++
		}
	}
}

// fallbackEmitter fills roughly half the cap with slow ambient motes.
func (s *ParticleSystem) fallbackEmitter() EmitterConfig {
	avgLife := (ambientLife.Min + ambientLife.Max) / 2
	return EmitterConfig{
		Kind:           EmitAmbient,
		SpawnRate:      math.Max(1, float64(s.cfg.Cap)*0.5/avgLife),
		IntensityScale: 1,
	}
}

// assignCaps splits the system cap between emitters by spawn-rate share.
// Explicit per-emitter caps win.
func (s *ParticleSystem) assignCaps() {
	total := 0.0
	for _, e := range s.emitters {
		total += e.cfg.effectiveRate()
	}
	for _, e := range s.emitters {
		switch {
		case e.cfg.MaxParticles > 0:
			e.cap = min(e.cfg.MaxParticles, s.cfg.Cap)
		case total > 0:
			e.cap = int(math.Ceil(float64(s.cfg.Cap) * e.cfg.effectiveRate() / total))
		default:
			e.cap = s.cfg.Cap
		}
	}
}

// Step advances the simulation by a synthetic dt in seconds.
func (s *ParticleSystem) Step(dt float64) {
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	frame := time.Duration(math.Min(dt, 3600) * float64(time.Second))
	s.advance(frame, dt)
}

// Tick advances the simulation by the time elapsed since the previous
// Tick. The first call only primes the clock.
func (s *ParticleSystem) Tick() {
	now := s.now()
	if s.lastTick.IsZero() {
		s.lastTick = now
		return
	}
	frame := now.Sub(s.lastTick)
	s.lastTick = now
	s.advance(frame, frame.Seconds())
}

func (s *ParticleSystem) advance(frame time.Duration, dt float64) {
	if s.stopped {
		return
	}
	dt = clampFloat(dt, 0, s.cfg.MaxDT)

	dec := Decision{Limit: s.cfg.Cap, AllowGrowth: true}
	if s.controller != nil {
		dec = s.controller.Observe(frame, len(s.particles), s.cfg.Cap)
	}
	s.limit = min(dec.Limit, s.cfg.Cap)

	for i, e := range s.emitters {
		n := e.accumulate(s.scale, dt)
		if !s.emitting || !dec.AllowGrowth {
			n = 0
		}
		s.budget[i] = n
	}

	if dec.Shed > 0 {
		s.shed(dec.Shed)
	}
	s.integrate(dt)
	s.spawnPending()
	s.pushVisuals()
}

// shed removes the n particles closest to death.
func (s *ParticleSystem) shed(n int) {
	n = min(n, len(s.particles))
	if n <= 0 {
		return
	}
	order := make([]int, len(s.particles))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		la, lb := s.particles[a].Life, s.particles[b].Life
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return a - b
	})
	for _, i := range order[:n] {
		s.particles[i].Life = -1
	}

	alive := 0
	for i := range s.particles {
		p := &s.particles[i]
		if p.Life < 0 {
			s.release(p)
			s.stats.Shed++
			continue
		}
		s.particles[alive] = *p
		alive++
	}
	clear(s.particles[alive:])
	s.particles = s.particles[:alive]
}

// integrate moves every particle, applies bounds policy and decides the
// fate of dead ones: recycle in place if budget allows, else swap-remove.
func (s *ParticleSystem) integrate(dt float64) {
	b := s.cfg.Bounds
	outer := b.Expand(s.cfg.BoundsMargin)

	for i := 0; i < len(s.particles); {
		p := &s.particles[i]
		e := s.emitterOf(p.Emitter)

		if e != nil && s.flow != nil && e.cfg.FlowInfluence > 0 && dt > 0 {
			fx, fy := s.flow.Sample(p.Pos.X, p.Pos.Y, s.elapsed)
			k := e.cfg.FlowInfluence * dt
			p.Vel.X += fx * k
			p.Vel.Y += fy * k
		}

		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		if e != nil && e.cfg.Kind == EmitOrbit {
			holdOnRing(p, e.cfg.Focus, e.cfg.Radius)
		}
		if p.MaxLife > 0 {
			p.Life -= dt / p.MaxLife
		} else {
			p.Life = 0
		}

		culled := false
		if p.Kind == KindAmbient {
			if !b.Empty() {
				p.Pos.X = b.X + wrap(p.Pos.X-b.X, b.W)
				p.Pos.Y = b.Y + wrap(p.Pos.Y-b.Y, b.H)
			}
		} else if !outer.Contains(p.Pos) {
			culled = true
		}

		if p.Life > 0 && !culled {
			i++
			continue
		}
		if culled {
			s.stats.Culled++
		} else {
			s.stats.Expired++
		}

		if s.tryRecycle(p, e) {
			i++
			continue
		}
		s.release(p)
		last := len(s.particles) - 1
		s.particles[i] = s.particles[last]
		s.particles[last] = Particle{}
		s.particles = s.particles[:last]
	}
	s.elapsed += dt
}

// tryRecycle respawns a dead particle in place from its own emitter.
func (s *ParticleSystem) tryRecycle(p *Particle, e *Emitter) bool {
	if e == nil || len(s.particles) > s.limit || e.live > e.cap {
		return false
	}
	idx := s.byID[e.id]
	if s.budget[idx] <= 0 {
		return false
	}
	s.budget[idx]--
	h := p.Handle
	e.spawn(p, s.cfg.Bounds, s.rng)
	p.Handle = h
	s.stats.Recycled++
	return true
}

// spawnPending appends new particles for any remaining budget.
func (s *ParticleSystem) spawnPending() {
	for i, e := range s.emitters {
		for s.budget[i] > 0 && len(s.particles) < s.limit && e.live < e.cap {
			s.budget[i]--
			s.particles = s.particles[:len(s.particles)+1]
			p := &s.particles[len(s.particles)-1]
			*p = Particle{}
			e.spawn(p, s.cfg.Bounds, s.rng)
			if s.renderer != nil {
				p.Handle = s.renderer.Acquire(p.Kind)
			}
			e.live++
			s.stats.Spawned++
		}
		s.budget[i] = 0
	}
}

func (s *ParticleSystem) pushVisuals() {
	if s.renderer == nil {
		return
	}
	for i := range s.particles {
		p := &s.particles[i]
		if p.Handle == NoVisual {
			continue
		}
		s.renderer.Update(p.Handle, Visual{Pos: p.Pos, Opacity: lifeOpacity(p.Life), Size: p.Size})
	}
}

// release returns a particle's visual handle and drops it from its emitter.
func (s *ParticleSystem) release(p *Particle) {
	if e := s.emitterOf(p.Emitter); e != nil {
		e.live--
	}
	if s.renderer != nil && p.Handle != NoVisual {
		s.renderer.Release(p.Handle)
	}
	p.Handle = NoVisual
}

func (s *ParticleSystem) emitterOf(id EmitterID) *Emitter {
	if idx, ok := s.byID[id]; ok {
		return s.emitters[idx]
	}
	return nil
}

// holdOnRing snaps an orbiting particle back onto its circle and keeps
// its speed tangential.
func holdOnRing(p *Particle, focus Vec2, radius float64) {
	rel := p.Pos.Sub(focus)
	d := rel.Len()
	if d == 0 || radius <= 0 {
		return
	}
	n := rel.Scale(1 / d)
	p.Pos = focus.Add(n.Scale(radius))
	speed := p.Vel.Len()
	tangent := Vec2{-n.Y, n.X}
	if tangent.X*p.Vel.X+tangent.Y*p.Vel.Y < 0 {
		tangent = tangent.Scale(-1)
	}
	p.Vel = tangent.Scale(speed)
}

// Resize changes the bounds size and rescales emitter geometry to match.
func (s *ParticleSystem) Resize(w, h float64) {
	b := s.cfg.Bounds
	s.SetBounds(Rect{b.X, b.Y, w, h})
}

// SetBounds moves and resizes the bounds. Emitter geometry follows;
// live particles stay where they are and are wrapped or culled on the
// next tick.
func (s *ParticleSystem) SetBounds(to Rect) {
	if s.stopped {
		return
	}
	to.W = clampFloat(to.W, 0, math.MaxFloat32)
	to.H = clampFloat(to.H, 0, math.MaxFloat32)
	from := s.cfg.Bounds
	s.cfg.Bounds = to
	for _, e := range s.emitters {
		e.cfg = e.cfg.rescale(from, to)
	}
	for i := range s.cfg.Emitters {
		s.cfg.Emitters[i] = s.cfg.Emitters[i].rescale(from, to)
	}
}

// SetEmissionEnabled turns spawning and respawning on or off. Live
// particles keep decaying either way.
func (s *ParticleSystem) SetEmissionEnabled(on bool) {
	s.emitting = on
}

// EmissionEnabled reports whether emitters may spawn.
func (s *ParticleSystem) EmissionEnabled() bool {
	return s.emitting
}

// SetIntensityScale multiplies every emitter's spawn rate.
func (s *ParticleSystem) SetIntensityScale(scale float64) {
	s.scale = clampFloat(scale, 0, MaxIntensityScale)
}

// IntensityScale returns the system-wide spawn multiplier.
func (s *ParticleSystem) IntensityScale() float64 {
	return s.scale
}

// SetSimplifiedMode forces the controller into its low-density state.
// Without a controller the system gets a default one.
func (s *ParticleSystem) SetSimplifiedMode(on bool) {
	if s.controller == nil {
		if !on {
			return
		}
		s.controller = NewAdaptiveController(nil, DefaultControllerConfig())
	}
	s.controller.SetSimplifiedMode(on)
}

// Simplified reports whether simplified mode is forced.
func (s *ParticleSystem) Simplified() bool {
	return s.controller != nil && s.controller.Simplified()
}

// Controller returns the attached controller, if any.
func (s *ParticleSystem) Controller() *AdaptiveController {
	return s.controller
}

// Stop releases every visual and empties the pool. Safe to call twice.
func (s *ParticleSystem) Stop() {
	if s.stopped {
		return
	}
	for i := range s.particles {
		s.release(&s.particles[i])
	}
	clear(s.particles)
	s.particles = s.particles[:0]
	s.emitters = nil
	clear(s.byID)
	s.budget = nil
	s.stopped = true
}

// Stopped reports whether Stop has been called.
func (s *ParticleSystem) Stopped() bool {
	return s.stopped
}

// Count returns the number of live particles.
func (s *ParticleSystem) Count() int {
	return len(s.particles)
}

// Particles returns the live particles. The slice must not be modified
// and is only valid until the next Step or Tick.
func (s *ParticleSystem) Particles() []Particle {
	return s.particles
}

// Emitters returns the live emitters.
func (s *ParticleSystem) Emitters() []*Emitter {
	return s.emitters
}

// Stats returns cumulative lifecycle counters.
func (s *ParticleSystem) Stats() Stats {
	return s.stats
}

// Bounds returns the simulation bounds.
func (s *ParticleSystem) Bounds() Rect {
	return s.cfg.Bounds
}

// Cap returns the hard particle cap.
func (s *ParticleSystem) Cap() int {
	return s.cfg.Cap
}

// Limit returns the effective cap applied on the last tick.
func (s *ParticleSystem) Limit() int {
	return s.limit
}

// Elapsed returns the simulated seconds this system has integrated.
func (s *ParticleSystem) Elapsed() float64 {
	return s.elapsed
}
