package systems

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/pthm-cable/glimmer/telemetry"
)

// countingRenderer tracks outstanding handles.
type countingRenderer struct {
	next     VisualHandle
	live     map[VisualHandle]ParticleKind
	acquired int
	released int
	updates  int
	badCalls int
}

func newCountingRenderer() *countingRenderer {
	return &countingRenderer{live: make(map[VisualHandle]ParticleKind)}
}

func (r *countingRenderer) Acquire(kind ParticleKind) VisualHandle {
	r.next++
	r.live[r.next] = kind
	r.acquired++
	return r.next
}

func (r *countingRenderer) Update(h VisualHandle, v Visual) {
	if _, ok := r.live[h]; !ok {
		r.badCalls++
	}
	if v.Opacity < 0 || v.Opacity > 1 {
		r.badCalls++
	}
	r.updates++
}

func (r *countingRenderer) Release(h VisualHandle) {
	if _, ok := r.live[h]; !ok {
		r.badCalls++
	}
	delete(r.live, h)
	r.released++
}

var testBounds = Rect{0, 0, 400, 300}

func seeded() Option {
	return WithRand(rand.New(rand.NewSource(42)))
}

func verticalSystem(rate float64, opts ...Option) *ParticleSystem {
	cfg := SystemConfig{
		Bounds:   testBounds,
		Cap:      50,
		Emitters: []EmitterConfig{{Kind: EmitVertical, SpawnRate: rate, IntensityScale: 1}},
	}
	return NewParticleSystem(cfg, append([]Option{seeded()}, opts...)...)
}

func ambientSystem(rate float64, life Range, opts ...Option) *ParticleSystem {
	cfg := SystemConfig{
		Bounds:   testBounds,
		Cap:      50,
		Emitters: []EmitterConfig{{Kind: EmitAmbient, SpawnRate: rate, IntensityScale: 1, Life: life}},
	}
	return NewParticleSystem(cfg, append([]Option{seeded()}, opts...)...)
}

// ---------- Conservation ----------

func TestParticleSystem_CountNeverExceedsCap(t *testing.T) {
	s := verticalSystem(500)
	for i := 0; i < 300; i++ {
		s.Step(0.016)
		if s.Count() > s.Cap() {
			t.Fatalf("step %d: count %d exceeds cap %d", i, s.Count(), s.Cap())
		}
	}
	if s.Count() == 0 {
		t.Error("expected particles after 300 steps")
	}
}

func TestParticleSystem_HandlesMatchLiveParticles(t *testing.T) {
	r := newCountingRenderer()
	s := verticalSystem(40, WithRenderer(r))

	for i := 0; i < 500; i++ {
		s.Step(0.016)
		if len(r.live) != s.Count() {
			t.Fatalf("step %d: %d outstanding handles for %d particles", i, len(r.live), s.Count())
		}
	}
	if r.badCalls != 0 {
		t.Errorf("expected no calls on unknown handles or out-of-range opacity, got %d", r.badCalls)
	}
	if r.released == 0 {
		t.Error("expected some handles to be released over 8 seconds")
	}
}

// ---------- Life ----------

func TestParticleSystem_LifeMonotonicallyDecreases(t *testing.T) {
	s := NewParticleSystem(SystemConfig{
		Bounds: testBounds,
		Cap:    10,
		Emitters: []EmitterConfig{{
			Kind: EmitAmbient, SpawnRate: 100, IntensityScale: 1, MaxParticles: 1, Life: Range{1, 1},
		}},
	}, seeded())

	s.Step(0.05)
	if s.Count() != 1 {
		t.Fatalf("expected 1 particle, got %d", s.Count())
	}
	s.SetEmissionEnabled(false)

	prev := s.Particles()[0].Life
	for s.Count() > 0 {
		s.Step(0.016)
		if s.Count() == 0 {
			break
		}
		life := s.Particles()[0].Life
		if life >= prev {
			t.Fatalf("life did not decrease: %f -> %f", prev, life)
		}
		if life <= 0 || life > 1 {
			t.Fatalf("live particle has life %f outside (0, 1]", life)
		}
		prev = life
	}
	if st := s.Stats(); st.Expired != 1 {
		t.Errorf("expected 1 expired particle, got %d", st.Expired)
	}
}

// ---------- Recycling ----------

func TestParticleSystem_RecyclingSteadyState(t *testing.T) {
	// 5 per second living 2 seconds settles around 10 live particles
	s := ambientSystem(5, Range{2, 2})
	for i := 0; i < 625; i++ { // 10 seconds
		s.Step(0.016)
	}
	if n := s.Count(); n < 8 || n > 12 {
		t.Errorf("expected about 10 live particles, got %d", n)
	}
}

func TestParticleSystem_RecycledKeepsHandle(t *testing.T) {
	r := newCountingRenderer()
	s := ambientSystem(50, Range{0.5, 0.5}, WithRenderer(r))
	for i := 0; i < 625; i++ {
		s.Step(0.016)
	}
	st := s.Stats()
	if st.Recycled == 0 {
		t.Fatal("expected dead particles to be recycled in place")
	}
	if r.acquired != st.Spawned {
		t.Errorf("expected one acquire per spawn, got %d acquires for %d spawns", r.acquired, st.Spawned)
	}
	if len(r.live) != s.Count() {
		t.Errorf("expected one live handle per particle, got %d handles for %d particles", len(r.live), s.Count())
	}
	if r.badCalls != 0 {
		t.Errorf("expected no calls on stale handles, got %d", r.badCalls)
	}
}

// ---------- Bounds policy ----------

func TestParticleSystem_AmbientWraps(t *testing.T) {
	s := ambientSystem(100, Range{10, 10})
	s.Step(0.016)
	if s.Count() == 0 {
		t.Fatal("expected ambient particles")
	}
	s.SetEmissionEnabled(false)
	n := s.Count()

	p := &s.particles[0]
	p.Pos = Vec2{399, 150}
	p.Vel = Vec2{500, 0}
	s.Step(0.01)

	if s.Count() != n {
		t.Errorf("expected ambient particle to survive leaving bounds, count %d -> %d", n, s.Count())
	}
	for _, q := range s.Particles() {
		if !testBounds.Contains(q.Pos) {
			t.Errorf("expected wrapped position inside bounds, got %+v", q.Pos)
		}
	}
	if st := s.Stats(); st.Culled != 0 {
		t.Errorf("expected no culls for ambient particles, got %d", st.Culled)
	}
}

func TestParticleSystem_StreamCulledOutsideBounds(t *testing.T) {
	s := verticalSystem(100)
	s.Step(0.02)
	if s.Count() == 0 {
		t.Fatal("expected stream particles")
	}
	s.SetEmissionEnabled(false)
	n := s.Count()

	s.particles[0].Pos = Vec2{200, -100}
	s.Step(0.001)

	if s.Count() != n-1 {
		t.Errorf("expected out-of-bounds particle removed, count %d -> %d", n, s.Count())
	}
	if st := s.Stats(); st.Culled != 1 {
		t.Errorf("expected 1 culled particle, got %d", st.Culled)
	}
}

// ---------- dt handling ----------

func TestParticleSystem_InvalidDTIsZero(t *testing.T) {
	s := verticalSystem(1000)
	s.Step(math.NaN())
	s.Step(-1)
	s.Step(math.Inf(-1))
	if s.Count() != 0 {
		t.Errorf("expected no spawns for invalid dt, got %d", s.Count())
	}
}

func TestParticleSystem_LargeDTClamped(t *testing.T) {
	s := verticalSystem(10)
	s.Step(5) // clamped to 0.1 -> 1 particle
	if s.Count() != 1 {
		t.Errorf("expected 1 particle after a clamped stall, got %d", s.Count())
	}
}

func TestParticleSystem_TickUsesClock(t *testing.T) {
	now := time.Unix(1000, 0)
	s := verticalSystem(10, WithClock(func() time.Time { return now }))

	s.Tick() // primes the clock
	if s.Count() != 0 {
		t.Fatalf("expected first tick to spawn nothing, got %d", s.Count())
	}
	now = now.Add(100 * time.Millisecond)
	s.Tick()
	if s.Count() != 1 {
		t.Errorf("expected 1 particle after 100ms at 10/s, got %d", s.Count())
	}
}

func TestParticleSystem_PrimingTickSkipsController(t *testing.T) {
	now := time.Unix(1000, 0)
	tracker := telemetry.NewPerfTracker(10, 20*time.Millisecond)
	c := NewAdaptiveController(tracker, DefaultControllerConfig())
	s := verticalSystem(10, WithClock(func() time.Time { return now }), WithController(c))

	s.Tick()
	if tracker.Len() != 0 {
		t.Fatalf("expected priming tick to record nothing, got %d samples", tracker.Len())
	}
	now = now.Add(30 * time.Millisecond)
	s.Tick()
	if tracker.Len() != 1 || tracker.Average() != 30*time.Millisecond {
		t.Errorf("expected one 30ms sample, got %d samples averaging %v", tracker.Len(), tracker.Average())
	}
}

// ---------- Caps ----------

func TestParticleSystem_EmitterCapsByShare(t *testing.T) {
	s := NewParticleSystem(SystemConfig{
		Bounds: testBounds,
		Cap:    40,
		Emitters: []EmitterConfig{
			{Kind: EmitVertical, SpawnRate: 30, IntensityScale: 1},
			{Kind: EmitHorizontal, SpawnRate: 10, IntensityScale: 1},
			{Kind: EmitAmbient, SpawnRate: 10, IntensityScale: 1, MaxParticles: 5},
		},
	}, seeded())

	em := s.Emitters()
	if len(em) != 3 {
		t.Fatalf("expected 3 emitters, got %d", len(em))
	}
	// Shares over total rate 50
	if em[0].Cap() != 24 || em[1].Cap() != 8 {
		t.Errorf("expected caps 24 and 8, got %d and %d", em[0].Cap(), em[1].Cap())
	}
	if em[2].Cap() != 5 {
		t.Errorf("expected explicit cap 5, got %d", em[2].Cap())
	}

	for i := 0; i < 200; i++ {
		s.Step(0.05)
		for _, e := range s.Emitters() {
			if e.Live() > e.Cap() {
				t.Fatalf("emitter %d: live %d exceeds cap %d", e.ID(), e.Live(), e.Cap())
			}
		}
	}
}

func TestParticleSystem_EmitterIDsUnique(t *testing.T) {
	s := verticalSystem(10)
	first := s.Emitters()[0].ID()
	s.SetEmitters([]EmitterConfig{{Kind: EmitVertical, SpawnRate: 10, IntensityScale: 1}})
	second := s.Emitters()[0].ID()
	if first == NoEmitter || second == NoEmitter || first == second {
		t.Errorf("expected distinct non-zero ids, got %d and %d", first, second)
	}
}

func TestParticleSystem_RemovedEmitterParticlesNotRespawned(t *testing.T) {
	s := ambientSystem(100, Range{0.5, 0.5})
	s.Step(0.1)
	if s.Count() == 0 {
		t.Fatal("expected particles")
	}
	s.SetEmitters(nil)
	for i := 0; i < 100; i++ {
		s.Step(0.016)
	}
	if s.Count() != 0 {
		t.Errorf("expected orphaned particles to decay, got %d", s.Count())
	}
}

// ---------- Knobs ----------

func TestParticleSystem_IntensityScaleZeroStopsSpawning(t *testing.T) {
	s := verticalSystem(100)
	s.SetIntensityScale(0)
	for i := 0; i < 60; i++ {
		s.Step(0.016)
	}
	if s.Count() != 0 {
		t.Errorf("expected no particles at zero intensity, got %d", s.Count())
	}

	s.SetIntensityScale(99)
	if s.IntensityScale() != MaxIntensityScale {
		t.Errorf("expected scale clamped to %v, got %v", MaxIntensityScale, s.IntensityScale())
	}
}

func TestParticleSystem_SimplifiedModeCapsDensity(t *testing.T) {
	s := verticalSystem(1000)
	s.SetSimplifiedMode(true)
	if !s.Simplified() {
		t.Fatal("expected simplified mode")
	}
	for i := 0; i < 100; i++ {
		s.Step(0.016)
		if s.Count() > 10 {
			t.Fatalf("step %d: expected at most 10 particles in simplified mode, got %d", i, s.Count())
		}
	}

	s.SetSimplifiedMode(false)
	for i := 0; i < 10; i++ {
		s.Step(0.016)
	}
	if s.Count() <= 10 {
		t.Errorf("expected density to recover after leaving simplified mode, got %d", s.Count())
	}
}

func TestParticleSystem_AmbientFallback(t *testing.T) {
	s := NewParticleSystem(SystemConfig{Bounds: testBounds, Cap: 30, AmbientFallback: true}, seeded())
	em := s.Emitters()
	if len(em) != 1 || em[0].Config().Kind != EmitAmbient {
		t.Fatalf("expected a single ambient fallback emitter, got %d", len(em))
	}
	for i := 0; i < 120; i++ {
		s.Step(0.05)
	}
	if s.Count() == 0 {
		t.Error("expected fallback emitter to spawn")
	}
	for _, p := range s.Particles() {
		if p.Kind != KindAmbient {
			t.Fatalf("expected ambient particles, got %v", p.Kind)
		}
	}

	none := NewParticleSystem(SystemConfig{Bounds: testBounds, Cap: 30}, seeded())
	if len(none.Emitters()) != 0 {
		t.Error("expected no emitters without fallback")
	}
}

func TestParticleSystem_Resize(t *testing.T) {
	s := NewParticleSystem(SystemConfig{
		Bounds:   testBounds,
		Emitters: []EmitterConfig{{Kind: EmitRadial, Focus: Vec2{200, 150}, Radius: 30, SpawnRate: 10, IntensityScale: 1}},
	}, seeded())

	s.Resize(800, 600)
	if b := s.Bounds(); b.W != 800 || b.H != 600 {
		t.Errorf("expected 800x600 bounds, got %+v", b)
	}
	c := s.Emitters()[0].Config()
	if c.Focus != (Vec2{400, 300}) || c.Radius != 60 {
		t.Errorf("expected focus (400,300) radius 60, got %+v radius %v", c.Focus, c.Radius)
	}
}

func TestParticleSystem_FlowSteers(t *testing.T) {
	s := NewParticleSystem(SystemConfig{
		Bounds: testBounds,
		Emitters: []EmitterConfig{{
			Kind: EmitAmbient, SpawnRate: 100, IntensityScale: 1, MaxParticles: 1, FlowInfluence: 1,
		}},
	}, seeded(), WithFlow(constantFlow{50, 0}))

	s.Step(0.02)
	s.SetEmissionEnabled(false)
	before := s.Particles()[0].Vel.X
	s.Step(0.1)
	after := s.Particles()[0].Vel.X
	if math.Abs(after-before-5) > 1e-9 {
		t.Errorf("expected vx to grow by 5, got %f -> %f", before, after)
	}
}

type constantFlow struct{ x, y float64 }

func (f constantFlow) Sample(_, _, _ float64) (float64, float64) { return f.x, f.y }

// ---------- Lifecycle ----------

func TestParticleSystem_StopIsIdempotent(t *testing.T) {
	r := newCountingRenderer()
	s := verticalSystem(100, WithRenderer(r))
	for i := 0; i < 30; i++ {
		s.Step(0.016)
	}

	s.Stop()
	if len(r.live) != 0 {
		t.Errorf("expected every handle released, %d outstanding", len(r.live))
	}
	released := r.released

	s.Stop()
	s.Step(0.016)
	s.Tick()
	if r.released != released || s.Count() != 0 {
		t.Errorf("expected stopped system to stay inert, released %d -> %d, count %d", released, r.released, s.Count())
	}
	if r.badCalls != 0 {
		t.Errorf("expected no double releases, got %d bad calls", r.badCalls)
	}
}

// ---------- Shedding ----------

func TestParticleSystem_ShedsUnderLoadThenStabilizes(t *testing.T) {
	tracker := telemetry.NewPerfTracker(60, 20*time.Millisecond)
	ctrl := NewAdaptiveController(tracker, DefaultControllerConfig())
	s := ambientSystem(1000, Range{1000, 1000}, WithController(ctrl))

	// Slow frames: 40ms each
	counts := []int{}
	for i := 0; i < 60; i++ {
		s.Step(0.04)
		if (i+1)%30 == 0 {
			counts = append(counts, s.Count())
		}
	}
	if counts[0] != 45 || counts[1] != 40 {
		t.Errorf("expected 10%% sheds to 45 then 40, got %v", counts)
	}
	if st := s.Stats(); st.Shed != 10 {
		t.Errorf("expected 10 shed particles, got %d", st.Shed)
	}

	// Healthy frames: the window still remembers the slow ones for a while
	for i := 0; i < 60; i++ {
		s.Step(0.01)
	}
	sheds := ctrl.ShedEvents()
	settled := s.Count()
	for i := 0; i < 120; i++ {
		s.Step(0.01)
		if s.Count() < settled {
			t.Fatalf("expected no further reduction once healthy, %d -> %d", settled, s.Count())
		}
	}
	if ctrl.ShedEvents() != sheds {
		t.Errorf("expected no sheds after recovery, %d -> %d", sheds, ctrl.ShedEvents())
	}
	if ctrl.Throttled() {
		t.Error("expected ceiling to lift after sustained healthy evaluations")
	}
	if s.Count() != s.Cap() {
		t.Errorf("expected regrowth to the cap, got %d", s.Count())
	}
}

func TestParticleSystem_ShedOldestFirst(t *testing.T) {
	s := ambientSystem(0, Range{10, 10})
	s.SetEmitters([]EmitterConfig{{Kind: EmitAmbient, SpawnRate: 1000, IntensityScale: 1, Life: Range{10, 10}}})
	s.Step(0.01) // 10 particles
	if s.Count() != 10 {
		t.Fatalf("expected 10 particles, got %d", s.Count())
	}
	for i := range s.particles {
		s.particles[i].Life = float64(i+1) / 10
	}
	s.shed(3)
	for _, p := range s.Particles() {
		if p.Life < 0.35 {
			t.Errorf("expected the three lowest lives shed, found %f", p.Life)
		}
	}
	if s.Count() != 7 {
		t.Errorf("expected 7 survivors, got %d", s.Count())
	}
}

// ---------- End to end ----------

func TestParticleSystem_EndToEndDecayAfterDisable(t *testing.T) {
	s := verticalSystem(10)
	for i := 0; i < 300; i++ {
		s.Step(0.016)
	}
	if s.Count() == 0 || s.Count() > 50 {
		t.Fatalf("expected 1..50 particles, got %d", s.Count())
	}

	// Equivalent of a broadcast with particle intensity 0
	s.SetIntensityScale(0)
	s.SetEmissionEnabled(false)
	spawned := s.Stats().Spawned + s.Stats().Recycled
	for i := 0; i < 300; i++ {
		s.Step(0.016)
	}
	if s.Count() != 0 {
		t.Errorf("expected every particle to decay, got %d", s.Count())
	}
	if got := s.Stats().Spawned + s.Stats().Recycled; got != spawned {
		t.Errorf("expected no spawns after disable, %d -> %d", spawned, got)
	}
}
