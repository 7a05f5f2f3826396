package renderer

import (
	"testing"

	"github.com/pthm-cable/glimmer/systems"
)

func TestParticleRenderer_HandleLifecycle(t *testing.T) {
	r := NewParticleRenderer()

	a := r.Acquire(systems.KindStream)
	b := r.Acquire(systems.KindAmbient)
	if a == systems.NoVisual || b == systems.NoVisual || a == b {
		t.Fatalf("expected two distinct non-zero handles, got %d and %d", a, b)
	}
	if r.Live() != 2 {
		t.Errorf("expected 2 live handles, got %d", r.Live())
	}

	r.Update(a, systems.Visual{Pos: systems.Vec2{X: 3, Y: 4}, Opacity: 0.5, Size: 2})
	v, ok := r.Visual(a)
	if !ok || v.Pos.X != 3 || v.Opacity != 0.5 {
		t.Errorf("unexpected visual %+v (ok=%v)", v, ok)
	}

	r.Release(a)
	r.Release(a)
	if r.Live() != 1 {
		t.Errorf("double release should be a no-op, live=%d", r.Live())
	}
	if _, ok := r.Visual(a); ok {
		t.Error("released handle should not resolve")
	}

	// Freed slots are reused
	c := r.Acquire(systems.KindStream)
	if c != a {
		t.Errorf("expected slot %d to be reused, got %d", a, c)
	}
}

func TestParticleRenderer_IgnoresUnknownHandles(t *testing.T) {
	r := NewParticleRenderer()
	r.Update(systems.NoVisual, systems.Visual{Opacity: 1})
	r.Update(42, systems.Visual{Opacity: 1})
	r.Release(42)
	if r.Live() != 0 {
		t.Errorf("expected no live handles, got %d", r.Live())
	}
}

func TestParticleRenderer_BacksParticleSystem(t *testing.T) {
	r := NewParticleRenderer()
	s := systems.NewParticleSystem(systems.SystemConfig{
		Bounds: systems.Rect{W: 200, H: 200},
		Cap:    20,
		Emitters: []systems.EmitterConfig{
			{Kind: systems.EmitVertical, SpawnRate: 40, Life: systems.Range{Min: 0.5, Max: 1}},
		},
	}, systems.WithRenderer(r))

	for i := 0; i < 200; i++ {
		s.Step(1.0 / 60)
		if r.Live() != s.Count() {
			t.Fatalf("step %d: %d handles for %d particles", i, r.Live(), s.Count())
		}
	}
	s.Stop()
	if r.Live() != 0 {
		t.Errorf("expected every handle released after Stop, got %d", r.Live())
	}
}
