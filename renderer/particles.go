package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/glimmer/systems"
)

type particleSlot struct {
	used    bool
	kind    systems.ParticleKind
	visual  systems.Visual
	tint    rl.Color
	pending bool // acquired but not updated yet
}

// ParticleRenderer owns the visuals behind particle handles and draws them.
// Handle bookkeeping is plain Go so it works without a window; only Draw
// and DrawGlow touch raylib.
type ParticleRenderer struct {
	slots []particleSlot
	free  []systems.VisualHandle
	live  int

	Stream  rl.Color
	Ambient rl.Color
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{
		// slot 0 backs NoVisual and is never handed out
		slots:   make([]particleSlot, 1, 256),
		Stream:  rl.Color{R: 120, G: 200, B: 255, A: 255},
		Ambient: rl.Color{R: 200, G: 180, B: 255, A: 255},
	}
}

// Acquire allocates a visual for a new particle.
func (r *ParticleRenderer) Acquire(kind systems.ParticleKind) systems.VisualHandle {
	var h systems.VisualHandle
	if n := len(r.free); n > 0 {
		h = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, particleSlot{})
		h = systems.VisualHandle(len(r.slots) - 1)
	}
	tint := r.Stream
	if kind == systems.KindAmbient {
		tint = r.Ambient
	}
	r.slots[h] = particleSlot{used: true, kind: kind, tint: tint, pending: true}
	r.live++
	return h
}

// Update stores the latest visual state for h. Unknown handles are ignored.
func (r *ParticleRenderer) Update(h systems.VisualHandle, v systems.Visual) {
	if !r.valid(h) {
		return
	}
	s := &r.slots[h]
	s.visual = v
	s.pending = false
}

// Release returns h to the pool. Releasing twice is a no-op.
func (r *ParticleRenderer) Release(h systems.VisualHandle) {
	if !r.valid(h) {
		return
	}
	r.slots[h] = particleSlot{}
	r.free = append(r.free, h)
	r.live--
}

func (r *ParticleRenderer) valid(h systems.VisualHandle) bool {
	return h != systems.NoVisual && int(h) < len(r.slots) && r.slots[h].used
}

// Live returns the number of outstanding handles.
func (r *ParticleRenderer) Live() int {
	return r.live
}

// Visual returns the last state pushed to h.
func (r *ParticleRenderer) Visual(h systems.VisualHandle) (systems.Visual, bool) {
	if !r.valid(h) {
		return systems.Visual{}, false
	}
	return r.slots[h].visual, true
}

// Draw renders every live visual as a soft circle.
func (r *ParticleRenderer) Draw() {
	for i := 1; i < len(r.slots); i++ {
		s := &r.slots[i]
		if !s.used || s.pending || s.visual.Opacity <= 0 {
			continue
		}

		c := s.tint
		c.A = uint8(float64(c.A) * clamp01(s.visual.Opacity))

		size := float32(s.visual.Size)
		if size < 0.5 {
			size = 0.5
		}
		pos := rl.Vector2{X: float32(s.visual.Pos.X), Y: float32(s.visual.Pos.Y)}

		// Halo first, then the core
		halo := c
		halo.A /= 4
		rl.DrawCircleV(pos, size*2.5, halo)
		rl.DrawCircleV(pos, size, c)
	}
}

// DrawGlow draws a breathing outline around a host control's bounds.
// strength is the pulse value already scaled by the glow intensity.
func (r *ParticleRenderer) DrawGlow(bounds systems.Rect, strength float64) {
	strength = clamp01(strength)
	if strength <= 0 {
		return
	}
	rect := rl.Rectangle{
		X:      float32(bounds.X),
		Y:      float32(bounds.Y),
		Width:  float32(bounds.W),
		Height: float32(bounds.H),
	}
	const layers = 4
	for i := 0; i < layers; i++ {
		grow := float32(i) * 3
		c := r.Stream
		c.A = uint8(strength * 160 / float64(i+1))
		rl.DrawRectangleLinesEx(rl.Rectangle{
			X:      rect.X - grow,
			Y:      rect.Y - grow,
			Width:  rect.Width + grow*2,
			Height: rect.Height + grow*2,
		}, 2, c)
	}
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
