package systems

import (
	"github.com/tanema/gween/ease"
)

// VisualHandle is an opaque reference into an external renderer.
// The zero handle means "no visual".
type VisualHandle uint32

// NoVisual is the zero handle.
const NoVisual VisualHandle = 0

// Visual is what the engine pushes onto a handle every tick.
type Visual struct {
	Pos     Vec2
	Opacity float64
	Size    float64
}

// Renderer is the external collaborator that draws particles.
// The engine obtains a handle when a particle is spawned, pushes its visual
// state every tick and releases the handle when the particle is removed.
// A renderer never calls back into the engine.
type Renderer interface {
	Acquire(kind ParticleKind) VisualHandle
	Update(h VisualHandle, v Visual)
	Release(h VisualHandle)
}

// Fade curve fractions of a particle's life.
const (
	fadeInPortion  = 0.15
	fadeOutPortion = 0.40
)

// lifeOpacity maps normalized remaining life to opacity:
// a quick ease-in after spawn, a long ease-out before death.
func lifeOpacity(life float64) float64 {
	life = clamp01(life)
	age := 1 - life
	switch {
	case age < fadeInPortion:
		return float64(ease.OutQuad(float32(age), 0, 1, fadeInPortion))
	case life < fadeOutPortion:
		return float64(ease.InQuad(float32(life), 0, 1, fadeOutPortion))
	default:
		return 1
	}
}
