package renderer

import (
	"testing"

	"github.com/pthm-cable/glimmer/systems"
)

type constFlow struct{ x, y float64 }

func (c constFlow) Sample(_, _, _ float64) (float64, float64) { return c.x, c.y }

func TestFlowRenderer_ArrowsCoverBounds(t *testing.T) {
	r := NewFlowRenderer(10)
	b := systems.Rect{X: 100, Y: 50, W: 96, H: 48}

	arrows := r.Arrows(constFlow{x: 5}, b, 0)
	if len(arrows) != 4*2 {
		t.Fatalf("expected a 4x2 grid, got %d arrows", len(arrows))
	}
	for _, a := range arrows {
		if a.From.X < b.X || a.From.X > b.X+b.W || a.From.Y < b.Y || a.From.Y > b.Y+b.H {
			t.Errorf("arrow origin %+v outside bounds", a.From)
		}
		if a.Magnitude != 0.5 {
			t.Errorf("expected half magnitude, got %v", a.Magnitude)
		}
		if got := a.To.X - a.From.X; got != r.Length*0.5 {
			t.Errorf("expected arrow length %v, got %v", r.Length*0.5, got)
		}
	}
}

func TestFlowRenderer_ClampsAndHandlesEmpty(t *testing.T) {
	r := NewFlowRenderer(1)
	arrows := r.Arrows(constFlow{y: 100}, systems.Rect{W: 30, H: 30}, 0)
	if len(arrows) != 1 || arrows[0].Magnitude != 1 {
		t.Errorf("expected one clamped arrow, got %+v", arrows)
	}
	if r.Arrows(nil, systems.Rect{W: 30, H: 30}, 0) != nil {
		t.Error("nil sampler should produce no arrows")
	}
	if r.Arrows(constFlow{}, systems.Rect{}, 0) != nil {
		t.Error("empty bounds should produce no arrows")
	}
}
