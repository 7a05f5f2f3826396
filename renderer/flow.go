package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/glimmer/systems"
)

// FlowArrow is one sampled flow vector.
type FlowArrow struct {
	From, To  systems.Vec2
	Magnitude float64 // 0..1 of the renderer's strength
}

// FlowRenderer draws a flow field as a grid of arrows.
type FlowRenderer struct {
	Spacing  float64 // grid step in bounds units
	Length   float64 // arrow length at full strength
	Strength float64 // flow magnitude drawn at full length
	Color    rl.Color
}

// NewFlowRenderer creates a flow renderer for a field of the given peak strength.
func NewFlowRenderer(strength float64) *FlowRenderer {
	if strength <= 0 {
		strength = 1
	}
	return &FlowRenderer{
		Spacing:  24,
		Length:   14,
		Strength: strength,
		Color:    rl.Color{R: 50, G: 100, B: 130, A: 255},
	}
}

// Arrows samples f across bounds at time t.
func (r *FlowRenderer) Arrows(f systems.FlowSampler, bounds systems.Rect, t float64) []FlowArrow {
	if f == nil || r.Spacing <= 0 || bounds.W <= 0 || bounds.H <= 0 {
		return nil
	}
	cols := int(bounds.W / r.Spacing)
	rows := int(bounds.H / r.Spacing)
	arrows := make([]FlowArrow, 0, cols*rows)

	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			p := systems.Vec2{
				X: bounds.X + (float64(i)+0.5)*r.Spacing,
				Y: bounds.Y + (float64(j)+0.5)*r.Spacing,
			}
			fx, fy := f.Sample(p.X, p.Y, t)
			mag := math.Min(math.Hypot(fx, fy)/r.Strength, 1)
			dir := systems.Vec2{X: fx, Y: fy}.Normalize()
			arrows = append(arrows, FlowArrow{
				From:      p,
				To:        p.Add(dir.Scale(r.Length * mag)),
				Magnitude: mag,
			})
		}
	}
	return arrows
}

// Draw renders the field over bounds with additive blending.
func (r *FlowRenderer) Draw(f systems.FlowSampler, bounds systems.Rect, t float64) {
	rl.BeginBlendMode(rl.BlendAdditive)
	for _, a := range r.Arrows(f, bounds, t) {
		c := r.Color
		c.A = uint8(60 + 160*a.Magnitude)
		from := rl.Vector2{X: float32(a.From.X), Y: float32(a.From.Y)}
		to := rl.Vector2{X: float32(a.To.X), Y: float32(a.To.Y)}
		rl.DrawLineEx(from, to, 1.5, c)
		rl.DrawCircleV(to, 1.5, c)
	}
	rl.EndBlendMode()
}
