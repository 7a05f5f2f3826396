package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/glimmer/systems"
	"github.com/pthm-cable/glimmer/ui"
)

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	if g.overlays == nil {
		return
	}
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.overlays.Toggle(desc.ID)
		}
	}
}

// drawActiveOverlays renders all currently enabled overlays.
func (g *Game) drawActiveOverlays() {
	if g.overlays == nil {
		return
	}
	for _, id := range g.overlays.EnabledOverlays() {
		for _, h := range g.Hosts() {
			if !h.Valid() {
				continue
			}
			switch id {
			case ui.OverlayBounds:
				g.drawBounds(h)
			case ui.OverlayLimits:
				drawLimits(h)
			case ui.OverlayEmitters:
				drawEmitters(h)
			case ui.OverlayMotion:
				drawMotion(h)
			case ui.OverlayFlowField:
				g.drawFlowVectors(h)
			}
		}
	}
}

func toRect(r systems.Rect) rl.Rectangle {
	return rl.Rectangle{X: float32(r.X), Y: float32(r.Y), Width: float32(r.W), Height: float32(r.H)}
}

// drawBounds outlines the control and the margin past which stream
// particles are culled.
func (g *Game) drawBounds(h *Host) {
	b := h.Bounds()
	m := g.deps.BoundsMargin
	outer := systems.Rect{X: b.X - m, Y: b.Y - m, W: b.W + 2*m, H: b.H + 2*m}

	rl.DrawRectangleLinesEx(toRect(b), 1, rl.Color{R: 0, G: 200, B: 255, A: 160})
	rl.DrawRectangleLinesEx(toRect(outer), 1, rl.Color{R: 0, G: 200, B: 255, A: 60})
	rl.DrawText(h.Label(), int32(b.X)+6, int32(b.Y+b.H)-16, 10, rl.Color{R: 0, G: 200, B: 255, A: 200})
}

// drawLimits draws a fill bar along the bottom edge: live particles
// against the cap, with a tick at the controller's current limit.
func drawLimits(h *Host) {
	sys := h.System()
	b := h.Bounds()
	if sys.Cap() == 0 {
		return
	}
	x, y, w := float32(b.X)+4, float32(b.Y+b.H)-6, float32(b.W)-8
	fill := float32(sys.Count()) / float32(sys.Cap())
	limit := float32(sys.Limit()) / float32(sys.Cap())

	barColor := rl.Color{R: 100, G: 200, B: 100, A: 200}
	if h.Controller().Throttled() {
		barColor = rl.Orange
	}
	rl.DrawRectangleV(rl.Vector2{X: x, Y: y}, rl.Vector2{X: w, Y: 3}, rl.Color{R: 40, G: 40, B: 50, A: 200})
	rl.DrawRectangleV(rl.Vector2{X: x, Y: y}, rl.Vector2{X: w * fill, Y: 3}, barColor)
	rl.DrawLineV(rl.Vector2{X: x + w*limit, Y: y - 3}, rl.Vector2{X: x + w*limit, Y: y + 5}, rl.Red)

	text := fmt.Sprintf("%d/%d", sys.Count(), sys.Cap())
	rl.DrawText(text, int32(x+w)-rl.MeasureText(text, 10), int32(y)-12, 10, rl.LightGray)
}

// drawEmitters shows where each emitter spawns.
func drawEmitters(h *Host) {
	b := h.Bounds()
	color := rl.Color{R: 255, G: 180, B: 60, A: 180}

	for i, e := range h.System().Emitters() {
		c := e.Config()
		switch c.Kind {
		case systems.EmitRadial, systems.EmitOrbit:
			center := rl.Vector2{X: float32(c.Focus.X), Y: float32(c.Focus.Y)}
			rl.DrawCircleLinesV(center, float32(c.Radius), color)
			rl.DrawCircleV(center, 2, color)
		default:
			region := c.Region
			if region.W <= 0 || region.H <= 0 {
				region = b
			}
			rl.DrawRectangleLinesEx(toRect(region), 1, color)
			if c.Kind != systems.EmitAmbient {
				mid := rl.Vector2{X: float32(region.X + region.W/2), Y: float32(region.Y + region.H/2)}
				tip := rl.Vector2{X: mid.X + float32(c.Direction.X)*20, Y: mid.Y + float32(c.Direction.Y)*20}
				rl.DrawLineEx(mid, tip, 2, color)
			}
		}
		label := fmt.Sprintf("%s %d/%d", c.Kind, e.Live(), e.Cap())
		rl.DrawText(label, int32(b.X)+6, int32(b.Y)+20+int32(i)*12, 10, color)
	}
}

// drawMotion draws each particle's velocity over a tenth of a second.
func drawMotion(h *Host) {
	color := rl.Color{R: 200, G: 120, B: 255, A: 140}
	for _, p := range h.System().Particles() {
		from := rl.Vector2{X: float32(p.Pos.X), Y: float32(p.Pos.Y)}
		to := rl.Vector2{X: float32(p.Pos.X + p.Vel.X*0.1), Y: float32(p.Pos.Y + p.Vel.Y*0.1)}
		rl.DrawLineV(from, to, color)
	}
}

// drawFlowVectors samples the shared flow field over the control at the
// control's own simulated time.
func (g *Game) drawFlowVectors(h *Host) {
	if g.deps.Flow == nil || g.flowRenderer == nil {
		return
	}
	g.flowRenderer.Draw(g.deps.Flow, h.Bounds(), h.System().Elapsed())
}
