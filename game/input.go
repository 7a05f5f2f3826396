package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/glimmer/intensity"
	"github.com/pthm-cable/glimmer/systems"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) && g.intensityPanel != nil {
		g.intensityPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyO) && g.controlsPanel != nil {
		g.controlsPanel.Toggle()
	}
	g.handleOverlayKeys()
	g.handleCamera()

	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}

	// Power saver toggle
	if rl.IsKeyPressed(rl.KeyP) {
		if g.registry.Current().Mode == intensity.ModePowerSaver {
			g.Broadcast(intensity.DefaultSettings())
		} else {
			g.Broadcast(intensity.PowerSaverSettings())
		}
	}

	g.handleSelection()
}

// handleSelection picks a control under the cursor and applies per-control keys.
func (g *Game) handleSelection() {
	mx, my := g.stageMouse()
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !g.overPanel(rl.GetMousePosition()) {
		g.selected = g.controlAt(mx, my)
	}

	if rl.IsKeyPressed(rl.KeyN) {
		g.spawnAt(mx, my)
	}

	h := g.hosts[g.selected]
	if h == nil {
		return
	}
	if rl.IsKeyPressed(rl.KeyV) {
		g.SetControlVisible(h.ID(), !h.Attached())
	}
	if rl.IsKeyPressed(rl.KeyS) {
		h.SetSimplifiedMode(!h.System().Simplified())
	}
	if rl.IsKeyPressed(rl.KeyDelete) || rl.IsKeyPressed(rl.KeyBackspace) {
		g.DestroyControl(h.ID())
	}
}

func (g *Game) overPanel(p rl.Vector2) bool {
	return g.intensityPanel != nil && g.intensityPanel.Contains(p.X, p.Y)
}

// controlAt returns the topmost control containing (x, y), or 0.
func (g *Game) controlAt(x, y float64) uint32 {
	var hit uint32
	query := g.controlFilter.Query()
	for query.Next() {
		pos, size, ctl, _ := query.Get()
		r := systems.Rect{X: float64(pos.X), Y: float64(pos.Y), W: float64(size.W), H: float64(size.H)}
		if r.Contains(systems.Vec2{X: x, Y: y}) && ctl.ID > hit {
			hit = ctl.ID
		}
	}
	return hit
}

// spawnAt cycles through the presets, placing a new control centered at (x, y).
func (g *Game) spawnAt(x, y float64) {
	ids := g.presets.IDs()
	if len(ids) == 0 {
		return
	}
	preset := ids[int(g.nextID)%len(ids)]
	const w, h = 240.0, 180.0
	id, err := g.SpawnControl(preset, systems.Rect{X: x - w/2, Y: y - h/2, W: w, H: h})
	if err == nil {
		g.selected = id
	}
}

// handleResize checks for window resize and scales the layout with it.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.resizeLayout(float64(g.screenWidth), float64(g.screenHeight), float64(w), float64(h))
	g.screenWidth = w
	g.screenHeight = h

	if g.intensityPanel != nil {
		g.intensityPanel.SetPosition(int32(w)-270, int32(h)-330)
	}
	if g.perfPanel != nil {
		g.perfPanel.SetPosition(int32(w)-260, 40)
	}
	g.camera.Resize(w, h)
	g.camera.SetStage(w, h)
}

// handleCamera pans with the right mouse button and zooms with the wheel.
func (g *Game) handleCamera() {
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		if !g.overPanel(mouse) {
			factor := float32(1.1)
			if wheel < 0 {
				factor = 1 / factor
			}
			g.camera.ZoomAt(factor, mouse.X, mouse.Y)
		}
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

// stageMouse returns the mouse position in stage coordinates.
func (g *Game) stageMouse() (float64, float64) {
	m := rl.GetMousePosition()
	x, y := g.camera.ScreenToWorld(m.X, m.Y)
	return float64(x), float64(y)
}

// resizeLayout scales every control from the old screen size to the new one.
func (g *Game) resizeLayout(oldW, oldH, newW, newH float64) {
	if oldW <= 0 || oldH <= 0 {
		return
	}
	sx, sy := newW/oldW, newH/oldH
	for _, host := range g.Hosts() {
		b := host.Bounds()
		g.MoveControl(host.ID(), systems.Rect{X: b.X * sx, Y: b.Y * sy, W: b.W * sx, H: b.H * sy})
	}
}
