// Package camera provides a 2D pan and zoom camera over the control stage.
package camera

// Camera controls the viewport into the stage the controls are laid out on.
// The stage is bounded: panning keeps the camera center on the stage.
type Camera struct {
	// Position is the camera center in stage coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Stage dimensions
	StageW, StageH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the stage with 1:1 zoom.
func New(viewportW, viewportH, stageW, stageH float32) *Camera {
	return &Camera{
		X:         stageW / 2,
		Y:         stageH / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		StageW:    stageW,
		StageH:    stageH,
		MinZoom:   0.5,
		MaxZoom:   4.0,
	}
}

// WorldToScreen converts stage coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to stage coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible reports whether any part of the stage rectangle is on screen.
func (c *Camera) IsVisible(x, y, w, h float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return x+w >= minX && x <= maxX && y+h >= minY && y <= maxY
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// SetStage updates the stage size, keeping the center on it.
func (c *Camera) SetStage(stageW, stageH float32) {
	if c.StageW > 0 && c.StageH > 0 {
		c.X *= stageW / c.StageW
		c.Y *= stageH / c.StageH
	}
	c.StageW = stageW
	c.StageH = stageH
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor keeping the stage point under (sx, sy) fixed.
func (c *Camera) ZoomAt(factor, sx, sy float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	c.X = wx - (sx-c.ViewportW/2)/c.Zoom
	c.Y = wy - (sy-c.ViewportH/2)/c.Zoom
	c.clampCenter()
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.StageW / 2
	c.Y = c.StageH / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the stage-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

func (c *Camera) clampCenter() {
	c.X = clamp(c.X, 0, c.StageW)
	c.Y = clamp(c.Y, 0, c.StageH)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
