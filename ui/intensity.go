package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/glimmer/intensity"
)

var featureToggles = []struct {
	feature intensity.Feature
	label   string
}{
	{intensity.FeatureParticleEffects, "Particle effects"},
	{intensity.FeatureBasicGlow, "Basic glow"},
	{intensity.FeatureComplexTransitions, "Complex transitions"},
	{intensity.FeatureUIAnimations, "UI animations"},
}

// IntensityPanel edits the global animation intensity.
type IntensityPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewIntensityPanel creates a visible intensity panel.
func NewIntensityPanel(x, y, width int32) *IntensityPanel {
	return &IntensityPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (p *IntensityPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Toggle switches panel visibility.
func (p *IntensityPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *IntensityPanel) IsVisible() bool {
	return p.visible
}

func (p *IntensityPanel) height() int32 {
	return 320
}

// Contains reports whether (x, y) is over the visible panel.
func (p *IntensityPanel) Contains(x, y float32) bool {
	if !p.visible {
		return false
	}
	return x >= float32(p.x) && x <= float32(p.x+p.width) &&
		y >= float32(p.y) && y <= float32(p.y+p.height())
}

// Draw renders the panel and returns the edited settings and whether
// anything changed this frame.
func (p *IntensityPanel) Draw(current intensity.Settings) (intensity.Settings, bool) {
	if !p.visible {
		return current, false
	}

	r := p.renderer
	padding := r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, p.height())

	x := float32(p.x + padding)
	y := float32(p.y + padding)
	inner := float32(p.width - padding*2)

	rl.DrawText("Animation Intensity", int32(x), int32(y), 16, rl.White)
	y += 24

	next := current
	slider := func(label string, value, maxVal float64) float64 {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		rl.DrawText(fmt.Sprintf("%.2f", value), int32(x+inner-30), int32(y), r.Theme.FontSize, r.Theme.ValueColor)
		y += 14
		v := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: inner, Height: 14}, "", "", float32(value), 0, float32(maxVal))
		y += 22
		// float32 round trips would otherwise register as edits
		if v == float32(value) {
			return value
		}
		return float64(v)
	}

	next.Master = slider("Master", current.Master, 1)
	next.Glow = slider("Glow", current.Glow, 1)
	next.Particle = slider("Particles", current.Particle, 1)
	next.AnimationSpeed = slider("Speed", current.AnimationSpeed, intensity.MaxAnimationSpeed)

	y += 4
	for _, ft := range featureToggles {
		on := gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 14, Height: 14}, ft.label, current.Features.Has(ft.feature))
		if on {
			next.Features = next.Features.With(ft.feature)
		} else {
			next.Features = next.Features.Without(ft.feature)
		}
		y += 20
	}

	y += 6
	half := (inner - 8) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, "Full") {
		next = intensity.DefaultSettings()
	}
	if gui.Button(rl.Rectangle{X: x + half + 8, Y: y, Width: half, Height: 24}, "Power saver") {
		next = intensity.PowerSaverSettings()
	}

	next = next.Clamped()
	return next, next != current
}
