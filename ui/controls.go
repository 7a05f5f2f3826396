package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsPanel lists the debug overlays and their toggle keys.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// KeyBinding is one line of the key legend.
type KeyBinding struct {
	Key    string
	Action string
}

// DefaultKeyBindings lists the non-overlay keys.
var DefaultKeyBindings = []KeyBinding{
	{"Click", "select control"},
	{"N", "spawn control at cursor"},
	{"V", "detach / attach selected"},
	{"S", "force simplified"},
	{"Del", "destroy selected"},
	{"P", "power saver"},
	{"Tab", "intensity panel"},
	{"F3", "perf panel"},
	{"Space", "pause"},
	{", .", "steps per update"},
	{"RMB", "pan"},
	{"Wheel", "zoom"},
	{"Home", "reset view"},
	{"O", "this panel"},
}

// Draw renders the overlay toggles followed by the key legend.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, keys []KeyBinding) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	rows := len(overlays.All()) + len(categories) + len(keys) + 1
	panelHeight := int32(rows)*lineHeight + padding*3 + lineHeight + int32(len(categories))*4

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(c.x+padding, y, desc, overlays.IsEnabled(desc.ID), c.width-padding*2)
			y += lineHeight
		}
		y += 4
	}

	rl.DrawText("Keys", c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	y += lineHeight
	for _, k := range keys {
		rl.DrawText(k.Action, c.x+padding+14, y, r.Theme.FontSize, r.Theme.LabelColor)
		keyText := fmt.Sprintf("[%s]", k.Key)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, c.x+c.width-padding-keyWidth, y, r.Theme.FontSize, rl.Gray)
		y += lineHeight
	}

	return y
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor, nameColor := r.Theme.FlagOff, r.Theme.LabelColor
	if enabled {
		statusColor, nameColor = r.Theme.FlagOn, rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Gray)
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "control":
		return "Controls"
	case "particles":
		return "Particles"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
