package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData is the frame summary shown in the top-left corner.
type HUDData struct {
	Title     string
	Controls  int
	Live      int
	Capacity  int
	Throttled int
	Mode      string
	Tick      int32
	Speed     int
	FPS       int32
	Paused    bool
	FrameAvg  time.Duration // rolling average of whole-frame tick time
	Budget    time.Duration
}

// Fill returns live/capacity in [0, 1].
func (d HUDData) Fill() float32 {
	if d.Capacity <= 0 {
		return 0
	}
	return float32(d.Live) / float32(d.Capacity)
}

const hudWidth = 330

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x, y := int32(10), int32(10)
	r.DrawPanel(x-4, y-4, hudWidth, 118)

	rl.DrawText(data.Title, x, y, 20, rl.White)
	status, statusColor := "running", r.Theme.FlagOn
	if data.Paused {
		status, statusColor = "PAUSED", rl.Yellow
	}
	rl.DrawText(status, x+hudWidth-70, y+4, r.Theme.FontSize, statusColor)
	y += 26

	y = r.DrawLabelValue(x, y, "Controls", fmt.Sprintf("%d  mode %s", data.Controls, data.Mode))
	y = r.DrawBar(x, y, fmt.Sprintf("%d/%d", data.Live, data.Capacity), data.Fill(), hudWidth-8)

	frameColor := r.Theme.ValueColor
	if data.Budget > 0 && data.FrameAvg > data.Budget {
		frameColor = rl.Orange
	}
	rl.DrawText("Frame:", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(fmt.Sprintf("%s / %s", data.FrameAvg.Round(time.Microsecond), data.Budget),
		x+r.Theme.LabelWidth, y, r.Theme.FontSize, frameColor)
	y += r.Theme.LineHeight

	y = r.DrawFlag(x, y, fmt.Sprintf("%d throttled", data.Throttled), data.Throttled > 0, rl.Orange)
	rl.DrawText(fmt.Sprintf("tick %d  %dx  %d fps", data.Tick, data.Speed, data.FPS),
		x, y, r.Theme.FontSize, r.Theme.LabelColor)
}

// DrawControls renders the key legend along the bottom edge.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds per-control tick times for display.
type PerfPanelData struct {
	SystemTimes map[string]time.Duration
	Total       time.Duration
	Budget      time.Duration
}

const perfRows = 12

// PerfPanel renders the per-control performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw lists the slowest controls first. Each row is colored by its share
// of the frame budget rather than of the total, so a single heavy control
// stands out even when the frame as a whole is healthy.
func (p *PerfPanel) Draw(data PerfPanelData, sortedNames []string) {
	r := p.renderer
	rows := min(len(sortedNames), perfRows)
	r.DrawPanel(p.x-6, p.y-6, 250, int32(44+rows*14))

	x, y := p.x, p.y
	y = r.DrawSectionHeader(x, y, "Control Performance")

	totalColor := rl.Yellow
	if data.Budget > 0 && data.Total > data.Budget {
		totalColor = rl.Red
	}
	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, totalColor)
	y += 16

	for _, name := range sortedNames[:rows] {
		avg := data.SystemTimes[name]
		share := 0.0
		if data.Budget > 0 {
			share = float64(avg) / float64(data.Budget)
		}

		color := rl.LightGray
		switch {
		case share > 0.25:
			color = rl.Red
		case share > 0.1:
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-18s %7s %5.1f%%", name, avg.Round(time.Microsecond), share*100),
			x, y, 12, color,
		)
		y += 14
	}
}
