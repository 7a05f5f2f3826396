package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HostInfo is the selected control's state as the panel shows it.
type HostInfo struct {
	Label      string
	Preset     string
	Live       int
	Cap        int
	Limit      int
	Spawned    int
	Recycled   int
	Shed       int
	Throttled  bool
	Simplified bool
	Scale      float64
	Glow       float64
	AvgFrame   time.Duration
}

func info(data any) HostInfo {
	hi, _ := data.(HostInfo)
	return hi
}

// HostPanelDescriptor lays out the selected-control panel.
var HostPanelDescriptor = PanelDescriptor{
	ID:    "host",
	Title: "Control",
	Sections: []SectionDescriptor{
		{
			ID: "identity",
			Fields: []FieldDescriptor{
				{ID: "label", Label: "ID", Widget: WidgetText, TextGetter: func(d any) string { return info(d).Label }},
				{ID: "preset", Label: "Preset", Widget: WidgetText, TextGetter: func(d any) string { return info(d).Preset }},
			},
		},
		{
			ID:    "density",
			Title: "Particles",
			Fields: []FieldDescriptor{
				{ID: "live", Label: "Live", Widget: WidgetText, TextGetter: func(d any) string {
					hi := info(d)
					return fmt.Sprintf("%d / %d (limit %d)", hi.Live, hi.Cap, hi.Limit)
				}},
				{ID: "fill", Label: "Fill", Widget: WidgetBar, Getter: func(d any) float32 {
					hi := info(d)
					if hi.Cap == 0 {
						return 0
					}
					return float32(hi.Live) / float32(hi.Cap)
				}},
				{ID: "scale", Label: "Scale", Widget: WidgetBar, Getter: func(d any) float32 { return float32(info(d).Scale) }},
				{ID: "spawned", Label: "Spawned", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(info(d).Spawned) }},
				{ID: "recycled", Label: "Recycled", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(info(d).Recycled) }},
				{ID: "shed", Label: "Shed", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(info(d).Shed) },
					Visible: func(d any) bool { return info(d).Shed > 0 }},
			},
		},
		{
			ID:    "quality",
			Title: "Quality",
			Fields: []FieldDescriptor{
				{ID: "glow", Label: "Glow", Widget: WidgetBar, Getter: func(d any) float32 { return float32(info(d).Glow) }},
				{ID: "frame", Label: "Frame", Widget: WidgetText, TextGetter: func(d any) string {
					return info(d).AvgFrame.Round(time.Microsecond).String()
				}},
				{ID: "throttled", Label: "Throttled", Widget: WidgetFlag, Color: rl.Orange, FlagGetter: func(d any) bool { return info(d).Throttled }},
				{ID: "simplified", Label: "Simplified", Widget: WidgetFlag, FlagGetter: func(d any) bool { return info(d).Simplified }},
			},
		},
	},
	Width: 220,
}

// HostPanel shows the selected control's state.
type HostPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHostPanel creates a new host panel.
func NewHostPanel(x, y, width int32) *HostPanel {
	return &HostPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the panel for data.
func (p *HostPanel) Draw(data HostInfo) {
	r := p.renderer
	pd := HostPanelDescriptor
	padding := r.Theme.Padding

	r.DrawPanel(p.x, p.y, p.width, r.PanelHeight(pd, data))

	y := p.y + padding
	rl.DrawText(pd.Title, p.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range pd.Sections {
		y = r.DrawSection(p.x+padding, y, sd, data, p.width-padding*2)
	}
}
