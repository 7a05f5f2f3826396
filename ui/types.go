// Package ui provides a descriptor-driven UI for the effects demo.
// Panels are defined through field metadata so they can change alongside
// the data they show.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText    WidgetType = iota // Plain text with format string
	WidgetBar                       // Progress bar [0, 1]
	WidgetFlag                      // On/off indicator
	WidgetSection                   // Section header
	WidgetSpacer                    // Vertical spacing
)

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID         string            // Unique identifier for the field
	Label      string            // Display label
	Widget     WidgetType        // How to render
	Format     string            // Printf format for text (e.g., "%.2f")
	Color      rl.Color          // Optional color override for flags
	Visible    func(any) bool    // Optional visibility check (nil = always visible)
	Getter     func(any) float32 // Value extractor (for numeric fields)
	TextGetter func(any) string  // Value extractor (for text fields)
	FlagGetter func(any) bool    // Value extractor (for flags)
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string
	Title   string
	Fields  []FieldDescriptor
	Visible func(any) bool
}

// PanelDescriptor defines a complete panel layout.
type PanelDescriptor struct {
	ID       string
	Title    string
	Sections []SectionDescriptor
	Width    int32
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	FlagOn         rl.Color
	FlagOff        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		FlagOn:         rl.Color{R: 100, G: 200, B: 100, A: 255},
		FlagOff:        rl.Color{R: 80, G: 80, B: 80, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     70,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
