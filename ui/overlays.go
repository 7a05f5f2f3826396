package ui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayBounds    OverlayID = "bounds"
	OverlayLimits    OverlayID = "limits"
	OverlayEmitters  OverlayID = "emitters"
	OverlayMotion    OverlayID = "motion"
	OverlayFlowField OverlayID = "flow_field"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "B", "E")
	Category    string      // Grouping (e.g., "control", "particles", "debug")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// defaultOverlays are the debug views every graphical run starts with.
var defaultOverlays = []OverlayDescriptor{
	{OverlayBounds, "Bounds", "Outline every control with its cull margin", rl.KeyB, "B", "control", nil},
	{OverlayLimits, "Density", "Fill bar of live particles against cap and limit", rl.KeyL, "L", "control", nil},
	{OverlayEmitters, "Emitters", "Show emitter regions, foci and rings", rl.KeyE, "E", "particles", nil},
	{OverlayMotion, "Motion", "Show particle velocity vectors", rl.KeyM, "M", "particles", []OverlayID{OverlayFlowField}},
	{OverlayFlowField, "Flow Field", "Show flow-field vectors", rl.KeyG, "G", "debug", []OverlayID{OverlayMotion}},
}

// OverlayRegistry tracks which overlays are on. Descriptors keep their
// registration order for display.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	index       map[OverlayID]int
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		index:   make(map[OverlayID]int),
		enabled: make(map[OverlayID]bool),
	}
	for _, d := range defaultOverlays {
		reg.Register(d)
	}
	return reg
}

// Register adds an overlay, or replaces the descriptor with the same ID.
// New overlays start disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	if i, ok := r.index[desc.ID]; ok {
		r.descriptors[i] = desc
		return
	}
	r.index[desc.ID] = len(r.descriptors)
	r.descriptors = append(r.descriptors, desc)
}

// Descriptor looks up an overlay by ID.
func (r *OverlayRegistry) Descriptor(id OverlayID) (OverlayDescriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return OverlayDescriptor{}, false
	}
	return r.descriptors[i], true
}

// Toggle flips an overlay and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.index[id]; !ok {
		return false
	}
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled sets an overlay's state. Enabling turns off its exclusive peers.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.Descriptor(id)
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if !enabled {
		return
	}
	for _, excl := range desc.Exclusive {
		delete(r.enabled, excl)
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns the overlays in one category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var out []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			out = append(out, desc)
		}
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for _, desc := range r.descriptors {
		if !slices.Contains(cats, desc.Category) {
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key, if any. It reports the
// overlay, its new state and whether a toggle happened.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	if key == 0 {
		return "", false, false
	}
	for _, desc := range r.descriptors {
		if desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// EnabledOverlays returns the active overlays in registration order.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var out []OverlayID
	for _, desc := range r.descriptors {
		if r.enabled[desc.ID] {
			out = append(out, desc.ID)
		}
	}
	return out
}
