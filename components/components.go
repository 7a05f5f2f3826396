// Package components defines ECS components for effect host controls.
package components

// Control identifies the host control an entity represents.
// The host itself lives outside the ECS, keyed by ID.
type Control struct {
	ID     uint32
	Preset string
}

// Attached tracks whether a control is part of the visible UI.
// Detached controls stop receiving settings broadcasts.
type Attached struct {
	Visible bool
}
