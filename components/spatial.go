package components

// Position is a control's top-left corner in screen space.
type Position struct {
	X, Y float32
}

// Size is a control's extent in screen space.
type Size struct {
	W, H float32
}
