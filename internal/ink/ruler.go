package ink

import "math"

// RulerState is the interaction state of the on-screen straightedge.
type RulerState int

const (
	RulerIdle RulerState = iota
	RulerDragging
	RulerRotating
)

// Ruler is a draggable, rotatable straightedge. While enabled it constrains
// in-progress strokes to the single straight line through its anchor at its
// current angle. Position and angle are ephemeral UI state in screen
// coordinates; the ruler is never persisted.
type Ruler struct {
	X      float64 // anchor, screen space
	Y      float64
	Length float64
	Angle  float64 // radians

	Enabled bool

	state  RulerState
	grabDX float64
	grabDY float64
}

// NewRuler returns a ruler at the given anchor with a default length.
func NewRuler(x, y float64) *Ruler {
	return &Ruler{X: x, Y: y, Length: 400}
}

// State returns the current interaction state.
func (r *Ruler) State() RulerState {
	return r.state
}

// PointerDown begins dragging, or rotating when the pointer lands on the
// rotate handle. Dragging and rotating are mutually exclusive and both exit
// only on pointer-up.
func (r *Ruler) PointerDown(x, y float64, onHandle bool) {
	if r.state != RulerIdle {
		return
	}
	if onHandle {
		r.state = RulerRotating
		return
	}
	r.state = RulerDragging
	r.grabDX = x - r.X
	r.grabDY = y - r.Y
}

// PointerMove updates the anchor (dragging, with the fixed grab offset) or
// the angle (rotating, recomputed from anchor to pointer).
func (r *Ruler) PointerMove(x, y float64) {
	switch r.state {
	case RulerDragging:
		r.X = x - r.grabDX
		r.Y = y - r.grabDY
	case RulerRotating:
		r.Angle = math.Atan2(y-r.Y, x-r.X)
	}
}

// PointerUp returns the ruler to idle.
func (r *Ruler) PointerUp() {
	r.state = RulerIdle
}

// Project projects a raw screen-space pointer position onto the ruler's line
// and converts the result to document space via the transform. This is the
// point appended to the active stroke while the ruler is enabled.
func (r *Ruler) Project(x, y float64, t Transform) Point {
	dirX := math.Cos(r.Angle)
	dirY := math.Sin(r.Angle)

	// Scalar projection of (pointer - anchor) onto the direction vector.
	s := (x-r.X)*dirX + (y-r.Y)*dirY

	px := r.X + s*dirX
	py := r.Y + s*dirY

	dx, dy := t.ToDocument(px, py)
	return Point{X: dx, Y: dy}
}
