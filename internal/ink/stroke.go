// Package ink implements the freehand drawing layer of the notebook: vector
// stroke capture in a fixed document coordinate space, undo/redo history,
// ruler-constrained input, and raster rendering of strokes plus a persisted
// snapshot image.
package ink

// Kind identifies the drawing tool that produced a stroke.
type Kind string

const (
	KindPen         Kind = "pen"
	KindHighlighter Kind = "highlighter"
)

// Device identifies the pointer device driving the input.
type Device string

const (
	DeviceMouse Device = "mouse"
	DevicePen   Device = "pen"
	DeviceTouch Device = "touch"
)

// Highlighter style clamps. Overlapping highlighter passes multiply-blend
// so they darken naturally instead of stacking to full opacity.
const (
	MinHighlighterWidth   = 12.0
	MaxHighlighterOpacity = 0.45
)

// Point is a single sampled pointer position in document coordinates.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure,omitempty"`
}

// Stroke is one continuous pointer gesture. Points are always recorded in
// the fixed document coordinate space, independent of the current zoom, so
// zooming never rescales stored ink.
type Stroke struct {
	Kind      Kind    `json:"kind"`
	Color     string  `json:"color"` // hex, e.g. "#1a1a1a"
	Width     float64 `json:"width"`
	Opacity   float64 `json:"opacity"`
	Points    []Point `json:"points"`
	CreatedAt int64   `json:"created_at"`
}

// StrokeOptions configures a stroke at pointer-down.
type StrokeOptions struct {
	Kind    Kind
	Color   string
	Width   float64
	Opacity float64
	Device  Device
}

// normalize applies tool defaults and the highlighter clamps.
func (o StrokeOptions) normalize() StrokeOptions {
	if o.Color == "" {
		o.Color = "#1a1a1a"
	}
	if o.Width <= 0 {
		o.Width = 3
	}
	if o.Opacity <= 0 || o.Opacity > 1 {
		o.Opacity = 1
	}
	if o.Kind == KindHighlighter {
		if o.Width < MinHighlighterWidth {
			o.Width = MinHighlighterWidth
		}
		if o.Opacity > MaxHighlighterOpacity {
			o.Opacity = MaxHighlighterOpacity
		}
	}
	return o
}
