package ink

// Zoom bounds for the display scale. Zoom is presentation only; stored
// stroke coordinates are never rescaled by it.
const (
	MinZoom = 0.25
	MaxZoom = 4.0
)

// Transform converts between document space and screen space. All input
// handlers and the renderer consult a single Transform rather than
// scattering zoom/DPR arithmetic across call sites.
type Transform struct {
	// Zoom is the display scale factor, clamped to [MinZoom, MaxZoom].
	Zoom float64

	// DPR is the device pixel ratio of the output surface.
	DPR float64
}

// NewTransform returns a transform with the zoom clamped and a sane DPR.
func NewTransform(zoom, dpr float64) Transform {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	if dpr <= 0 {
		dpr = 1
	}
	return Transform{Zoom: zoom, DPR: dpr}
}

// ToDocument converts a screen-space point to document space.
func (t Transform) ToDocument(x, y float64) (float64, float64) {
	return x / t.Zoom, y / t.Zoom
}

// ToScreen converts a document-space point to screen space.
func (t Transform) ToScreen(x, y float64) (float64, float64) {
	return x * t.Zoom, y * t.Zoom
}

// BackingScale is the ratio of canvas backing pixels to document units.
func (t Transform) BackingScale() float64 {
	return t.Zoom * t.DPR
}
