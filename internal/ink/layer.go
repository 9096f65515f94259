package ink

import (
	"image"
	"time"
)

// Geometry fixes the document coordinate space for a notebook session.
// DocWidth is set once on first layout; PageHeight grows dynamically in
// fixed increments as content or ink approaches the bottom edge.
type Geometry struct {
	DocWidth        float64
	PageHeight      float64
	HeightIncrement float64
	BottomMargin    float64
}

// Sample is a raw pointer event position in screen space.
type Sample struct {
	X        float64
	Y        float64
	Pressure float64
}

// Layer captures freehand pointer input as vector strokes over an optional
// persisted raster snapshot. All mutation happens from UI event handlers;
// the layer is not safe for concurrent use.
type Layer struct {
	geo       Geometry
	transform Transform
	ruler     *Ruler

	strokes []Stroke
	redo    []Stroke
	active  *Stroke

	snapshot image.Image
	dirty    bool
}

// NewLayer creates an empty ink layer over the given geometry.
func NewLayer(geo Geometry) *Layer {
	return &Layer{
		geo:       geo,
		transform: NewTransform(1, 1),
		ruler:     NewRuler(geo.DocWidth/2, geo.PageHeight/4),
	}
}

// SetTransform updates the display transform. Stored strokes are unaffected.
func (l *Layer) SetTransform(t Transform) {
	l.transform = t
}

// Transform returns the current display transform.
func (l *Layer) Transform() Transform {
	return l.transform
}

// Ruler returns the layer's straightedge.
func (l *Layer) Ruler() *Ruler {
	return l.ruler
}

// BeginStroke starts a new stroke at pointer-down. A stroke begins only if
// the active tool is pen or highlighter, or the input device is non-mouse;
// stylus and touch input with no drawing tool selected falls back to the pen.
// Returns false when no stroke was started.
func (l *Layer) BeginStroke(s Sample, opts StrokeOptions) bool {
	drawingTool := opts.Kind == KindPen || opts.Kind == KindHighlighter
	if !drawingTool {
		if opts.Device == DeviceMouse || opts.Device == "" {
			return false
		}
		opts.Kind = KindPen
	}
	opts = opts.normalize()

	p := l.capture(s)
	l.active = &Stroke{
		Kind:      opts.Kind,
		Color:     opts.Color,
		Width:     opts.Width,
		Opacity:   opts.Opacity,
		Points:    []Point{p},
		CreatedAt: time.Now().Unix(),
	}
	l.growFor(p.Y)
	return true
}

// ExtendStroke appends a point at pointer-move. While the ruler is enabled
// the stroke stays a single straight segment: the latest projected point
// replaces the previous endpoint instead of following the raw cursor path.
func (l *Layer) ExtendStroke(s Sample) {
	if l.active == nil {
		return
	}
	p := l.capture(s)
	if l.ruler.Enabled && len(l.active.Points) >= 2 {
		l.active.Points[len(l.active.Points)-1] = p
	} else {
		l.active.Points = append(l.active.Points, p)
	}
	l.growFor(p.Y)
}

// EndStroke finalizes the active stroke at pointer-up. A new stroke
// invalidates redo history and marks the ink dirty for autosave.
func (l *Layer) EndStroke() {
	if l.active == nil {
		return
	}
	l.strokes = append(l.strokes, *l.active)
	l.active = nil
	l.redo = nil
	l.dirty = true
}

// capture converts a screen sample to a document-space point, projecting
// onto the ruler's line when the ruler is enabled.
func (l *Layer) capture(s Sample) Point {
	if l.ruler.Enabled {
		return l.ruler.Project(s.X, s.Y, l.transform)
	}
	x, y := l.transform.ToDocument(s.X, s.Y)
	return Point{X: x, Y: y, Pressure: s.Pressure}
}

// Undo moves the most recent stroke to the redo stack.
func (l *Layer) Undo() bool {
	if len(l.strokes) == 0 {
		return false
	}
	last := l.strokes[len(l.strokes)-1]
	l.strokes = l.strokes[:len(l.strokes)-1]
	l.redo = append(l.redo, last)
	l.dirty = true
	return true
}

// Redo restores the most recently undone stroke.
func (l *Layer) Redo() bool {
	if len(l.redo) == 0 {
		return false
	}
	last := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.strokes = append(l.strokes, last)
	l.dirty = true
	return true
}

// Clear discards all strokes and redo history. A snapshot from a previously
// saved note is unaffected until the next save overwrites it.
func (l *Layer) Clear() {
	l.strokes = nil
	l.redo = nil
	l.active = nil
	l.dirty = true
}

// Strokes returns the finalized strokes in insertion order.
func (l *Layer) Strokes() []Stroke {
	out := make([]Stroke, len(l.strokes))
	copy(out, l.strokes)
	return out
}

// SetStrokes replaces the stroke list from persisted state. Redo history is
// discarded and the layer is considered clean. The page grows until every
// restored point lies above the bottom margin; incremental growth applies
// only to live capture, where points arrive one margin-width at a time.
func (l *Layer) SetStrokes(strokes []Stroke) {
	l.strokes = make([]Stroke, len(strokes))
	copy(l.strokes, strokes)
	l.redo = nil
	l.active = nil
	l.dirty = false
	var maxY float64
	for _, s := range l.strokes {
		for _, p := range s.Points {
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	if maxY > 0 {
		l.GrowTo(maxY + l.geo.BottomMargin)
	}
}

// SetSnapshot attaches a persisted raster snapshot. If the snapshot's
// implied height at the document width exceeds the current page height, the
// page grows to fit.
func (l *Layer) SetSnapshot(img image.Image) {
	l.snapshot = img
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 {
		return
	}
	implied := float64(b.Dy()) * l.geo.DocWidth / float64(b.Dx())
	for l.geo.PageHeight < implied {
		l.geo.PageHeight += l.geo.HeightIncrement
	}
}

// Snapshot returns the attached raster snapshot, if any.
func (l *Layer) Snapshot() image.Image {
	return l.snapshot
}

// Dirty reports whether the ink has diverged from the last successful save.
func (l *Layer) Dirty() bool {
	return l.dirty
}

// MarkClean clears the dirty flag after a successful save.
func (l *Layer) MarkClean() {
	l.dirty = false
}

// MarkDirty forces the dirty flag, e.g. after a failed save retried later.
func (l *Layer) MarkDirty() {
	l.dirty = true
}

// DocWidth returns the fixed document width.
func (l *Layer) DocWidth() float64 {
	return l.geo.DocWidth
}

// PageHeight returns the current page height.
func (l *Layer) PageHeight() float64 {
	return l.geo.PageHeight
}

// GrowTo extends the page until it covers the given content height, e.g.
// after a rich-text edit or image load. Growth never rescales existing ink;
// coordinates are absolute, so growing only extends drawable area downward.
func (l *Layer) GrowTo(height float64) {
	for l.geo.PageHeight < height {
		l.geo.PageHeight += l.geo.HeightIncrement
	}
}

// growFor grows the page by exactly one increment when a point lands within
// the bottom margin of the current page height.
func (l *Layer) growFor(y float64) {
	if y > l.geo.PageHeight-l.geo.BottomMargin {
		l.geo.PageHeight += l.geo.HeightIncrement
	}
}
