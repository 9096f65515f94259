// Package richtext models the editable text layer of a notebook page as an
// explicit tree of block and inline nodes with formatting attributes,
// serialized to and from the HTML-like markup the note store persists. The
// model keeps formatting operations (bold, font-size-at-selection, inline
// images) testable without any browser document machinery.
package richtext

// Font size bounds for the per-selection size adjustment.
const (
	DefaultFontSize = 16.0
	MinFontSize     = 8.0
	MaxFontSize     = 72.0
)

// Style carries inline formatting attributes. A zero FontSize inherits the
// document default.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	FontSize  float64
}

// EffectiveSize resolves the inherited default.
func (s Style) EffectiveSize() float64 {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// Inline is a node inside a block: a styled text span or an image.
type Inline interface {
	inline()
}

// Span is a run of text with uniform style. A span with empty text is a
// zero-width marker: it exists only to carry style for the next insertion.
type Span struct {
	Text  string
	Style Style
}

func (*Span) inline() {}

// Image is an inline image. Natural dimensions are unknown until the image
// loads; Width/Height are the constrained display dimensions.
type Image struct {
	Src      string
	NaturalW float64
	NaturalH float64
	Width    float64
	Height   float64
}

func (*Image) inline() {}

// Block is a paragraph-level container of inline nodes.
type Block struct {
	Inlines []Inline
}

// Document is the rich-text layer of one note.
type Document struct {
	Blocks []*Block
}

// NewDocument returns a document with a single empty block, the state of a
// freshly created note.
func NewDocument() *Document {
	return &Document{Blocks: []*Block{{}}}
}

// IsEmpty reports whether the document has no visible content.
func (d *Document) IsEmpty() bool {
	for _, b := range d.Blocks {
		for _, in := range b.Inlines {
			switch n := in.(type) {
			case *Span:
				if n.Text != "" {
					return false
				}
			case *Image:
				return false
			}
		}
	}
	return true
}

func clampFontSize(size float64) float64 {
	if size < MinFontSize {
		return MinFontSize
	}
	if size > MaxFontSize {
		return MaxFontSize
	}
	return size
}
