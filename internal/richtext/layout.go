package richtext

// Layout constants for the height estimate. The measure is a deterministic
// approximation: average glyph advance as a fraction of font size, and line
// height as a multiple of the tallest run on the line.
const (
	glyphAdvanceRatio = 0.55
	lineHeightRatio   = 1.4
	blockSpacing      = 8.0
)

// ContentHeight measures the document's rendered height at the given content
// width. The canvas consults this after every edit so the page can grow to
// match content; image heights count once their dimensions are known.
func (d *Document) ContentHeight(width float64) float64 {
	if width <= 0 {
		return 0
	}

	total := 0.0
	for _, b := range d.Blocks {
		total += blockHeight(b, width) + blockSpacing
	}
	return total
}

func blockHeight(b *Block, width float64) float64 {
	lineWidth := 0.0
	lineSize := DefaultFontSize
	height := 0.0
	hasLine := false

	flushLine := func() {
		height += lineSize * lineHeightRatio
		lineWidth = 0
		lineSize = DefaultFontSize
		hasLine = false
	}

	for _, in := range b.Inlines {
		switch n := in.(type) {
		case *Span:
			size := n.Style.EffectiveSize()
			advance := size * glyphAdvanceRatio
			for _, r := range n.Text {
				_ = r
				if lineWidth+advance > width && hasLine {
					flushLine()
				}
				lineWidth += advance
				if size > lineSize {
					lineSize = size
				}
				hasLine = true
			}
		case *Image:
			h := n.Height
			if h <= 0 {
				h = n.NaturalH
			}
			if h <= 0 {
				continue // dimensions unknown until load
			}
			if hasLine {
				flushLine()
			}
			height += h
		}
	}

	if hasLine || len(b.Inlines) == 0 {
		height += lineSize * lineHeightRatio
	}
	return height
}
