package richtext

import "fmt"

// ErrCrossBlock is returned for selections spanning more than one block.
var ErrCrossBlock = fmt.Errorf("selection must be within a single block")

// splitAt ensures an inline boundary at (inlineIdx, offset) inside the block
// and returns the index of that boundary. Reports whether a span was split.
func splitAt(b *Block, inlineIdx, offset int) (int, bool) {
	if inlineIdx >= len(b.Inlines) {
		return len(b.Inlines), false
	}
	span, ok := b.Inlines[inlineIdx].(*Span)
	if !ok {
		if offset > 0 {
			return inlineIdx + 1, false
		}
		return inlineIdx, false
	}

	runes := []rune(span.Text)
	if offset <= 0 {
		return inlineIdx, false
	}
	if offset >= len(runes) {
		return inlineIdx + 1, false
	}

	left := &Span{Text: string(runes[:offset]), Style: span.Style}
	right := &Span{Text: string(runes[offset:]), Style: span.Style}

	inlines := make([]Inline, 0, len(b.Inlines)+1)
	inlines = append(inlines, b.Inlines[:inlineIdx]...)
	inlines = append(inlines, left, right)
	inlines = append(inlines, b.Inlines[inlineIdx+1:]...)
	b.Inlines = inlines

	return inlineIdx + 1, true
}

// coveredRange splits the block at the selection boundaries and returns the
// [start, end) inline index range covered by the selection.
func coveredRange(b *Block, sel Selection) (int, int) {
	sel = sel.normalized()
	end, _ := splitAt(b, sel.End.Inline, sel.End.Offset)
	start, split := splitAt(b, sel.Start.Inline, sel.Start.Offset)
	if split && start <= end {
		end++
	}
	return start, end
}

// ToggleBold flips bold across the selection: if every covered span is
// already bold the attribute is removed, otherwise it is applied.
func (d *Document) ToggleBold(sel Selection) error {
	return d.toggle(sel, func(s *Style) *bool { return &s.Bold })
}

// ToggleItalic flips italic across the selection.
func (d *Document) ToggleItalic(sel Selection) error {
	return d.toggle(sel, func(s *Style) *bool { return &s.Italic })
}

// ToggleUnderline flips underline across the selection.
func (d *Document) ToggleUnderline(sel Selection) error {
	return d.toggle(sel, func(s *Style) *bool { return &s.Underline })
}

func (d *Document) toggle(sel Selection, attr func(*Style) *bool) error {
	if sel.Start.Block != sel.End.Block {
		return ErrCrossBlock
	}
	if sel.Start.Block >= len(d.Blocks) {
		return fmt.Errorf("block %d out of range", sel.Start.Block)
	}
	b := d.Blocks[sel.Start.Block]
	start, end := coveredRange(b, sel)

	allSet := true
	found := false
	for i := start; i < end && i < len(b.Inlines); i++ {
		if span, ok := b.Inlines[i].(*Span); ok {
			found = true
			if !*attr(&span.Style) {
				allSet = false
			}
		}
	}
	if !found {
		return nil
	}

	for i := start; i < end && i < len(b.Inlines); i++ {
		if span, ok := b.Inlines[i].(*Span); ok {
			*attr(&span.Style) = !allSet
		}
	}
	return nil
}

// AdjustFontSize changes the font size at the selection by delta, clamped to
// [MinFontSize, MaxFontSize]. Three cases:
//   - caret inside an existing span: that span's size is mutated directly;
//   - caret with no enclosing span: a zero-width marker span carrying the
//     new size is inserted at the caret;
//   - a range: its contents are extracted into a single new span with the
//     adjusted size, and the returned selection covers that span.
func (d *Document) AdjustFontSize(sel Selection, delta float64) (Selection, error) {
	if sel.Start.Block != sel.End.Block {
		return sel, ErrCrossBlock
	}
	if sel.Start.Block >= len(d.Blocks) {
		return sel, fmt.Errorf("block %d out of range", sel.Start.Block)
	}
	b := d.Blocks[sel.Start.Block]

	if sel.Collapsed() {
		if sel.Start.Inline < len(b.Inlines) {
			if span, ok := b.Inlines[sel.Start.Inline].(*Span); ok && span.Text != "" {
				span.Style.FontSize = clampFontSize(span.Style.EffectiveSize() + delta)
				return sel, nil
			}
		}
		// No enclosing styleable element: insert a zero-width marker span.
		marker := &Span{Style: Style{FontSize: clampFontSize(DefaultFontSize + delta)}}
		idx := sel.Start.Inline
		if idx > len(b.Inlines) {
			idx = len(b.Inlines)
		}
		inlines := make([]Inline, 0, len(b.Inlines)+1)
		inlines = append(inlines, b.Inlines[:idx]...)
		inlines = append(inlines, marker)
		inlines = append(inlines, b.Inlines[idx:]...)
		b.Inlines = inlines
		return Caret(sel.Start.Block, idx, 0), nil
	}

	start, end := coveredRange(b, sel)

	var text string
	style := Style{}
	styled := false
	kept := make([]Inline, 0, len(b.Inlines))
	kept = append(kept, b.Inlines[:start]...)
	trailing := []Inline{}
	for i := start; i < end && i < len(b.Inlines); i++ {
		switch n := b.Inlines[i].(type) {
		case *Span:
			if !styled {
				style = n.Style
				styled = true
			}
			text += n.Text
		default:
			// Non-span inlines (images) survive after the extracted span.
			trailing = append(trailing, n)
		}
	}
	style.FontSize = clampFontSize(style.EffectiveSize() + delta)

	extracted := &Span{Text: text, Style: style}
	kept = append(kept, extracted)
	kept = append(kept, trailing...)
	if end < len(b.Inlines) {
		kept = append(kept, b.Inlines[end:]...)
	}
	b.Inlines = kept

	// Preserve the selection around the new span.
	return Range(sel.Start.Block, start, 0, start, len([]rune(text))), nil
}

// InsertText splices text at the position, adopting the enclosing span's
// style or starting a plain span in an empty block.
func (d *Document) InsertText(pos Position, text string) error {
	if pos.Block >= len(d.Blocks) {
		return fmt.Errorf("block %d out of range", pos.Block)
	}
	b := d.Blocks[pos.Block]

	if pos.Inline < len(b.Inlines) {
		if span, ok := b.Inlines[pos.Inline].(*Span); ok {
			runes := []rune(span.Text)
			off := pos.Offset
			if off > len(runes) {
				off = len(runes)
			}
			span.Text = string(runes[:off]) + text + string(runes[off:])
			return nil
		}
	}
	b.Inlines = append(b.Inlines, &Span{Text: text})
	return nil
}

// AppendBlock adds a new paragraph and returns its index.
func (d *Document) AppendBlock() int {
	d.Blocks = append(d.Blocks, &Block{})
	return len(d.Blocks) - 1
}

// InsertImage appends an image to a block. Natural dimensions are unknown
// until load; call SetImageNaturalSize followed by ConstrainImages once they
// are known.
func (d *Document) InsertImage(block int, src string) (*Image, error) {
	if block >= len(d.Blocks) {
		return nil, fmt.Errorf("block %d out of range", block)
	}
	img := &Image{Src: src}
	d.Blocks[block].Inlines = append(d.Blocks[block].Inlines, img)
	return img, nil
}

// SetImageNaturalSize records the loaded dimensions for every image with the
// given source.
func (d *Document) SetImageNaturalSize(src string, w, h float64) {
	for _, b := range d.Blocks {
		for _, in := range b.Inlines {
			if img, ok := in.(*Image); ok && img.Src == src {
				img.NaturalW = w
				img.NaturalH = h
			}
		}
	}
}

// ConstrainImages clamps every image's display size to the content width,
// preserving aspect ratio. Idempotent: re-applying after every edit is safe.
func (d *Document) ConstrainImages(maxWidth float64) {
	for _, b := range d.Blocks {
		for _, in := range b.Inlines {
			img, ok := in.(*Image)
			if !ok || img.NaturalW <= 0 || img.NaturalH <= 0 {
				continue
			}
			w := img.NaturalW
			if w > maxWidth {
				w = maxWidth
			}
			img.Width = w
			img.Height = img.NaturalH * w / img.NaturalW
		}
	}
}
