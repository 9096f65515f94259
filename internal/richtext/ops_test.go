package richtext

import "testing"

func docWithText(text string) *Document {
	return &Document{Blocks: []*Block{
		{Inlines: []Inline{&Span{Text: text}}},
	}}
}

func spanAt(t *testing.T, d *Document, block, inline int) *Span {
	t.Helper()
	if block >= len(d.Blocks) || inline >= len(d.Blocks[block].Inlines) {
		t.Fatalf("no inline at (%d, %d)", block, inline)
	}
	span, ok := d.Blocks[block].Inlines[inline].(*Span)
	if !ok {
		t.Fatalf("inline at (%d, %d) is %T, want *Span", block, inline, d.Blocks[block].Inlines[inline])
	}
	return span
}

func TestAdjustFontSize_CaretInsideSpan(t *testing.T) {
	d := docWithText("hello world")

	_, err := d.AdjustFontSize(Caret(0, 0, 5), 4)
	if err != nil {
		t.Fatalf("AdjustFontSize() error = %v", err)
	}

	// The enclosing span is mutated directly, not split.
	if len(d.Blocks[0].Inlines) != 1 {
		t.Fatalf("inline count = %d, want 1", len(d.Blocks[0].Inlines))
	}
	if got := spanAt(t, d, 0, 0).Style.FontSize; got != DefaultFontSize+4 {
		t.Errorf("FontSize = %v, want %v", got, DefaultFontSize+4)
	}
}

func TestAdjustFontSize_CaretNoEnclosingSpan(t *testing.T) {
	d := NewDocument() // single empty block

	sel, err := d.AdjustFontSize(Caret(0, 0, 0), 6)
	if err != nil {
		t.Fatalf("AdjustFontSize() error = %v", err)
	}

	// A zero-width marker span carries the new size for the next insertion.
	marker := spanAt(t, d, sel.Start.Block, sel.Start.Inline)
	if marker.Text != "" {
		t.Errorf("marker Text = %q, want empty", marker.Text)
	}
	if marker.Style.FontSize != DefaultFontSize+6 {
		t.Errorf("marker FontSize = %v, want %v", marker.Style.FontSize, DefaultFontSize+6)
	}
}

func TestAdjustFontSize_RangeExtractsSpan(t *testing.T) {
	d := docWithText("hello world")

	sel, err := d.AdjustFontSize(Range(0, 0, 6, 0, 11), 2)
	if err != nil {
		t.Fatalf("AdjustFontSize() error = %v", err)
	}

	extracted := spanAt(t, d, sel.Start.Block, sel.Start.Inline)
	if extracted.Text != "world" {
		t.Errorf("extracted Text = %q, want %q", extracted.Text, "world")
	}
	if extracted.Style.FontSize != DefaultFontSize+2 {
		t.Errorf("extracted FontSize = %v, want %v", extracted.Style.FontSize, DefaultFontSize+2)
	}

	// Selection is preserved around the new span.
	if sel.Collapsed() || sel.End.Offset != len("world") {
		t.Errorf("selection = %+v, want range over extracted span", sel)
	}

	// The untouched prefix keeps the default size.
	if prefix := spanAt(t, d, 0, 0); prefix.Text != "hello " || prefix.Style.FontSize != 0 {
		t.Errorf("prefix = %+v, want unchanged", prefix)
	}
}

func TestAdjustFontSize_Clamped(t *testing.T) {
	d := docWithText("x")

	if _, err := d.AdjustFontSize(Caret(0, 0, 0), 1000); err != nil {
		t.Fatalf("AdjustFontSize() error = %v", err)
	}
	if got := spanAt(t, d, 0, 0).Style.FontSize; got != MaxFontSize {
		t.Errorf("FontSize = %v, want clamped to %v", got, MaxFontSize)
	}

	if _, err := d.AdjustFontSize(Caret(0, 0, 0), -1000); err != nil {
		t.Fatalf("AdjustFontSize() error = %v", err)
	}
	if got := spanAt(t, d, 0, 0).Style.FontSize; got != MinFontSize {
		t.Errorf("FontSize = %v, want clamped to %v", got, MinFontSize)
	}
}

func TestAdjustFontSize_CrossBlock(t *testing.T) {
	d := docWithText("one")
	d.AppendBlock()

	sel := Selection{Start: Position{Block: 0}, End: Position{Block: 1}}
	if _, err := d.AdjustFontSize(sel, 2); err != ErrCrossBlock {
		t.Errorf("error = %v, want ErrCrossBlock", err)
	}
}

func TestToggleBold_AppliesThenRemoves(t *testing.T) {
	d := docWithText("hello world")
	sel := Range(0, 0, 0, 0, 5)

	if err := d.ToggleBold(sel); err != nil {
		t.Fatalf("ToggleBold() error = %v", err)
	}
	if !spanAt(t, d, 0, 0).Style.Bold {
		t.Fatal("first toggle did not apply bold")
	}
	if spanAt(t, d, 0, 1).Style.Bold {
		t.Fatal("bold leaked past the selection")
	}

	// Same range again: every covered span is bold, so bold is removed.
	if err := d.ToggleBold(Range(0, 0, 0, 0, 5)); err != nil {
		t.Fatalf("ToggleBold() error = %v", err)
	}
	if spanAt(t, d, 0, 0).Style.Bold {
		t.Error("second toggle did not remove bold")
	}
}

func TestToggleBold_MixedSelectionUnifies(t *testing.T) {
	d := &Document{Blocks: []*Block{{Inlines: []Inline{
		&Span{Text: "plain "},
		&Span{Text: "bold", Style: Style{Bold: true}},
	}}}}

	// Covering both spans: not all bold, so the toggle bolds everything.
	if err := d.ToggleBold(Range(0, 0, 0, 1, 4)); err != nil {
		t.Fatalf("ToggleBold() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if !spanAt(t, d, 0, i).Style.Bold {
			t.Errorf("span %d not bold after unifying toggle", i)
		}
	}
}

func TestInsertText_SplicesIntoSpan(t *testing.T) {
	d := docWithText("helloworld")

	if err := d.InsertText(Position{Block: 0, Inline: 0, Offset: 5}, " "); err != nil {
		t.Fatalf("InsertText() error = %v", err)
	}
	if got := spanAt(t, d, 0, 0).Text; got != "hello world" {
		t.Errorf("Text = %q, want %q", got, "hello world")
	}
}

func TestConstrainImages_Idempotent(t *testing.T) {
	d := NewDocument()
	img, err := d.InsertImage(0, "figure.png")
	if err != nil {
		t.Fatalf("InsertImage() error = %v", err)
	}

	// Before dimensions are known the constraint pass is a no-op.
	d.ConstrainImages(850)
	if img.Width != 0 {
		t.Errorf("Width = %v before load, want 0", img.Width)
	}

	d.SetImageNaturalSize("figure.png", 1700, 1000)
	d.ConstrainImages(850)

	if img.Width != 850 {
		t.Errorf("Width = %v, want clamped to 850", img.Width)
	}
	if img.Height != 500 {
		t.Errorf("Height = %v, want 500 (aspect preserved)", img.Height)
	}

	// Re-applying is idempotent.
	d.ConstrainImages(850)
	if img.Width != 850 || img.Height != 500 {
		t.Errorf("re-applied constraint changed size: %vx%v", img.Width, img.Height)
	}
}

func TestContentHeight_GrowsWithContent(t *testing.T) {
	short := docWithText("brief")
	long := docWithText("this is a considerably longer paragraph of text that will need to wrap across multiple lines when narrow")

	w := 200.0
	if long.ContentHeight(w) <= short.ContentHeight(w) {
		t.Error("longer content did not measure taller")
	}
}

func TestContentHeight_CountsLoadedImages(t *testing.T) {
	d := NewDocument()
	d.InsertText(Position{}, "caption")
	before := d.ContentHeight(850)

	if _, err := d.InsertImage(0, "fig.png"); err != nil {
		t.Fatalf("InsertImage() error = %v", err)
	}
	// Image with unknown dimensions contributes nothing yet.
	if h := d.ContentHeight(850); h != before {
		t.Errorf("unloaded image changed height: %v -> %v", before, h)
	}

	d.SetImageNaturalSize("fig.png", 400, 300)
	d.ConstrainImages(850)
	if h := d.ContentHeight(850); h < before+300 {
		t.Errorf("loaded image did not add its height: %v -> %v", before, h)
	}
}
