package richtext

import (
	"strings"
	"testing"
)

func TestMarshalHTML_Formatting(t *testing.T) {
	d := &Document{Blocks: []*Block{{Inlines: []Inline{
		&Span{Text: "plain "},
		&Span{Text: "loud", Style: Style{Bold: true, Underline: true}},
		&Span{Text: " big", Style: Style{FontSize: 24}},
	}}}}

	got := d.MarshalHTML()
	want := `<p>plain <b><u>loud</u></b><span style="font-size:24px"> big</span></p>`
	if got != want {
		t.Errorf("MarshalHTML() = %q, want %q", got, want)
	}
}

func TestMarshalHTML_EscapesText(t *testing.T) {
	d := docWithText(`a < b & "c"`)
	got := d.MarshalHTML()
	if strings.Contains(got, `a < b`) {
		t.Errorf("MarshalHTML() did not escape: %q", got)
	}
}

func TestUnmarshalHTML_RestoresStructure(t *testing.T) {
	markup := `<p>plain <b><u>loud</u></b><span style="font-size:24px"> big</span></p>` +
		"\n" + `<p><img src="fig.png" data-natural-width="400" data-natural-height="300" width="400" height="300"></p>`

	d, err := UnmarshalHTML(markup)
	if err != nil {
		t.Fatalf("UnmarshalHTML() error = %v", err)
	}

	if len(d.Blocks) != 2 {
		t.Fatalf("block count = %d, want 2", len(d.Blocks))
	}

	loud := spanAt(t, d, 0, 1)
	if !loud.Style.Bold || !loud.Style.Underline || loud.Text != "loud" {
		t.Errorf("second span = %+v, want bold underlined %q", loud, "loud")
	}

	big := spanAt(t, d, 0, 2)
	if big.Style.FontSize != 24 {
		t.Errorf("FontSize = %v, want 24", big.Style.FontSize)
	}

	img, ok := d.Blocks[1].Inlines[0].(*Image)
	if !ok {
		t.Fatalf("second block inline is %T, want *Image", d.Blocks[1].Inlines[0])
	}
	if img.Src != "fig.png" || img.NaturalW != 400 || img.Height != 300 {
		t.Errorf("image = %+v", img)
	}
}

func TestUnmarshalHTML_RoundTrip(t *testing.T) {
	d := &Document{Blocks: []*Block{
		{Inlines: []Inline{
			&Span{Text: "notes on "},
			&Span{Text: "osmosis", Style: Style{Italic: true, FontSize: 20}},
		}},
		{Inlines: []Inline{&Span{Text: "second paragraph"}}},
	}}

	restored, err := UnmarshalHTML(d.MarshalHTML())
	if err != nil {
		t.Fatalf("UnmarshalHTML() error = %v", err)
	}
	if restored.MarshalHTML() != d.MarshalHTML() {
		t.Errorf("round trip diverged:\n  in:  %s\n  out: %s", d.MarshalHTML(), restored.MarshalHTML())
	}
}

func TestUnmarshalHTML_SizedBoldSpanStable(t *testing.T) {
	d := &Document{Blocks: []*Block{{Inlines: []Inline{
		&Span{Text: "hello", Style: Style{Bold: true, FontSize: 20}},
	}}}}
	want := d.MarshalHTML()

	// Two full cycles: a spurious marker span would compound each time.
	cur := d
	for cycle := 0; cycle < 2; cycle++ {
		restored, err := UnmarshalHTML(cur.MarshalHTML())
		if err != nil {
			t.Fatalf("cycle %d: UnmarshalHTML() error = %v", cycle, err)
		}
		if got := len(restored.Blocks[0].Inlines); got != 1 {
			t.Fatalf("cycle %d: inline count = %d, want 1", cycle, got)
		}
		if got := restored.MarshalHTML(); got != want {
			t.Fatalf("cycle %d: markup = %q, want %q", cycle, got, want)
		}
		cur = restored
	}
}

func TestUnmarshalHTML_PreservesZeroWidthMarker(t *testing.T) {
	d := NewDocument()
	sel, err := d.AdjustFontSize(Caret(0, 0, 0), 8)
	if err != nil {
		t.Fatalf("AdjustFontSize() error = %v", err)
	}
	wantSize := spanAt(t, d, sel.Start.Block, sel.Start.Inline).Style.FontSize

	restored, err := UnmarshalHTML(d.MarshalHTML())
	if err != nil {
		t.Fatalf("UnmarshalHTML() error = %v", err)
	}

	marker := spanAt(t, restored, 0, 0)
	if marker.Text != "" || marker.Style.FontSize != wantSize {
		t.Errorf("marker = %+v, want zero-width span at size %v", marker, wantSize)
	}
}

func TestUnmarshalHTML_Empty(t *testing.T) {
	d, err := UnmarshalHTML("")
	if err != nil {
		t.Fatalf("UnmarshalHTML() error = %v", err)
	}
	if len(d.Blocks) != 1 || !d.IsEmpty() {
		t.Errorf("empty markup should yield a fresh single-block document")
	}
}

func TestUnmarshalHTML_UnterminatedTag(t *testing.T) {
	if _, err := UnmarshalHTML("<p>text<b"); err == nil {
		t.Error("UnmarshalHTML() expected error for unterminated tag")
	}
}
