package richtext

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// MarshalHTML serializes the document to the markup format persisted by the
// note store: one <p> per block, with <b>/<i>/<u> wrappers, font sizes as
// inline span styles, and <img> tags carrying natural dimensions so the
// constraint pass survives a reload.
func (d *Document) MarshalHTML() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("<p>")
		for _, in := range b.Inlines {
			switch n := in.(type) {
			case *Span:
				writeSpan(&sb, n)
			case *Image:
				writeImage(&sb, n)
			}
		}
		sb.WriteString("</p>")
	}
	return sb.String()
}

func writeSpan(sb *strings.Builder, s *Span) {
	hasSize := s.Style.FontSize > 0
	if hasSize {
		fmt.Fprintf(sb, `<span style="font-size:%gpx">`, s.Style.FontSize)
	}
	if s.Style.Bold {
		sb.WriteString("<b>")
	}
	if s.Style.Italic {
		sb.WriteString("<i>")
	}
	if s.Style.Underline {
		sb.WriteString("<u>")
	}
	sb.WriteString(html.EscapeString(s.Text))
	if s.Style.Underline {
		sb.WriteString("</u>")
	}
	if s.Style.Italic {
		sb.WriteString("</i>")
	}
	if s.Style.Bold {
		sb.WriteString("</b>")
	}
	if hasSize {
		sb.WriteString("</span>")
	}
}

func writeImage(sb *strings.Builder, img *Image) {
	fmt.Fprintf(sb, `<img src="%s"`, html.EscapeString(img.Src))
	if img.NaturalW > 0 && img.NaturalH > 0 {
		fmt.Fprintf(sb, ` data-natural-width="%g" data-natural-height="%g"`, img.NaturalW, img.NaturalH)
	}
	if img.Width > 0 && img.Height > 0 {
		fmt.Fprintf(sb, ` width="%g" height="%g"`, img.Width, img.Height)
	}
	sb.WriteString(">")
}

var (
	fontSizeRe = regexp.MustCompile(`font-size:\s*([0-9.]+)px`)
	attrRe     = regexp.MustCompile(`([a-zA-Z-]+)="([^"]*)"`)
)

// parseFrame tracks one open tag during deserialization.
type parseFrame struct {
	tag     string
	style   Style
	emitted bool
}

// UnmarshalHTML parses the persisted markup back into a document. The
// format is the closed set of tags MarshalHTML emits; unknown tags are
// skipped. Empty input yields a fresh single-block document.
func UnmarshalHTML(markup string) (*Document, error) {
	if strings.TrimSpace(markup) == "" {
		return NewDocument(), nil
	}

	doc := &Document{}
	var cur *Block
	stack := []parseFrame{{style: Style{}}}

	ensureBlock := func() *Block {
		if cur == nil {
			cur = &Block{}
			doc.Blocks = append(doc.Blocks, cur)
		}
		return cur
	}

	i := 0
	for i < len(markup) {
		if markup[i] != '<' {
			j := strings.IndexByte(markup[i:], '<')
			if j < 0 {
				j = len(markup) - i
			}
			text := html.UnescapeString(markup[i : i+j])
			if strings.TrimSpace(text) != "" || (cur != nil && text != "") {
				b := ensureBlock()
				b.Inlines = append(b.Inlines, &Span{Text: text, Style: stack[len(stack)-1].style})
				stack[len(stack)-1].emitted = true
			}
			i += j
			continue
		}

		end := strings.IndexByte(markup[i:], '>')
		if end < 0 {
			return nil, fmt.Errorf("unterminated tag at offset %d", i)
		}
		tag := markup[i+1 : i+end]
		i += end + 1

		switch {
		case tag == "p":
			cur = &Block{}
			doc.Blocks = append(doc.Blocks, cur)
		case tag == "/p":
			cur = nil
		case tag == "b" || tag == "i" || tag == "u":
			st := stack[len(stack)-1].style
			switch tag {
			case "b":
				st.Bold = true
			case "i":
				st.Italic = true
			case "u":
				st.Underline = true
			}
			stack = append(stack, parseFrame{tag: tag, style: st})
		case strings.HasPrefix(tag, "span"):
			st := stack[len(stack)-1].style
			if m := fontSizeRe.FindStringSubmatch(tag); m != nil {
				if size, err := strconv.ParseFloat(m[1], 64); err == nil {
					st.FontSize = size
				}
			}
			stack = append(stack, parseFrame{tag: "span", style: st})
		case tag == "/b" || tag == "/i" || tag == "/u" || tag == "/span":
			if len(stack) > 1 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.emitted {
					stack[len(stack)-1].emitted = true
				}
				// A font-size span closed with no text anywhere inside
				// is a zero-width marker; preserve it.
				if tag == "/span" && !top.emitted && top.style.FontSize > 0 {
					b := ensureBlock()
					b.Inlines = append(b.Inlines, &Span{Style: top.style})
				}
			}
		case strings.HasPrefix(tag, "img"):
			img := &Image{}
			for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
				val := html.UnescapeString(m[2])
				switch m[1] {
				case "src":
					img.Src = val
				case "data-natural-width":
					img.NaturalW, _ = strconv.ParseFloat(val, 64)
				case "data-natural-height":
					img.NaturalH, _ = strconv.ParseFloat(val, 64)
				case "width":
					img.Width, _ = strconv.ParseFloat(val, 64)
				case "height":
					img.Height, _ = strconv.ParseFloat(val, 64)
				}
			}
			b := ensureBlock()
			b.Inlines = append(b.Inlines, img)
		default:
			// Unknown tag: skip.
		}
	}

	if len(doc.Blocks) == 0 {
		return NewDocument(), nil
	}
	return doc, nil
}
