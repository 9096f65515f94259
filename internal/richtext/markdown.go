package richtext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// headingSizes maps markdown heading levels to font sizes.
var headingSizes = map[int]float64{
	1: 32, 2: 26, 3: 22, 4: 19, 5: 17, 6: 16,
}

// FromMarkdown imports markdown into the document model, mapping paragraphs
// and headings to blocks, emphasis to italic/bold spans, and images to
// inline image nodes. Used when pulling content from the study material
// pipeline, which produces markdown rather than the notebook markup.
func FromMarkdown(source []byte) (*Document, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	doc := &Document{}
	var cur *Block
	boldDepth, italicDepth := 0, 0
	headingSize := 0.0

	style := func() Style {
		return Style{
			Bold:     boldDepth > 0 || headingSize > 0,
			Italic:   italicDepth > 0,
			FontSize: headingSize,
		}
	}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				cur = &Block{}
				doc.Blocks = append(doc.Blocks, cur)
				headingSize = headingSizes[node.Level]
			} else {
				cur = nil
				headingSize = 0
			}
		case *ast.Paragraph, *ast.TextBlock:
			if entering {
				cur = &Block{}
				doc.Blocks = append(doc.Blocks, cur)
			} else {
				cur = nil
			}
		case *ast.Emphasis:
			delta := 1
			if !entering {
				delta = -1
			}
			if node.Level >= 2 {
				boldDepth += delta
			} else {
				italicDepth += delta
			}
		case *ast.Image:
			if entering && cur != nil {
				cur.Inlines = append(cur.Inlines, &Image{Src: string(node.Destination)})
				return ast.WalkSkipChildren, nil
			}
		case *ast.Text:
			if entering && cur != nil {
				t := string(node.Segment.Value(source))
				if t != "" {
					cur.Inlines = append(cur.Inlines, &Span{Text: t, Style: style()})
				}
				if node.SoftLineBreak() || node.HardLineBreak() {
					cur.Inlines = append(cur.Inlines, &Span{Text: " ", Style: style()})
				}
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if len(doc.Blocks) == 0 {
		return NewDocument(), nil
	}
	return doc, nil
}
