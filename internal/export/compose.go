package export

import (
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	xdraw "golang.org/x/image/draw"

	"github.com/swapavan11/apricity-notebook/internal/richtext"
)

const (
	pageMargin   = 24.0 // document units, all four sides
	lineSpacing  = 1.4
	blockSpacing = 8.0
)

var (
	fontOnce  sync.Once
	fontErr   error
	regular   *truetype.Font
	bold      *truetype.Font
	italic    *truetype.Font
	boldItal  *truetype.Font
	faceCache sync.Map // faceKey -> font.Face
)

type faceKey struct {
	bold, italic bool
	size         float64
}

func loadFonts() error {
	fontOnce.Do(func() {
		parse := func(ttf []byte) *truetype.Font {
			if fontErr != nil {
				return nil
			}
			f, err := truetype.Parse(ttf)
			if err != nil {
				fontErr = err
			}
			return f
		}
		regular = parse(goregular.TTF)
		bold = parse(gobold.TTF)
		italic = parse(goitalic.TTF)
		boldItal = parse(gobolditalic.TTF)
	})
	return fontErr
}

func faceFor(style richtext.Style, scale float64) font.Face {
	key := faceKey{style.Bold, style.Italic, style.EffectiveSize() * scale}
	if f, ok := faceCache.Load(key); ok {
		return f.(font.Face)
	}

	src := regular
	switch {
	case style.Bold && style.Italic:
		src = boldItal
	case style.Bold:
		src = bold
	case style.Italic:
		src = italic
	}
	f := truetype.NewFace(src, &truetype.Options{Size: key.size})
	faceCache.Store(key, f)
	return f
}

// compositor lays out a rich text document at the fixed document width and
// paints it, along with the ink layer, onto one tall raster. The same walk
// runs twice: a measuring pass with a nil target to find the content height,
// then a drawing pass onto the sized canvas.
type compositor struct {
	docWidth float64
	scale    float64
	images   map[string]image.Image // fetched, keyed by src
}

// fragment is a measured run placed on one line.
type fragment struct {
	text  string
	style richtext.Style
	width float64
	img   *richtext.Image
}

// contentHeight runs the layout without drawing and returns the height in
// document units, margins included.
func (c *compositor) contentHeight(doc *richtext.Document) float64 {
	return c.walk(doc, nil)
}

// draw paints the document onto dc, which must already be sized and cleared.
func (c *compositor) draw(doc *richtext.Document, dc *gg.Context) {
	c.walk(doc, dc)
}

func (c *compositor) walk(doc *richtext.Document, dc *gg.Context) float64 {
	// Measurement needs a context for font metrics even when not drawing.
	measure := dc
	if measure == nil {
		measure = gg.NewContext(1, 1)
	}

	innerW := (c.docWidth - 2*pageMargin) * c.scale
	y := pageMargin * c.scale

	for bi, block := range doc.Blocks {
		if bi > 0 {
			y += blockSpacing * c.scale
		}
		y = c.layoutBlock(block, measure, dc, innerW, y)
	}

	return y/c.scale + pageMargin
}

// layoutBlock word-wraps one block's inlines into lines at innerW and
// returns the y cursor after the block. Images occupy their own lines.
func (c *compositor) layoutBlock(block *richtext.Block, measure, dc *gg.Context, innerW, y float64) float64 {
	var line []fragment
	var lineW float64
	empty := true

	flush := func() {
		if len(line) == 0 {
			return
		}
		y += c.flushLine(line, dc, y)
		line = nil
		lineW = 0
	}

	for _, in := range block.Inlines {
		switch n := in.(type) {
		case *richtext.Span:
			if n.Text == "" {
				continue
			}
			empty = false
			measure.SetFontFace(faceFor(n.Style, c.scale))
			for _, word := range splitWords(n.Text) {
				w, _ := measure.MeasureString(word)
				if lineW+w > innerW && lineW > 0 {
					flush()
				}
				line = append(line, fragment{text: word, style: n.Style, width: w})
				lineW += w
			}
		case *richtext.Image:
			if n.Width <= 0 || n.Height <= 0 {
				continue
			}
			empty = false
			flush()
			if dc != nil {
				c.drawImage(n, dc, y)
			}
			y += n.Height * c.scale
		}
	}
	flush()

	if empty {
		// An empty paragraph still takes one default-size line.
		y += richtext.DefaultFontSize * lineSpacing * c.scale
	}
	return y
}

// flushLine draws one wrapped line and returns its height.
func (c *compositor) flushLine(line []fragment, dc *gg.Context, y float64) float64 {
	maxSize := 0.0
	for _, f := range line {
		if s := f.style.EffectiveSize(); s > maxSize {
			maxSize = s
		}
	}
	lineH := maxSize * lineSpacing * c.scale
	baseline := y + maxSize*c.scale

	if dc != nil {
		x := pageMargin * c.scale
		for _, f := range line {
			dc.SetFontFace(faceFor(f.style, c.scale))
			dc.SetRGB(0.1, 0.1, 0.1)
			dc.DrawString(f.text, x, baseline)
			if f.style.Underline {
				uy := baseline + 2*c.scale
				dc.SetLineWidth(math.Max(1, c.scale))
				dc.DrawLine(x, uy, x+f.width, uy)
				dc.Stroke()
			}
			x += f.width
		}
	}
	return lineH
}

func (c *compositor) drawImage(n *richtext.Image, dc *gg.Context, y float64) {
	img, ok := c.images[n.Src]
	if !ok {
		return
	}

	w := int(math.Ceil(n.Width * c.scale))
	h := int(math.Ceil(n.Height * c.scale))
	if w < 1 || h < 1 {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	dc.DrawImage(scaled, int(pageMargin*c.scale), int(y))
}

// splitWords splits text into wrap units, keeping trailing spaces attached
// so inter-word gaps survive the round trip through measurement.
func splitWords(text string) []string {
	var words []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == ' ' {
			words = append(words, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		words = append(words, text[start:])
	}
	return words
}
