package ink

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Render flattens the layer into an RGBA image at the given scale: a white
// page, the persisted snapshot (if any) fitted to the document width with
// its aspect ratio preserved, then every stroke replayed in insertion order.
// Rendering is a pure function of the layer state, so repeated calls with
// unchanged state produce pixel-identical output.
func Render(l *Layer, scale float64) *image.RGBA {
	w := int(math.Ceil(l.geo.DocWidth * scale))
	h := int(math.Ceil(l.geo.PageHeight * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if l.snapshot != nil {
		drawSnapshot(dc, l.snapshot, l.geo.DocWidth, scale)
	}

	base := rgbaOf(dc.Image())
	DrawStrokes(base, l.strokes, scale)
	return base
}

// DrawStrokes replays strokes in insertion order onto dst with each tool's
// blend semantics. Used both for layer rendering and for export composites.
func DrawStrokes(dst *image.RGBA, strokes []Stroke, scale float64) {
	b := dst.Bounds()
	for _, s := range strokes {
		if s.Kind == KindHighlighter {
			// Highlighters multiply-blend so overlapping passes darken
			// instead of stacking to full opacity.
			layer := strokeImage(s, b.Dx(), b.Dy(), scale)
			multiplyComposite(dst, layer)
		} else {
			penDC := gg.NewContextForRGBA(dst)
			drawStroke(penDC, s, scale)
		}
	}
}

// MultiplySnapshot scales a persisted snapshot to the document width and
// multiply-blends it onto dst. The snapshot's white page background is the
// multiply identity, so only the ink darkens whatever is already drawn.
func MultiplySnapshot(dst *image.RGBA, snap image.Image, docWidth, scale float64) {
	b := snap.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	targetW := int(math.Ceil(docWidth * scale))
	targetH := int(math.Ceil(float64(b.Dy()) * docWidth / float64(b.Dx()) * scale))
	if targetW < 1 || targetH < 1 {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), snap, b, xdraw.Over, nil)
	multiplyComposite(dst, scaled)
}

// drawSnapshot scales the snapshot to the document width, preserving aspect.
func drawSnapshot(dc *gg.Context, snap image.Image, docWidth, scale float64) {
	b := snap.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	targetW := int(math.Ceil(docWidth * scale))
	targetH := int(math.Ceil(float64(b.Dy()) * docWidth / float64(b.Dx()) * scale))
	if targetW < 1 || targetH < 1 {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), snap, b, xdraw.Over, nil)
	dc.DrawImage(scaled, 0, 0)
}

// strokeImage renders a single stroke onto a transparent layer.
func strokeImage(s Stroke, w, h int, scale float64) *image.RGBA {
	dc := gg.NewContext(w, h)
	drawStroke(dc, s, scale)
	return rgbaOf(dc.Image())
}

// drawStroke replays one stroke with its own color, width, and opacity.
func drawStroke(dc *gg.Context, s Stroke, scale float64) {
	r, g, b, _ := ParseHex(s.Color).RGBA()
	dc.SetRGBA(float64(r)/65535, float64(g)/65535, float64(b)/65535, s.Opacity)
	dc.SetLineWidth(s.Width * scale)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	if len(s.Points) == 1 {
		p := s.Points[0]
		dc.DrawPoint(p.X*scale, p.Y*scale, s.Width*scale/2)
		dc.Fill()
		return
	}

	for i, p := range s.Points {
		if i == 0 {
			dc.MoveTo(p.X*scale, p.Y*scale)
		} else {
			dc.LineTo(p.X*scale, p.Y*scale)
		}
	}
	dc.Stroke()
}

// multiplyComposite blends src over dst with a multiply blend weighted by
// the source alpha: covered pixels darken toward dst*src, uncovered pixels
// are untouched.
func multiplyComposite(dst, src *image.RGBA) {
	b := dst.Bounds().Intersect(src.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			so := src.PixOffset(x, y)
			sa := src.Pix[so+3]
			if sa == 0 {
				continue
			}
			do := dst.PixOffset(x, y)
			a := float64(sa) / 255
			for c := 0; c < 3; c++ {
				d := float64(dst.Pix[do+c])
				// Un-premultiply the source channel before multiplying.
				s := float64(src.Pix[so+c]) / a
				if s > 255 {
					s = 255
				}
				mul := d * s / 255
				dst.Pix[do+c] = uint8(math.Round(d*(1-a) + mul*a))
			}
		}
	}
}

// rgbaOf returns the image as *image.RGBA without copying when possible.
func rgbaOf(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	xdraw.Draw(out, b, img, b.Min, xdraw.Src)
	return out
}

// EncodePNG flattens an image to a PNG blob for snapshot persistence.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes a persisted snapshot blob.
func DecodePNG(blob []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(blob))
}

// IsInked reports whether the image contains any non-background pixels.
// Used to verify that a snapshot actually carries ink.
func IsInked(img image.Image) bool {
	b := img.Bounds()
	white := color.RGBA{255, 255, 255, 255}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := img.At(x, y).RGBA()
			w := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bb >> 8), uint8(a >> 8)}
			if w != white && w.A != 0 {
				return true
			}
		}
	}
	return false
}
