// Package export renders a note's combined text and ink into a paginated
// PDF. The composite is built at the fixed document width and a fixed
// high-resolution scale, never the live editor's zoomed dimensions, so the
// output is identical regardless of how the note was being viewed.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"

	"github.com/swapavan11/apricity-notebook/internal/config"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/ink"
	"github.com/swapavan11/apricity-notebook/internal/logger"
	"github.com/swapavan11/apricity-notebook/internal/note"
	"github.com/swapavan11/apricity-notebook/internal/richtext"
)

// Exporter turns notes into multi-page PDFs.
type Exporter struct {
	cfg     *config.Config
	fetcher ImageFetcher
}

// New builds an exporter that fetches inline images over HTTP, each fetch
// bounded by the configured image-load timeout.
func New(cfg *config.Config) *Exporter {
	return &Exporter{
		cfg:     cfg,
		fetcher: NewHTTPFetcher(cfg.ImageLoadTimeout()),
	}
}

// NewWithFetcher builds an exporter with a custom image fetcher.
func NewWithFetcher(cfg *config.Config, fetcher ImageFetcher) *Exporter {
	return &Exporter{cfg: cfg, fetcher: fetcher}
}

// Export renders n into a PDF. When live is non-nil it is used as the ink
// source (the note currently open in an editor); otherwise the ink is
// reconstructed from the note's stored strokes, falling back to its raster
// snapshot.
func (e *Exporter) Export(ctx context.Context, n *note.Note, live *ink.Layer) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, errors.NewExportFailed(err)
	}

	doc := richtext.NewDocument()
	if n.Content != "" {
		parsed, err := richtext.UnmarshalHTML(n.Content)
		if err != nil {
			return nil, errors.NewExportFailed(fmt.Errorf("parse content: %w", err))
		}
		doc = parsed
	}

	images := e.fetchImages(ctx, doc)
	doc.ConstrainImages(float64(e.cfg.DocWidth) - 2*pageMargin)

	layer := live
	if layer == nil {
		layer = e.rebuildLayer(n)
	}

	scale := e.cfg.ExportScale
	comp := &compositor{
		docWidth: float64(e.cfg.DocWidth),
		scale:    scale,
		images:   images,
	}

	textHeight := comp.contentHeight(doc)
	totalHeight := math.Max(textHeight, layer.PageHeight())

	w := int(math.Ceil(float64(e.cfg.DocWidth) * scale))
	h := int(math.Ceil(totalHeight * scale))
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	comp.draw(doc, dc)

	base, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, errors.NewExportFailed(fmt.Errorf("unexpected raster format"))
	}
	e.drawInk(base, layer, scale)

	pdf, err := e.paginate(base, totalHeight)
	if err != nil {
		return nil, errors.NewExportFailed(err)
	}
	return pdf, nil
}

// fetchImages resolves every image source in the document, records natural
// dimensions on the nodes, and returns the decoded images by source. A
// failed or timed-out fetch drops that image from the output rather than
// failing the export.
func (e *Exporter) fetchImages(ctx context.Context, doc *richtext.Document) map[string]image.Image {
	images := make(map[string]image.Image)

	for _, block := range doc.Blocks {
		for _, in := range block.Inlines {
			img, ok := in.(*richtext.Image)
			if !ok || img.Src == "" {
				continue
			}
			if _, done := images[img.Src]; done {
				continue
			}

			fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.ImageLoadTimeout())
			decoded, err := e.fetcher.Fetch(fetchCtx, img.Src)
			cancel()
			if err != nil {
				logger.Warn("image skipped during export",
					map[string]interface{}{"src": img.Src, "error": err.Error()})
				continue
			}

			images[img.Src] = decoded
			b := decoded.Bounds()
			doc.SetImageNaturalSize(img.Src, float64(b.Dx()), float64(b.Dy()))
		}
	}
	return images
}

// rebuildLayer reconstructs an ink layer from persisted note state.
func (e *Exporter) rebuildLayer(n *note.Note) *ink.Layer {
	layer := ink.NewLayer(ink.Geometry{
		DocWidth:        float64(e.cfg.DocWidth),
		PageHeight:      float64(e.cfg.PageHeight),
		HeightIncrement: float64(e.cfg.HeightIncrement),
		BottomMargin:    float64(e.cfg.BottomMargin),
	})

	if len(n.Strokes) > 0 {
		layer.SetStrokes(n.Strokes)
		return layer
	}
	if len(n.Snapshot) > 0 {
		if img, err := ink.DecodePNG(n.Snapshot); err == nil {
			layer.SetSnapshot(img)
		} else {
			logger.Warn("snapshot skipped during export",
				map[string]interface{}{"note_id": n.ID, "error": err.Error()})
		}
	}
	return layer
}

// drawInk composites the layer's ink over the text raster. The persisted
// snapshot multiply-blends so its white page background does not occlude
// the text beneath it.
func (e *Exporter) drawInk(base *image.RGBA, layer *ink.Layer, scale float64) {
	if snap := layer.Snapshot(); snap != nil {
		ink.MultiplySnapshot(base, snap, layer.DocWidth(), scale)
	}
	ink.DrawStrokes(base, layer.Strokes(), scale)
}

// paginate slices the tall composite into fixed-height pages and assembles
// the PDF. The last page is padded with white rather than truncated.
func (e *Exporter) paginate(composite *image.RGBA, totalHeight float64) ([]byte, error) {
	pageW := float64(e.cfg.DocWidth)
	pageH := float64(e.cfg.ExportPageHeight)
	scale := e.cfg.ExportScale

	pages := int(math.Ceil(totalHeight / pageH))
	if pages < 1 {
		pages = 1
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	sliceW := composite.Bounds().Dx()
	sliceH := int(math.Ceil(pageH * scale))

	for p := 0; p < pages; p++ {
		slice := image.NewRGBA(image.Rect(0, 0, sliceW, sliceH))
		// White padding below the content on the final page.
		for i := range slice.Pix {
			slice.Pix[i] = 0xff
		}
		srcY := p * sliceH
		xdraw.Draw(slice, slice.Bounds(), composite, image.Pt(0, srcY), xdraw.Src)

		blob, err := ink.EncodePNG(slice)
		if err != nil {
			return nil, err
		}

		name := fmt.Sprintf("page-%d", p)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(blob))
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, pageW, pageH, false, opts, 0, "")
	}

	if pdf.Err() {
		return nil, fmt.Errorf("assemble pdf: %v", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
