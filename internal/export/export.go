// Package export flattens the base image and the caption overlay into a
// single raster at the image's native resolution. Caption positions and font
// sizes live in container space, so each is rescaled through the geometry
// package using the display metrics captured at the moment of export.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/example/quipshot/internal/geometry"
	"github.com/example/quipshot/internal/overlay"
)

// ErrNoImage reports an export attempted before the base image was loaded.
// No artifact is produced in that case.
var ErrNoImage = errors.New("export: base image not available")

// OutlineRatio is the outline stroke width as a proportion of the caption's
// scaled font size.
const OutlineRatio = 0.1

// outlineColor is drawn beneath the fill so captions stay readable on any
// background.
var outlineColor = color.RGBA{A: 255}

// Metrics carries the display measurements the exporter needs: the on-screen
// size of the image box (container space) and the image's natural pixel size.
// They are sampled at export time, never cached, so a window resize between
// edits and export cannot desynchronize the mapping.
type Metrics struct {
	Container geometry.Size
	Natural   geometry.Size
}

// MetricsFor derives Metrics from a base image and its on-screen box size.
func MetricsFor(base image.Image, container geometry.Size) Metrics {
	m := Metrics{Container: container}
	if base != nil {
		b := base.Bounds()
		m.Natural = geometry.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	}
	return m
}

var (
	fontOnce sync.Once
	boldFont *truetype.Font
	fontErr  error
)

func captionFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		boldFont, fontErr = truetype.Parse(gobold.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("parse caption font: %w", fontErr)
	}
	return truetype.NewFace(boldFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Flatten renders the base image with every caption baked in, in store order
// so later captions paint over earlier ones. The result has the base image's
// natural dimensions. A nil or zero-sized base fails with ErrNoImage; a
// zero-sized container fails with geometry.ErrEmptySize rather than emitting
// malformed coordinates.
func Flatten(base image.Image, anns []overlay.Annotation, m Metrics) (image.Image, error) {
	if base == nil {
		return nil, ErrNoImage
	}
	bounds := base.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrNoImage
	}
	if !m.Natural.Positive() {
		m.Natural = geometry.Size{W: float64(bounds.Dx()), H: float64(bounds.Dy())}
	}
	if !m.Container.Positive() {
		return nil, geometry.ErrEmptySize
	}

	dc := gg.NewContext(bounds.Dx(), bounds.Dy())
	dc.DrawImage(base, 0, 0)

	for _, a := range anns {
		if a.Content == "" {
			continue
		}
		center, err := geometry.ToNatural(a.Position, m.Container, m.Natural)
		if err != nil {
			return nil, err
		}
		size, err := geometry.ScaleLength(float64(a.FontSize), m.Container, m.Natural)
		if err != nil {
			return nil, err
		}
		face, err := captionFace(size)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(face)
		drawCaption(dc, a.Content, center, size, a.Color)
	}
	return dc.Image(), nil
}

// drawCaption strokes the outline by stamping the text at eight offsets
// around the center, then lays the fill on top.
func drawCaption(dc *gg.Context, text string, center geometry.Point, size float64, fill color.RGBA) {
	w := size * OutlineRatio
	dc.SetColor(outlineColor)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dc.DrawStringAnchored(text, center.X+float64(dx)*w, center.Y+float64(dy)*w, 0.5, 0.5)
		}
	}
	dc.SetColor(fill)
	dc.DrawStringAnchored(text, center.X, center.Y, 0.5, 0.5)
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Filename returns the timestamp-derived artifact name for an export taken
// at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("quipshot-%s.png", t.Format("20060102-150405"))
}
