package export

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestShadowExpandsBounds(t *testing.T) {
	img := solidRGBA(40, 30, color.RGBA{200, 10, 10, 255})
	opts := ShadowOptions{Radius: 8, Offset: image.Pt(6, 6), Opacity: 0.6}
	out := Shadow(img, opts)
	if out == img {
		t.Fatalf("expected new image")
	}
	if out.Bounds().Dx() <= img.Bounds().Dx() || out.Bounds().Dy() <= img.Bounds().Dy() {
		t.Fatalf("expected expanded bounds, got %v", out.Bounds())
	}
	if out.Bounds().Min != (image.Point{}) {
		t.Fatalf("expected zero-based origin, got %v", out.Bounds().Min)
	}
}

func TestShadowNoopWhenOpacityZero(t *testing.T) {
	img := solidRGBA(20, 20, color.RGBA{0, 0, 200, 255})
	out := Shadow(img, ShadowOptions{Radius: 10, Offset: image.Pt(4, 4), Opacity: 0})
	if out != img {
		t.Fatalf("expected original image back when opacity is zero")
	}
}

func TestShadowPreservesSource(t *testing.T) {
	img := solidRGBA(30, 30, color.RGBA{10, 200, 10, 255})
	out := Shadow(img, ShadowOptions{Radius: 0, Offset: image.Pt(6, 6), Opacity: 0.5})
	// Source pixels re-draw on top of the shadow unchanged.
	got := out.RGBAAt(0, 0)
	if got != (color.RGBA{10, 200, 10, 255}) {
		t.Fatalf("source pixel altered: %v", got)
	}
}

func TestShadowBlurredAlphaFallsOff(t *testing.T) {
	img := solidRGBA(20, 20, color.RGBA{255, 255, 255, 255})
	opts := ShadowOptions{Radius: 6, Offset: image.Pt(30, 30), Opacity: 1}
	out := Shadow(img, opts)
	// Sample down the shadow edge, beyond the source rectangle. Alpha
	// should fade rather than cut off sharply.
	shadowCenter := image.Pt(30+10, 30+10)
	center := out.RGBAAt(shadowCenter.X, shadowCenter.Y).A
	edge := out.RGBAAt(shadowCenter.X+14, shadowCenter.Y).A
	if center == 0 {
		t.Fatalf("expected shadow alpha at center of offset region")
	}
	if edge >= center {
		t.Fatalf("expected alpha to fall off at edge: center=%d edge=%d", center, edge)
	}
}
