// Package geometry converts between the two pixel spaces quipshot works in:
// container space, which is the on-screen box the base image is displayed in,
// and natural space, which is the source image's own pixel grid. The display
// box is usually a scaled-down rendition of the image, so every exported
// coordinate is a live container coordinate rescaled by the ratio of the two
// sizes. The ratio is always recomputed from the sizes passed in; the window
// may have been resized since the last conversion.
package geometry

import "errors"

// ErrEmptySize reports a conversion against a container or image with a
// non-positive dimension, typically an image that has not been laid out yet.
var ErrEmptySize = errors.New("geometry: container and natural sizes must be positive")

// Point is a coordinate pair in either container or natural space.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the delta from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width/height pair in pixels.
type Size struct {
	W float64
	H float64
}

// Positive reports whether both dimensions are usable for scaling.
func (s Size) Positive() bool {
	return s.W > 0 && s.H > 0
}

// ToNatural maps a container-space point into natural image coordinates.
func ToNatural(p Point, container, natural Size) (Point, error) {
	if !container.Positive() || !natural.Positive() {
		return Point{}, ErrEmptySize
	}
	return Point{
		X: p.X * natural.W / container.W,
		Y: p.Y * natural.H / container.H,
	}, nil
}

// ToContainer maps a natural-space point back into container coordinates.
// It is the inverse of ToNatural for any positive pair of sizes.
func ToContainer(p Point, container, natural Size) (Point, error) {
	if !container.Positive() || !natural.Positive() {
		return Point{}, ErrEmptySize
	}
	return Point{
		X: p.X * container.W / natural.W,
		Y: p.Y * container.H / natural.H,
	}, nil
}

// ScaleLength rescales a scalar length (a font size, a stroke width) from
// container space into natural space using the horizontal ratio.
func ScaleLength(v float64, container, natural Size) (float64, error) {
	if !container.Positive() || !natural.Positive() {
		return 0, ErrEmptySize
	}
	return v * natural.W / container.W, nil
}
