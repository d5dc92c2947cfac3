package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestToNaturalScalesByRatio(t *testing.T) {
	container := Size{W: 400, H: 300}
	natural := Size{W: 800, H: 600}

	got, err := ToNatural(Point{X: 100, Y: 150}, container, natural)
	if err != nil {
		t.Fatalf("ToNatural failed: %v", err)
	}
	if got.X != 200 || got.Y != 300 {
		t.Errorf("unexpected natural point %+v, want (200,300)", got)
	}

	length, err := ScaleLength(40, container, natural)
	if err != nil {
		t.Fatalf("ScaleLength failed: %v", err)
	}
	if length != 80 {
		t.Errorf("unexpected scaled length %v, want 80", length)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		container Size
		natural   Size
		point     Point
	}{
		{"downscaled", Size{W: 412.5, H: 233}, Size{W: 1920, H: 1080}, Point{X: 37.25, Y: 141.5}},
		{"upscaled", Size{W: 600, H: 900}, Size{W: 150, H: 225}, Point{X: 599, Y: 1}},
		{"identity", Size{W: 333, H: 333}, Size{W: 333, H: 333}, Point{X: -40, Y: 512}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			nat, err := ToNatural(tc.point, tc.container, tc.natural)
			if err != nil {
				t.Fatalf("ToNatural failed: %v", err)
			}
			back, err := ToContainer(nat, tc.container, tc.natural)
			if err != nil {
				t.Fatalf("ToContainer failed: %v", err)
			}
			if math.Abs(back.X-tc.point.X) > 1e-9 || math.Abs(back.Y-tc.point.Y) > 1e-9 {
				t.Errorf("round trip drifted: %+v -> %+v", tc.point, back)
			}
		})
	}
}

func TestEmptySizeRejected(t *testing.T) {
	good := Size{W: 100, H: 100}
	for _, bad := range []Size{{}, {W: 100}, {H: 100}, {W: -1, H: 50}} {
		if _, err := ToNatural(Point{X: 1, Y: 1}, bad, good); !errors.Is(err, ErrEmptySize) {
			t.Errorf("ToNatural with container %+v: got %v, want ErrEmptySize", bad, err)
		}
		if _, err := ToNatural(Point{X: 1, Y: 1}, good, bad); !errors.Is(err, ErrEmptySize) {
			t.Errorf("ToNatural with natural %+v: got %v, want ErrEmptySize", bad, err)
		}
		if _, err := ScaleLength(10, bad, good); !errors.Is(err, ErrEmptySize) {
			t.Errorf("ScaleLength with container %+v: got %v, want ErrEmptySize", bad, err)
		}
	}
}

func TestPointArithmetic(t *testing.T) {
	p := Point{X: 10, Y: 20}
	q := Point{X: 3, Y: -5}
	if got := p.Add(q); got != (Point{X: 13, Y: 15}) {
		t.Errorf("Add: got %+v", got)
	}
	if got := p.Sub(q); got != (Point{X: 7, Y: 25}) {
		t.Errorf("Sub: got %+v", got)
	}
}
