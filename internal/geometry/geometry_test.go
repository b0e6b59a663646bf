package geometry

import (
	"errors"
	"math"
	"testing"
)

func square() []Point {
	return []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
}

func TestPointInPolygon(t *testing.T) {
	cases := []struct {
		name string
		p    Point
		want bool
	}{
		{"interior", Point{X: 5, Y: 5}, true},
		{"outside right", Point{X: 11, Y: 5}, false},
		{"outside above", Point{X: 5, Y: -0.5}, false},
		{"bottom edge", Point{X: 5, Y: 10}, true},
		{"left edge", Point{X: 0, Y: 3}, true},
		{"vertex", Point{X: 10, Y: 10}, true},
		{"origin vertex", Point{X: 0, Y: 0}, true},
	}
	for _, tc := range cases {
		if got := PointInPolygon(tc.p, square()); got != tc.want {
			t.Fatalf("%s: PointInPolygon(%v) = %v, want %v", tc.name, tc.p, got, tc.want)
		}
	}
}

func TestPointInPolygonConcave(t *testing.T) {
	// U shape opening upwards.
	u := []Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 9}, {X: 6, Y: 9}, {X: 6, Y: 0}, {X: 9, Y: 0}, {X: 9, Y: 12}, {X: 0, Y: 12}}
	if PointInPolygon(Point{X: 4.5, Y: 3}, u) {
		t.Fatalf("point in the notch should be outside")
	}
	if !PointInPolygon(Point{X: 1.5, Y: 3}, u) {
		t.Fatalf("point in the left arm should be inside")
	}
	if !PointInPolygon(Point{X: 4.5, Y: 9}, u) {
		t.Fatalf("point on the notch floor should be inside")
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	if PointInPolygon(Point{X: 0, Y: 0}, nil) {
		t.Fatalf("empty polygon contains nothing")
	}
	line := []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}
	if PointInPolygon(Point{X: 5, Y: 5}, line) {
		t.Fatalf("two-point polygon contains nothing")
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	in := PixelBox{X1: 100, Y1: 50, X2: 300, Y2: 450}
	n, err := Normalize(in, 1280, 720)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	out := DenormalizeBox(n, 1280, 720)
	for _, pair := range [][2]float64{{in.X1, out.X1}, {in.Y1, out.Y1}, {in.X2, out.X2}, {in.Y2, out.Y2}} {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Fatalf("round trip mismatch: in %+v out %+v", in, out)
		}
	}
}

func TestNormalizeZeroDimension(t *testing.T) {
	_, err := Normalize(PixelBox{X2: 1, Y2: 1}, 0, 720)
	if !errors.Is(err, ErrZeroDimension) {
		t.Fatalf("expected ErrZeroDimension, got %v", err)
	}
	if _, err := Normalize(PixelBox{X2: 1, Y2: 1}, 1280, 0); !errors.Is(err, ErrZeroDimension) {
		t.Fatalf("expected ErrZeroDimension for zero height, got %v", err)
	}
}

func TestFootPoint(t *testing.T) {
	p := FootPoint(BoxNorm{X: 0.25, Y: 0.5, W: 0.5, H: 0.25}, 100, 200)
	if p.X != 50 || p.Y != 150 {
		t.Fatalf("FootPoint = %v, want (50,150)", p)
	}
}

func TestDenormalizePolygon(t *testing.T) {
	got := DenormalizePolygon([][2]float64{{0, 0}, {1, 0.5}}, 640, 480)
	if len(got) != 2 || got[1].X != 640 || got[1].Y != 240 {
		t.Fatalf("DenormalizePolygon = %v", got)
	}
}
