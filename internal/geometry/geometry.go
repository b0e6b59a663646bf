// Package geometry converts between pixel and normalized frame coordinates
// and tests polygon containment.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrZeroDimension is returned when a frame width or height is zero.
var ErrZeroDimension = errors.New("frame width and height must be non-zero")

// onEdgeTolerance absorbs float noise when a point lies on a polygon edge.
const onEdgeTolerance = 1e-9

// Point is a position in pixel space.
type Point = r2.Vec

// BoxNorm is a bounding box normalized by frame width/height, anchored top-left.
type BoxNorm struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// PixelBox is a bounding box in pixel space given by its two corners.
type PixelBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Normalize converts a pixel box into frame-relative coordinates.
func Normalize(b PixelBox, width, height int) (BoxNorm, error) {
	if width == 0 || height == 0 {
		return BoxNorm{}, fmt.Errorf("normalize %dx%d: %w", width, height, ErrZeroDimension)
	}
	w, h := float64(width), float64(height)
	return BoxNorm{
		X: b.X1 / w,
		Y: b.Y1 / h,
		W: (b.X2 - b.X1) / w,
		H: (b.Y2 - b.Y1) / h,
	}, nil
}

// DenormalizeBox is the inverse of Normalize.
func DenormalizeBox(b BoxNorm, width, height int) PixelBox {
	w, h := float64(width), float64(height)
	return PixelBox{
		X1: b.X * w,
		Y1: b.Y * h,
		X2: (b.X + b.W) * w,
		Y2: (b.Y + b.H) * h,
	}
}

// FootPoint returns the bottom-centre of the box in pixel space. It is the
// ground-contact proxy used for zone containment.
func FootPoint(b BoxNorm, width, height int) Point {
	px := DenormalizeBox(b, width, height)
	return Point{X: (px.X1 + px.X2) / 2, Y: px.Y2}
}

// DenormalizePolygon scales normalized polygon points into pixel space.
func DenormalizePolygon(points [][2]float64, width, height int) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		out = append(out, Point{X: p[0] * float64(width), Y: p[1] * float64(height)})
	}
	return out
}

// PointInPolygon reports whether p lies inside or on the boundary of the
// closed polygon. Polygons with fewer than three vertices contain nothing.
func PointInPolygon(p Point, polygon []Point) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}
	if !within(bounds(polygon), p) {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := polygon[j], polygon[i]
		if onSegment(p, a, b) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xCross := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(p, a, b Point) bool {
	ab := r2.Sub(b, a)
	ap := r2.Sub(p, a)
	scale := math.Max(1, r2.Norm(ab))
	if math.Abs(r2.Cross(ab, ap)) > onEdgeTolerance*scale {
		return false
	}
	return within(r2.NewBox(a.X, a.Y, b.X, b.Y), p)
}

// within is an inclusive bounds check. r2.Box.Contains treats flat boxes as
// empty, which would drop horizontal and vertical edges.
func within(box r2.Box, p Point) bool {
	return box.Min.X-onEdgeTolerance <= p.X && p.X <= box.Max.X+onEdgeTolerance &&
		box.Min.Y-onEdgeTolerance <= p.Y && p.Y <= box.Max.Y+onEdgeTolerance
}

func bounds(polygon []Point) r2.Box {
	box := r2.Box{Min: polygon[0], Max: polygon[0]}
	for _, v := range polygon[1:] {
		box.Min.X = math.Min(box.Min.X, v.X)
		box.Min.Y = math.Min(box.Min.Y, v.Y)
		box.Max.X = math.Max(box.Max.X, v.X)
		box.Max.Y = math.Max(box.Max.Y, v.Y)
	}
	return box
}
