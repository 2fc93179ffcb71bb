// Package geometry provides the rectangle arithmetic used by margin inference.
// Coordinates are PDF user-space units with the origin at the bottom-left.
package geometry

import (
	"fmt"
	"math"
)

// Rect is an axis-aligned rectangle given by its lower-left (X0, Y0) and
// upper-right (X1, Y1) corners.
type Rect struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// NewRect builds a rectangle from two arbitrary corners, normalizing the order.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns X1 - X0.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns Y1 - Y0.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// Contains reports whether o lies entirely inside r (edges inclusive).
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

// String formats the rectangle as "[x0 y0 x1 y1]".
func (r Rect) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.X0, r.Y0, r.X1, r.Y1)
}

// Gap returns the per-axis separation between a and b. On each axis the gap is
// zero when the projections overlap or touch, otherwise it is the distance
// between the nearer edges. Gap(a, b) == Gap(b, a).
func Gap(a, b Rect) (dx, dy float64) {
	return segmentGap(a.X0, a.X1, b.X0, b.X1), segmentGap(a.Y0, a.Y1, b.Y0, b.Y1)
}

func segmentGap(a0, a1, b0, b1 float64) float64 {
	switch {
	case b0 > a1:
		return b0 - a1
	case a0 > b1:
		return a0 - b1
	default:
		return 0
	}
}

// Bounds accumulates a union of rectangles. The zero value is empty, which is
// distinct from holding the zero rectangle.
type Bounds struct {
	rect Rect
	set  bool
}

// BoundsOf returns bounds holding exactly r.
func BoundsOf(r Rect) Bounds {
	return Bounds{rect: r, set: true}
}

// Add returns the bounds extended by r.
func (b Bounds) Add(r Rect) Bounds {
	if !b.set {
		return BoundsOf(r)
	}
	return Bounds{rect: b.rect.Union(r), set: true}
}

// Merge returns the union of two bounds; empty operands are ignored.
func (b Bounds) Merge(o Bounds) Bounds {
	if !o.set {
		return b
	}
	return b.Add(o.rect)
}

// Empty reports whether no rectangle has been added.
func (b Bounds) Empty() bool {
	return !b.set
}

// Rect returns the accumulated rectangle and whether it exists.
func (b Bounds) Rect() (Rect, bool) {
	return b.rect, b.set
}

// String implements fmt.Stringer.
func (b Bounds) String() string {
	if !b.set {
		return "[empty]"
	}
	return b.rect.String()
}
