package geometry

import (
	"errors"
	"math"
	"slices"
)

// ErrEmptySample is returned by the statistics helpers when given no values.
var ErrEmptySample = errors.New("empty sample")

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between the closest order statistics: rank = p/100*(n-1).
// The input slice is not modified.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySample
	}
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, errors.New("percentile must be within [0, 100]")
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, nil
}

// Median is Percentile(values, 50).
func Median(values []float64) (float64, error) {
	return Percentile(values, 50)
}

// Corner selects one coordinate of a rectangle.
type Corner func(Rect) float64

// Coordinate accessors for use with Column.
var (
	LeftEdge   Corner = func(r Rect) float64 { return r.X0 }
	BottomEdge Corner = func(r Rect) float64 { return r.Y0 }
	RightEdge  Corner = func(r Rect) float64 { return r.X1 }
	TopEdge    Corner = func(r Rect) float64 { return r.Y1 }
)

// Column extracts one coordinate from every rectangle.
func Column(rects []Rect, c Corner) []float64 {
	out := make([]float64, len(rects))
	for i, r := range rects {
		out[i] = c(r)
	}
	return out
}

// TrimmedBounds returns the rectangle whose low corner is the lower-th
// percentile of the X0 and Y0 columns and whose high corner is the upper-th
// percentile of the X1 and Y1 columns.
func TrimmedBounds(rects []Rect, lower, upper float64) (Rect, error) {
	if len(rects) == 0 {
		return Rect{}, ErrEmptySample
	}
	var (
		out Rect
		err error
	)
	if out.X0, err = Percentile(Column(rects, LeftEdge), lower); err != nil {
		return Rect{}, err
	}
	if out.Y0, err = Percentile(Column(rects, BottomEdge), lower); err != nil {
		return Rect{}, err
	}
	if out.X1, err = Percentile(Column(rects, RightEdge), upper); err != nil {
		return Rect{}, err
	}
	if out.Y1, err = Percentile(Column(rects, TopEdge), upper); err != nil {
		return Rect{}, err
	}
	return out, nil
}
