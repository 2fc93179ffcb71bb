package margins

import (
	"github.com/MeKo-Tech/pocrop/internal/geometry"
)

// Equalize gives both rectangles the larger of the two widths and the larger of
// the two heights, growing each from its own (X0, Y0) origin. It never shrinks
// a rectangle and is idempotent.
func Equalize(odd, even geometry.Rect) (geometry.Rect, geometry.Rect) {
	w := max(odd.Width(), even.Width())
	h := max(odd.Height(), even.Height())
	return resize(odd, w, h), resize(even, w, h)
}

func resize(r geometry.Rect, w, h float64) geometry.Rect {
	return geometry.Rect{X0: r.X0, Y0: r.Y0, X1: r.X0 + w, Y1: r.Y0 + h}
}

// Equalized returns p with both rectangles equalized.
func (p ParityRects) Equalized() ParityRects {
	odd, even := Equalize(p.Odd, p.Even)
	return ParityRects{Odd: odd, Even: even}
}
