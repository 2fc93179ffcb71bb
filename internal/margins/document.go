package margins

import (
	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"github.com/MeKo-Tech/pocrop/internal/layout"
)

// Page is the layout of one page as delivered by a reader.
type Page struct {
	// Number is the 1-based page number.
	Number int
	// MediaBox is the raw, unfiltered page rectangle.
	MediaBox geometry.Rect
	// Fragments are the positioned text units in emission order.
	Fragments []layout.Fragment
}

// Document is a sequence of page layouts.
type Document struct {
	Name  string
	Pages []Page
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// MediaBoxes returns the raw page rectangles keyed by page number.
func (d *Document) MediaBoxes() map[int]geometry.Rect {
	boxes := make(map[int]geometry.Rect, len(d.Pages))
	for _, p := range d.Pages {
		boxes[p.Number] = p.MediaBox
	}
	return boxes
}

// FragmentCount returns the total number of fragments across all pages.
func (d *Document) FragmentCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Fragments)
	}
	return n
}
