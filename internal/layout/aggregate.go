package layout

import (
	"slices"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
)

// PageBoxes maps a 1-based page number to its content box. Pages without
// qualifying blocks have no entry.
type PageBoxes map[int]geometry.Rect

// Pages returns the page numbers present, ascending.
func (p PageBoxes) Pages() []int {
	pages := make([]int, 0, len(p))
	for n := range p {
		pages = append(pages, n)
	}
	slices.Sort(pages)
	return pages
}

// Qualifies reports whether a block counts towards its page's content box.
func (c Config) Qualifies(b TextBlock, hf HeaderFooterSet, medianWidth float64) bool {
	r, ok := b.Bounds.Rect()
	if !ok {
		return false
	}
	if r.Width() < c.MinBlockWidth {
		return false
	}
	if hf.Contains(b.Text) {
		return false
	}
	if medianWidth > float64(c.NoiseWidth) && b.MaxLineWidth <= c.NoiseWidth {
		return false
	}
	return true
}

// AggregatePage unions the qualifying blocks of one page.
func AggregatePage(blocks []TextBlock, hf HeaderFooterSet, medianWidth float64, config Config) geometry.Bounds {
	var content geometry.Bounds
	for _, b := range blocks {
		if config.Qualifies(b, hf, medianWidth) {
			content = content.Merge(b.Bounds)
		}
	}
	return content
}

// AggregatePages computes the content box of every page.
func AggregatePages(pages map[int][]TextBlock, hf HeaderFooterSet, medianWidth float64, config Config) PageBoxes {
	boxes := make(PageBoxes, len(pages))
	for page, blocks := range pages {
		if r, ok := AggregatePage(blocks, hf, medianWidth, config).Rect(); ok {
			boxes[page] = r
		}
	}
	return boxes
}
