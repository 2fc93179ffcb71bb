package layout

import (
	"slices"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
)

// HeaderFooterSet holds block texts recognized as running headers or footers.
type HeaderFooterSet map[string]struct{}

// Contains reports whether text is a known header or footer.
func (s HeaderFooterSet) Contains(text string) bool {
	_, ok := s[text]
	return ok
}

// Texts returns the set members in sorted order.
func (s HeaderFooterSet) Texts() []string {
	out := make([]string, 0, len(s))
	for text := range s {
		out = append(out, text)
	}
	slices.Sort(out)
	return out
}

// MedianLineWidth returns the median MaxLineWidth over all non-empty blocks,
// or 0 when there are none.
func MedianLineWidth(blocks []TextBlock) float64 {
	widths := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		if b.Bounds.Empty() {
			continue
		}
		widths = append(widths, float64(b.MaxLineWidth))
	}
	median, err := geometry.Median(widths)
	if err != nil {
		return 0
	}
	return median
}

// DetectHeaderFooters flags texts that recur across the document. Detection is
// disabled when the median block width is at or below the noise width, since
// short or symbolic text repeats without being boilerplate. Matching is exact.
func DetectHeaderFooters(blocks []TextBlock, pageCount int, config Config) HeaderFooterSet {
	set := make(HeaderFooterSet)
	if MedianLineWidth(blocks) <= float64(config.NoiseWidth) {
		return set
	}

	counts := make(map[string]int)
	for _, b := range blocks {
		if b.Bounds.Empty() || b.MaxLineWidth <= config.NoiseWidth {
			continue
		}
		counts[b.Text]++
	}

	threshold := config.HeaderFooterThreshold(pageCount)
	for text, n := range counts {
		if n >= threshold {
			set[text] = struct{}{}
		}
	}
	return set
}
