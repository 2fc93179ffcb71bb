package layout

import (
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
)

// PageLayout is the clustering result for a single page.
type PageLayout struct {
	Page   int
	Blocks []TextBlock
	Tally  KindTally
}

// Clusterer merges positioned fragments into text blocks by gap distance.
type Clusterer struct {
	config Config
}

// NewClusterer creates a clusterer with the given configuration.
func NewClusterer(config Config) *Clusterer {
	return &Clusterer{config: config}
}

// accumulator is the block under construction.
type accumulator struct {
	bounds geometry.Bounds
	text   strings.Builder
}

func (a *accumulator) add(frag Fragment, newlineThreshold float64) {
	if r, ok := a.bounds.Rect(); ok {
		_, dy := geometry.Gap(r, frag.BBox)
		if dy > newlineThreshold {
			a.text.WriteByte('\n')
		}
	}
	a.bounds = a.bounds.Add(frag.BBox)
	a.text.WriteString(frag.Text)
}

func (a *accumulator) flush() TextBlock {
	block := newTextBlock(a.bounds, a.text.String())
	a.bounds = geometry.Bounds{}
	a.text.Reset()
	return block
}

// ClusterPage clusters the fragments of one page, in emission order.
// The returned layout always holds at least one block; a page without usable
// fragments yields a single empty block.
func (c *Clusterer) ClusterPage(page int, frags []Fragment) PageLayout {
	var tally KindTally
	blocks := c.Cluster(frags, &tally)
	return PageLayout{Page: page, Blocks: blocks, Tally: tally}
}

// Cluster merges frags into blocks and counts recognized kinds into tally.
// Fragments of unrecognized kind or with empty text are skipped.
func (c *Clusterer) Cluster(frags []Fragment, tally *KindTally) []TextBlock {
	var (
		blocks []TextBlock
		acc    accumulator
	)

	for _, frag := range frags {
		if !frag.Kind.Recognized() || frag.Text == "" {
			slog.Debug("Skipping fragment", "page", frag.Page, "kind", frag.Kind.String())
			continue
		}
		tally.Observe(frag.Kind)

		if r, ok := acc.bounds.Rect(); ok {
			dx, dy := geometry.Gap(r, frag.BBox)
			if max(dx, dy) > c.config.GapThreshold {
				blocks = append(blocks, acc.flush())
			}
		}
		acc.add(frag, c.config.NewlineThreshold)
	}

	return append(blocks, acc.flush())
}
