package pdf

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"github.com/MeKo-Tech/pocrop/internal/layout"
)

const (
	// columnGapFactor splits a row where the horizontal gap exceeds this many font sizes.
	columnGapFactor = 3.0
	// spaceGapFactor inserts a space where the gap exceeds this fraction of the font size.
	spaceGapFactor = 0.15
)

// Glyph is one positioned run of text from a content stream, with (X, Y) at
// the baseline start.
type Glyph struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

func (g Glyph) right() float64 {
	return g.X + g.W
}

// row is a run of glyphs sharing a baseline.
type row struct {
	baseline float64
	fontSize float64
	glyphs   []Glyph
	bbox     geometry.Rect
	text     string
}

func (r *row) blank() bool {
	return strings.TrimSpace(r.text) == ""
}

// newRow finalizes the bounds and text of a run of glyphs sorted by X.
func newRow(glyphs []Glyph) row {
	r := row{glyphs: glyphs, baseline: glyphs[0].Y}
	var (
		b  geometry.Bounds
		sb strings.Builder
	)
	for i, g := range glyphs {
		r.fontSize = max(r.fontSize, g.FontSize)
		b = b.Add(geometry.NewRect(g.X, g.Y, g.right(), g.Y+g.FontSize))
		if i > 0 {
			prev := glyphs[i-1]
			if g.X-prev.right() > spaceGapFactor*max(g.FontSize, prev.FontSize) &&
				!strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(g.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
	}
	r.bbox, _ = b.Rect()
	r.text = sb.String()
	return r
}

// groupRows groups glyphs into rows, top of the page first. Glyphs whose
// baselines differ by at most tolerance share a row; a row is split where the
// horizontal gap suggests a column boundary.
func groupRows(glyphs []Glyph, tolerance float64) []row {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b Glyph) int {
		return cmp.Compare(b.Y, a.Y)
	})

	var (
		rows    []row
		current []Glyph
		base    float64
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		slices.SortStableFunc(current, func(a, b Glyph) int {
			return cmp.Compare(a.X, b.X)
		})
		rows = append(rows, splitColumns(current)...)
		current = nil
	}
	for _, g := range sorted {
		if len(current) > 0 && math.Abs(g.Y-base) > tolerance {
			flush()
		}
		if len(current) == 0 {
			base = g.Y
		}
		current = append(current, g)
	}
	flush()
	return rows
}

// splitColumns cuts an X-sorted run of glyphs at wide gaps.
func splitColumns(glyphs []Glyph) []row {
	var rows []row
	start := 0
	for i := 1; i < len(glyphs); i++ {
		gap := glyphs[i].X - glyphs[i-1].right()
		if gap > columnGapFactor*max(glyphs[i].FontSize, glyphs[i-1].FontSize) {
			rows = append(rows, newRow(glyphs[start:i]))
			start = i
		}
	}
	return append(rows, newRow(glyphs[start:]))
}

// paragraph is a stack of rows read as one unit.
type paragraph struct {
	rows []row
	bbox geometry.Rect
}

// accepts reports whether r continues p: it starts at most gapFactor font
// sizes below p and overlaps it horizontally.
func (p *paragraph) accepts(r row, gapFactor float64) bool {
	last := p.rows[len(p.rows)-1]
	dx, _ := geometry.Gap(p.bbox, r.bbox)
	if dx > 0 {
		return false
	}
	vgap := p.bbox.Y0 - r.bbox.Y1
	return vgap <= gapFactor*max(r.fontSize, last.fontSize)
}

func (p *paragraph) add(r row) {
	p.rows = append(p.rows, r)
	p.bbox = p.bbox.Union(r.bbox)
}

// fragment converts the paragraph into a layout fragment: a single row is a
// line, a stack of rows is a box.
func (p *paragraph) fragment(page int) layout.Fragment {
	texts := make([]string, len(p.rows))
	for i, r := range p.rows {
		texts[i] = r.text
	}
	kind := layout.KindBox
	if len(p.rows) == 1 {
		kind = layout.KindLine
	}
	return layout.Fragment{Page: page, BBox: p.bbox, Text: strings.Join(texts, "\n"), Kind: kind}
}

// buildFragments turns the glyphs of one page into layout fragments in
// top-down order. Whitespace-only rows become KindOther fragments.
func buildFragments(page int, glyphs []Glyph, rowTolerance, paragraphGap float64) []layout.Fragment {
	var (
		paragraphs []*paragraph
		order      []any
	)
	for _, r := range groupRows(glyphs, rowTolerance) {
		if r.blank() {
			order = append(order, layout.Fragment{Page: page, BBox: r.bbox, Text: r.text, Kind: layout.KindOther})
			continue
		}
		var target *paragraph
		for i := len(paragraphs) - 1; i >= 0; i-- {
			if paragraphs[i].accepts(r, paragraphGap) {
				target = paragraphs[i]
				break
			}
		}
		if target == nil {
			target = &paragraph{bbox: r.bbox}
			paragraphs = append(paragraphs, target)
			order = append(order, target)
		}
		target.add(r)
	}

	frags := make([]layout.Fragment, 0, len(order))
	for _, item := range order {
		switch v := item.(type) {
		case *paragraph:
			frags = append(frags, v.fragment(page))
		case layout.Fragment:
			frags = append(frags, v)
		}
	}
	return frags
}
