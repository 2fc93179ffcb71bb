package margins

import (
	"context"
	"fmt"
	"testing"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"github.com/MeKo-Tech/pocrop/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(n int, frags ...layout.Fragment) Page {
	for i := range frags {
		frags[i].Page = n
	}
	return Page{Number: n, MediaBox: rect(0, 0, 612, 792), Fragments: frags}
}

func box(x0, y0, x1, y1 float64, text string) layout.Fragment {
	return layout.Fragment{BBox: rect(x0, y0, x1, y1), Text: text, Kind: layout.KindBox}
}

func line(x0, y0, x1, y1 float64, text string) layout.Fragment {
	return layout.Fragment{BBox: rect(x0, y0, x1, y1), Text: text, Kind: layout.KindLine}
}

func footerDocument(pages int) *Document {
	doc := &Document{Name: "footer.pdf"}
	for n := 1; n <= pages; n++ {
		doc.Pages = append(doc.Pages, page(n,
			box(50, 100, 550, 700, fmt.Sprintf("Body paragraph of page %d", n)),
			line(250, 20, 350, 30, "Page Footer"),
		))
	}
	return doc
}

func TestInfer_TwoPagesEqualized(t *testing.T) {
	doc := &Document{Name: "two.pdf", Pages: []Page{
		page(1, box(0, 0, 600, 800, "Opening chapter text")),
		page(2, box(10, 10, 590, 790, "Continuing chapter text")),
	}}

	res, err := Infer(context.Background(), doc, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, rect(0, 0, 600, 800), res.Odd)
	assert.Equal(t, rect(10, 10, 610, 810), res.Even)
	assert.Equal(t, rect(0, 0, 600, 800), res.Estimate.Odd)
	assert.Equal(t, rect(10, 10, 590, 790), res.Estimate.Even)
	assert.Equal(t, layout.KindBox, res.DominantKind)
	assert.Empty(t, res.HeaderFooters)
	assert.Equal(t, 2, res.PageCount)
	assert.Zero(t, res.PagesWithoutContent())
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "two.pdf", res.Document)
	assert.Equal(t, res.Rects(), ParityRects{Odd: res.Odd, Even: res.Even})

	for _, stage := range []string{StageCluster, StageHeaderFooter, StageAggregate, StageEstimate, StageEqualize} {
		_, ok := res.Timings.Get(stage)
		assert.True(t, ok, "stage %s must be timed", stage)
	}
}

func TestInfer_RunningFooterExcluded(t *testing.T) {
	res, err := Infer(context.Background(), footerDocument(9), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"Page Footer"}, res.HeaderFooters)
	require.Len(t, res.PageBoxes, 9)
	for n, r := range res.PageBoxes {
		assert.Equal(t, rect(50, 100, 550, 700), r, "page %d", n)
	}
	assert.Equal(t, rect(50, 100, 550, 700), res.Odd)
	assert.Equal(t, rect(50, 100, 550, 700), res.Even)
	assert.Equal(t, layout.KindTally{Box: 9, Line: 9}, res.Tally)
	assert.False(t, res.Estimate.Mirrored)
	assert.Equal(t, 18, res.FragmentCount)
	assert.Equal(t, 18, res.BlockCount)
}

func TestInfer_NoContent(t *testing.T) {
	doc := &Document{Name: "blank.pdf", Pages: []Page{
		page(1),
		page(2, layout.Fragment{BBox: rect(0, 0, 100, 100), Text: "figure", Kind: layout.KindOther}),
		page(3),
	}}

	res, err := Infer(context.Background(), doc, DefaultOptions())
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrNoContent)

	var noContent *NoContentError
	require.ErrorAs(t, err, &noContent)
	assert.Equal(t, "blank.pdf", noContent.Document)
	assert.Contains(t, err.Error(), "blank.pdf")
}

func TestInfer_MirroredMargins(t *testing.T) {
	doc := &Document{Name: "lines.pdf", Pages: []Page{
		page(1, line(72, 100, 500, 700, "A single recto line")),
		page(2, line(100, 100, 528, 700, "A single verso line")),
	}}

	res, err := Infer(context.Background(), doc, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, layout.KindLine, res.DominantKind)
	assert.True(t, res.Estimate.Mirrored)
	assert.Equal(t, rect(72, 100, 512, 720), res.Odd)
	assert.Equal(t, rect(100, 100, 540, 720), res.Even)
}

func TestInfer_ParallelMatchesSequential(t *testing.T) {
	doc := footerDocument(30)

	seqOpts := DefaultOptions()
	seqOpts.Workers = 1
	seqOpts.RunID = "fixed"
	seq, err := Infer(context.Background(), doc, seqOpts)
	require.NoError(t, err)

	parOpts := DefaultOptions()
	parOpts.Workers = 4
	parOpts.RunID = "fixed"
	par, err := Infer(context.Background(), doc, parOpts)
	require.NoError(t, err)

	assert.Equal(t, seq.Odd, par.Odd)
	assert.Equal(t, seq.Even, par.Even)
	assert.Equal(t, seq.PageBoxes, par.PageBoxes)
	assert.Equal(t, seq.HeaderFooters, par.HeaderFooters)
	assert.Equal(t, seq.Tally, par.Tally)
	assert.Equal(t, "fixed", par.RunID)
}

func TestInfer_Cancelled(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			opts := DefaultOptions()
			opts.Workers = workers
			_, err := Infer(ctx, footerDocument(9), opts)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestInfer_InvalidInput(t *testing.T) {
	_, err := Infer(context.Background(), nil, DefaultOptions())
	assert.Error(t, err)

	opts := DefaultOptions()
	opts.Workers = -1
	_, err = Infer(context.Background(), footerDocument(3), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid workers")
}

type countingProgress struct {
	started, completed bool
	last, total        int
}

func (c *countingProgress) OnStart(total int)             { c.started, c.total = true, total }
func (c *countingProgress) OnProgress(current, total int) { c.last = max(c.last, current) }
func (c *countingProgress) OnComplete()                   { c.completed = true }

func TestInfer_ReportsProgress(t *testing.T) {
	progress := &countingProgress{}
	opts := DefaultOptions()
	opts.Workers = 1
	opts.Progress = progress

	_, err := Infer(context.Background(), footerDocument(6), opts)
	require.NoError(t, err)
	assert.True(t, progress.started)
	assert.True(t, progress.completed)
	assert.Equal(t, 6, progress.total)
	assert.Equal(t, 6, progress.last)
}

func TestDocumentHelpers(t *testing.T) {
	doc := footerDocument(3)
	assert.Equal(t, 3, doc.PageCount())
	assert.Equal(t, 6, doc.FragmentCount())
	assert.Equal(t, map[int]geometry.Rect{
		1: rect(0, 0, 612, 792),
		2: rect(0, 0, 612, 792),
		3: rect(0, 0, 612, 792),
	}, doc.MediaBoxes())
}

func TestInferResultIsEqualized(t *testing.T) {
	res, err := Infer(context.Background(), footerDocument(9), DefaultOptions())
	require.NoError(t, err)

	want := res.Estimate.ParityRects.Equalized()
	assert.Equal(t, want.Odd, res.Odd)
	assert.Equal(t, want.Even, res.Even)
	assert.InDelta(t, res.Odd.Width(), res.Even.Width(), 1e-9)
	assert.InDelta(t, res.Odd.Height(), res.Even.Height(), 1e-9)
}
