// Package margins infers the content rectangle of odd and even pages from the
// text layout of a document.
package margins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/pocrop/internal/common"
	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"github.com/MeKo-Tech/pocrop/internal/layout"
	"github.com/google/uuid"
)

// Stage names recorded in Result.Timings.
const (
	StageCluster      = "cluster"
	StageHeaderFooter = "header_footer"
	StageAggregate    = "aggregate"
	StageEstimate     = "estimate"
	StageEqualize     = "equalize"
)

// Options configures a single inference run.
type Options struct {
	Layout layout.Config
	Parity Config
	// Workers bounds per-page clustering concurrency (0 = runtime.NumCPU(), 1 = sequential).
	Workers int
	// Progress is optional.
	Progress ProgressCallback
	// RunID tags log records and the result. A random ID is used when empty.
	RunID string
}

// DefaultOptions returns the default inference options.
func DefaultOptions() Options {
	return Options{
		Layout: layout.DefaultConfig(),
		Parity: DefaultConfig(),
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if err := o.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := o.Parity.Validate(); err != nil {
		return fmt.Errorf("margins: %w", err)
	}
	if o.Workers < 0 {
		return fmt.Errorf("invalid workers: %d (must be >= 0)", o.Workers)
	}
	return nil
}

// Result is the outcome of one inference run.
type Result struct {
	RunID     string `json:"run_id"`
	Document  string `json:"document"`
	PageCount int    `json:"page_count"`

	// Odd and Even are the equalized crop rectangles.
	Odd  geometry.Rect `json:"odd"`
	Even geometry.Rect `json:"even"`
	// Estimate holds the per-parity rectangles before equalization.
	Estimate ParityEstimate `json:"estimate"`

	PageBoxes       layout.PageBoxes `json:"page_boxes"`
	HeaderFooters   []string         `json:"header_footers"`
	MedianLineWidth float64          `json:"median_line_width"`
	Tally           layout.KindTally `json:"tally"`
	DominantKind    layout.Kind      `json:"dominant_kind"`
	FragmentCount   int              `json:"fragment_count"`
	BlockCount      int              `json:"block_count"`

	Timings common.Timings `json:"timings"`
}

// Rects returns the equalized crop rectangles.
func (r *Result) Rects() ParityRects {
	return ParityRects{Odd: r.Odd, Even: r.Even}
}

// PagesWithoutContent returns the number of pages that produced no content box.
func (r *Result) PagesWithoutContent() int {
	return r.PageCount - len(r.PageBoxes)
}

// Infer runs the full pipeline on doc: per-page clustering, header/footer
// detection, page aggregation, parity estimation and equalization.
// It returns a *NoContentError when no crop rectangle can be derived and
// ctx.Err() when ctx is cancelled during clustering.
func Infer(ctx context.Context, doc *Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := slog.With("run_id", runID, "document", doc.Name)

	res := &Result{
		RunID:         runID,
		Document:      doc.Name,
		PageCount:     doc.PageCount(),
		FragmentCount: doc.FragmentCount(),
	}
	logger.Debug("Starting inference", "pages", res.PageCount, "fragments", res.FragmentCount)

	stop := res.Timings.Start(StageCluster)
	layouts, err := clusterPages(ctx, layout.NewClusterer(opts.Layout), doc.Pages, opts.Workers, opts.Progress)
	stop()
	if err != nil {
		return nil, err
	}

	var all []layout.TextBlock
	byPage := make(map[int][]layout.TextBlock, len(layouts))
	for _, pl := range layouts {
		all = append(all, pl.Blocks...)
		byPage[pl.Page] = append(byPage[pl.Page], pl.Blocks...)
		res.Tally.Add(pl.Tally)
	}
	res.BlockCount = len(all)
	res.DominantKind = res.Tally.Dominant()

	stop = res.Timings.Start(StageHeaderFooter)
	res.MedianLineWidth = layout.MedianLineWidth(all)
	hf := layout.DetectHeaderFooters(all, res.PageCount, opts.Layout)
	res.HeaderFooters = hf.Texts()
	stop()
	if len(res.HeaderFooters) > 0 {
		logger.Debug("Detected running headers/footers", "count", len(res.HeaderFooters))
	}

	stop = res.Timings.Start(StageAggregate)
	res.PageBoxes = layout.AggregatePages(byPage, hf, res.MedianLineWidth, opts.Layout)
	stop()

	stop = res.Timings.Start(StageEstimate)
	est, err := EstimateParity(res.PageBoxes, ParityInput{Tally: res.Tally, PageBoxes: doc.MediaBoxes()}, opts.Parity)
	stop()
	if err != nil {
		var noContent *NoContentError
		if errors.As(err, &noContent) {
			noContent.Document = doc.Name
		}
		logger.Warn("Inference failed", "error", err)
		return nil, err
	}
	res.Estimate = *est
	if est.EvenFromOdd {
		logger.Debug("No even page content, using odd pages for both parities")
	}

	stop = res.Timings.Start(StageEqualize)
	equalized := est.Equalized()
	res.Odd, res.Even = equalized.Odd, equalized.Even
	stop()

	logger.Info("Inferred content rectangles",
		"odd", res.Odd.String(),
		"even", res.Even.String(),
		"dominant_kind", res.DominantKind.String(),
		"mirrored", est.Mirrored,
		"elapsed", res.Timings.Total())
	return res, nil
}
