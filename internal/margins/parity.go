package margins

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"github.com/MeKo-Tech/pocrop/internal/layout"
)

// Strategy selects how a parity group of content boxes is reduced to one rectangle.
type Strategy string

const (
	// StrategyPercentile trims outliers: low corner at the lower percentile,
	// high corner at the upper percentile.
	StrategyPercentile Strategy = "percentile"
	// StrategyMedian takes the per-coordinate median.
	StrategyMedian Strategy = "median"
	// StrategyEnvelope takes the min/max envelope of every box.
	StrategyEnvelope Strategy = "envelope"
)

// MirrorMode controls the mirrored-margin correction.
type MirrorMode string

const (
	// MirrorAuto applies the correction when line-level fragments dominate.
	MirrorAuto MirrorMode = "auto"
	// MirrorAlways applies the correction unconditionally.
	MirrorAlways MirrorMode = "always"
	// MirrorNever disables the correction.
	MirrorNever MirrorMode = "never"
)

// Config holds the parity estimation settings.
type Config struct {
	Strategy        Strategy
	LowerPercentile float64
	UpperPercentile float64
	// TopPadding is added to Y1 when the mirrored-margin correction applies.
	TopPadding float64
	Mirror     MirrorMode
}

// DefaultConfig returns the default parity estimation settings.
func DefaultConfig() Config {
	return Config{
		Strategy:        StrategyPercentile,
		LowerPercentile: 10,
		UpperPercentile: 90,
		TopPadding:      20,
		Mirror:          MirrorAuto,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyPercentile, StrategyMedian, StrategyEnvelope:
	default:
		return fmt.Errorf("invalid strategy: %q (must be one of: percentile, median, envelope)", c.Strategy)
	}
	switch c.Mirror {
	case MirrorAuto, MirrorAlways, MirrorNever:
	default:
		return fmt.Errorf("invalid mirror mode: %q (must be one of: auto, always, never)", c.Mirror)
	}
	if c.LowerPercentile < 0 || c.LowerPercentile > 100 {
		return fmt.Errorf("invalid lower percentile: %.2f (must be between 0 and 100)", c.LowerPercentile)
	}
	if c.UpperPercentile < 0 || c.UpperPercentile > 100 {
		return fmt.Errorf("invalid upper percentile: %.2f (must be between 0 and 100)", c.UpperPercentile)
	}
	if c.LowerPercentile > c.UpperPercentile {
		return errors.New("lower percentile must not exceed upper percentile")
	}
	return nil
}

// reduce collapses a parity group into one rectangle using the configured strategy.
func (c Config) reduce(rects []geometry.Rect) (geometry.Rect, error) {
	switch c.Strategy {
	case StrategyMedian:
		return MedianRects(rects)
	case StrategyEnvelope:
		return ExtremeRects(rects)
	default:
		return geometry.TrimmedBounds(rects, c.LowerPercentile, c.UpperPercentile)
	}
}

// MedianRects returns the per-coordinate median of rects.
func MedianRects(rects []geometry.Rect) (geometry.Rect, error) {
	return geometry.TrimmedBounds(rects, 50, 50)
}

// ExtremeRects returns the smallest rectangle enclosing every rect.
func ExtremeRects(rects []geometry.Rect) (geometry.Rect, error) {
	return geometry.TrimmedBounds(rects, 0, 100)
}

// ParityRects holds one rectangle per page parity.
type ParityRects struct {
	Odd  geometry.Rect `json:"odd"`
	Even geometry.Rect `json:"even"`
}

// For returns the rectangle that applies to the given 1-based page.
func (p ParityRects) For(page int) geometry.Rect {
	if page%2 == 1 {
		return p.Odd
	}
	return p.Even
}

// ParityInput carries the document-wide observations the estimator needs
// besides the content boxes.
type ParityInput struct {
	// Tally decides the dominant fragment granularity.
	Tally layout.KindTally
	// PageBoxes are the raw, unfiltered page rectangles by 1-based page number.
	PageBoxes map[int]geometry.Rect
}

// ParityEstimate is the outcome of EstimateParity.
type ParityEstimate struct {
	ParityRects
	// Trimmed holds the statistical rectangles before any correction.
	Trimmed ParityRects `json:"trimmed"`
	// EvenFromOdd is set when the even group was empty and odd boxes were used.
	EvenFromOdd bool `json:"even_from_odd"`
	// Mirrored is set when the mirrored-margin correction was applied.
	Mirrored bool `json:"mirrored"`
}

// splitByParity returns the odd and even page boxes in page order.
func splitByParity(boxes layout.PageBoxes) (odd, even []geometry.Rect) {
	for _, page := range boxes.Pages() {
		if page%2 == 1 {
			odd = append(odd, boxes[page])
		} else {
			even = append(even, boxes[page])
		}
	}
	return odd, even
}

// EstimateParity reduces the page content boxes to one rectangle per parity.
// An empty even group is substituted by the odd group. If the odd group is
// empty no rectangle can be produced and a *NoContentError is returned.
func EstimateParity(boxes layout.PageBoxes, in ParityInput, config Config) (*ParityEstimate, error) {
	odd, even := splitByParity(boxes)

	switch {
	case len(odd) == 0 && len(even) == 0:
		return nil, &NoContentError{Reason: "no page produced a content box"}
	case len(odd) == 0:
		return nil, &NoContentError{Reason: "no odd-numbered page produced a content box"}
	}

	est := &ParityEstimate{}
	if len(even) == 0 {
		even = odd
		est.EvenFromOdd = true
	}

	var err error
	if est.Trimmed.Odd, err = config.reduce(odd); err != nil {
		return nil, fmt.Errorf("odd pages: %w", err)
	}
	if est.Trimmed.Even, err = config.reduce(even); err != nil {
		return nil, fmt.Errorf("even pages: %w", err)
	}
	est.ParityRects = est.Trimmed

	if !config.mirrorApplies(in.Tally) {
		return est, nil
	}

	oddWidth, evenWidth, err := parityPageWidths(in.PageBoxes)
	if err != nil {
		return nil, fmt.Errorf("mirrored margin correction: %w", err)
	}
	est.ParityRects = mirrorMargins(est.Trimmed, oddWidth, evenWidth, config.TopPadding)
	est.Mirrored = true
	return est, nil
}

func (c Config) mirrorApplies(tally layout.KindTally) bool {
	switch c.Mirror {
	case MirrorAlways:
		return true
	case MirrorNever:
		return false
	default:
		return tally.Dominant() == layout.KindLine
	}
}

// mirrorMargins sets each parity's right edge to its page width minus the other
// parity's left edge, and pads the top edge.
func mirrorMargins(r ParityRects, oddWidth, evenWidth, topPadding float64) ParityRects {
	odd, even := r.Odd, r.Even
	odd.X1 = oddWidth - r.Even.X0
	even.X1 = evenWidth - r.Odd.X0
	odd.Y1 += topPadding
	even.Y1 += topPadding
	return ParityRects{Odd: odd, Even: even}
}

// parityPageWidths returns the median raw page width of odd and even pages.
// Even pages fall back to odd pages when the document has none.
func parityPageWidths(pages map[int]geometry.Rect) (float64, float64, error) {
	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	var odd, even []float64
	for _, n := range numbers {
		if n%2 == 1 {
			odd = append(odd, pages[n].Width())
		} else {
			even = append(even, pages[n].Width())
		}
	}
	if len(odd) == 0 {
		return 0, 0, errors.New("no odd page geometry available")
	}
	if len(even) == 0 {
		even = odd
	}

	oddWidth, err := geometry.Median(odd)
	if err != nil {
		return 0, 0, err
	}
	evenWidth, err := geometry.Median(even)
	if err != nil {
		return 0, 0, err
	}
	return oddWidth, evenWidth, nil
}

// ParseStrategy converts a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StrategyPercentile, StrategyMedian, StrategyEnvelope:
		return st, nil
	case "":
		return StrategyPercentile, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// ParseMirrorMode converts a configuration string into a MirrorMode.
func ParseMirrorMode(s string) (MirrorMode, error) {
	m := MirrorMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MirrorAuto, MirrorAlways, MirrorNever:
		return m, nil
	case "":
		return MirrorAuto, nil
	}
	return "", fmt.Errorf("unknown mirror mode %q", s)
}
