package layout

import (
	"errors"
	"fmt"
)

// Config holds the thresholds used by clustering and content aggregation.
type Config struct {
	// GapThreshold is the largest per-axis gap, in document units, across which
	// a fragment still joins the current block.
	GapThreshold float64

	// NewlineThreshold is the vertical gap above which merged text is separated
	// by a newline.
	NewlineThreshold float64

	// NoiseWidth is the max line width (in characters) at or below which a block
	// is treated as short/symbolic text.
	NoiseWidth int

	// MinBlockWidth is the smallest bbox width a block needs to count as content.
	MinBlockWidth float64

	// HeaderFooterDivisor and HeaderFooterMinCount define the recurrence threshold
	// max(pageCount/HeaderFooterDivisor, HeaderFooterMinCount).
	HeaderFooterDivisor  int
	HeaderFooterMinCount int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() Config {
	return Config{
		GapThreshold:         20,
		NewlineThreshold:     3,
		NoiseWidth:           3,
		MinBlockWidth:        0.01,
		HeaderFooterDivisor:  3,
		HeaderFooterMinCount: 2,
	}
}

// Validate checks the configuration for values the algorithms cannot use.
func (c Config) Validate() error {
	if c.GapThreshold < 0 {
		return fmt.Errorf("invalid gap threshold: %.2f (must be >= 0)", c.GapThreshold)
	}
	if c.NewlineThreshold < 0 {
		return fmt.Errorf("invalid newline threshold: %.2f (must be >= 0)", c.NewlineThreshold)
	}
	if c.NoiseWidth < 0 {
		return fmt.Errorf("invalid noise width: %d (must be >= 0)", c.NoiseWidth)
	}
	if c.MinBlockWidth < 0 {
		return fmt.Errorf("invalid min block width: %.4f (must be >= 0)", c.MinBlockWidth)
	}
	if c.HeaderFooterDivisor <= 0 {
		return errors.New("header/footer divisor must be positive")
	}
	if c.HeaderFooterMinCount <= 0 {
		return errors.New("header/footer min count must be positive")
	}
	return nil
}

// HeaderFooterThreshold returns the number of occurrences that marks a text as a
// running header or footer in a document of pageCount pages.
func (c Config) HeaderFooterThreshold(pageCount int) int {
	return max(pageCount/c.HeaderFooterDivisor, c.HeaderFooterMinCount)
}
