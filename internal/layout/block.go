package layout

import (
	"strings"
	"unicode/utf8"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"golang.org/x/text/unicode/norm"
)

// TextBlock is a cluster of adjacent fragments on one page.
type TextBlock struct {
	Bounds       geometry.Bounds `json:"-"`
	Text         string          `json:"text"`
	LineCount    int             `json:"line_count"`
	MaxLineWidth int             `json:"max_line_width"`
}

// newTextBlock computes the derived line statistics for text.
func newTextBlock(bounds geometry.Bounds, text string) TextBlock {
	lines, width := lineStats(text)
	return TextBlock{
		Bounds:       bounds,
		Text:         text,
		LineCount:    lines,
		MaxLineWidth: width,
	}
}

// lineStats returns the number of lines in text and the length, in
// NFC-normalized characters, of the longest one.
func lineStats(text string) (int, int) {
	if text == "" {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	widest := 0
	for _, line := range lines {
		if w := utf8.RuneCountInString(norm.NFC.String(line)); w > widest {
			widest = w
		}
	}
	return len(lines), widest
}
