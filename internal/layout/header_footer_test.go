package layout

import (
	"fmt"
	"testing"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"github.com/stretchr/testify/assert"
)

func block(text string, r geometry.Rect) TextBlock {
	return newTextBlock(geometry.BoundsOf(r), text)
}

// document builds one body block per page plus footer on the first footerPages pages.
func document(pageCount, footerPages int, footer string) []TextBlock {
	var blocks []TextBlock
	for p := 1; p <= pageCount; p++ {
		blocks = append(blocks, block(fmt.Sprintf("Body text of page number %d", p), geometry.Rect{X0: 72, Y0: 72, X1: 540, Y1: 720}))
		if p <= footerPages {
			blocks = append(blocks, block(footer, geometry.Rect{X0: 250, Y0: 30, X1: 350, Y1: 40}))
		}
	}
	return blocks
}

func TestMedianLineWidth(t *testing.T) {
	blocks := []TextBlock{
		block("abc", geometry.Rect{X1: 10, Y1: 10}),
		block("abcdef", geometry.Rect{X1: 10, Y1: 10}),
		block("abcdefghi", geometry.Rect{X1: 10, Y1: 10}),
		{}, // empty page placeholder is ignored
	}
	assert.InDelta(t, 6.0, MedianLineWidth(blocks), 1e-9)
	assert.InDelta(t, 0.0, MedianLineWidth(nil), 1e-9)
}

func TestDetectHeaderFooters_FooterOnEveryPage(t *testing.T) {
	blocks := document(9, 9, "Page Footer")

	hf := DetectHeaderFooters(blocks, 9, DefaultConfig())
	assert.True(t, hf.Contains("Page Footer"))
	assert.Equal(t, []string{"Page Footer"}, hf.Texts())
}

func TestDetectHeaderFooters_Threshold(t *testing.T) {
	tests := []struct {
		pageCount int
		threshold int
	}{
		{6, 2}, {9, 3}, {12, 4}, {30, 10},
		// pageCount/3 rounds down.
		{10, 3}, {11, 3}, {14, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d pages", tt.pageCount), func(t *testing.T) {
			threshold := tt.threshold

			hf := DetectHeaderFooters(document(tt.pageCount, threshold, "Running title"), tt.pageCount, DefaultConfig())
			assert.True(t, hf.Contains("Running title"), "text on %d pages should be a header", threshold)

			hf = DetectHeaderFooters(document(tt.pageCount, threshold-1, "Running title"), tt.pageCount, DefaultConfig())
			assert.False(t, hf.Contains("Running title"), "text on %d pages should not be a header", threshold-1)
		})
	}
}

func TestDetectHeaderFooters_MinimumCount(t *testing.T) {
	// 3 pages: 3/3 == 1, but at least two occurrences are required.
	hf := DetectHeaderFooters(document(3, 1, "Only once"), 3, DefaultConfig())
	assert.False(t, hf.Contains("Only once"))

	hf = DetectHeaderFooters(document(3, 2, "Twice"), 3, DefaultConfig())
	assert.True(t, hf.Contains("Twice"))
}

func TestDetectHeaderFooters_DisabledForShortText(t *testing.T) {
	var blocks []TextBlock
	for range 10 {
		blocks = append(blocks, block("§", geometry.Rect{X1: 10, Y1: 10}))
		blocks = append(blocks, block("12", geometry.Rect{X1: 10, Y1: 10}))
	}
	blocks = append(blocks, block("A longer but lonely line", geometry.Rect{X1: 10, Y1: 10}))

	hf := DetectHeaderFooters(blocks, 10, DefaultConfig())
	assert.Empty(t, hf)
}

func TestDetectHeaderFooters_IgnoresNoiseBlocks(t *testing.T) {
	blocks := document(9, 0, "")
	for range 9 {
		blocks = append(blocks, block("iv", geometry.Rect{X1: 10, Y1: 10}))
	}
	hf := DetectHeaderFooters(blocks, 9, DefaultConfig())
	assert.False(t, hf.Contains("iv"))
}

func TestDetectHeaderFooters_ExactMatchOnly(t *testing.T) {
	blocks := document(9, 0, "")
	for p := 1; p <= 9; p++ {
		blocks = append(blocks, block(fmt.Sprintf("Chapter One - %d", p), geometry.Rect{X1: 10, Y1: 10}))
	}
	hf := DetectHeaderFooters(blocks, 9, DefaultConfig())
	assert.Empty(t, hf)
}
