// Package pdf adapts PDF documents to the layout model: it reads positioned
// glyphs and page geometry, and applies inferred crop rectangles.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/dslipak/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ReaderConfig holds glyph grouping settings.
type ReaderConfig struct {
	// RowTolerance is the maximum baseline difference, in points, of glyphs on one row.
	RowTolerance float64
	// ParagraphGap is the maximum vertical gap between rows of one paragraph,
	// in multiples of the font size.
	ParagraphGap float64
	Credentials  *PasswordCredentials
}

// DefaultReaderConfig returns the default reader settings.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		RowTolerance: 2.0,
		ParagraphGap: 1.5,
	}
}

// Validate checks the reader configuration.
func (c ReaderConfig) Validate() error {
	if c.RowTolerance < 0 {
		return fmt.Errorf("invalid row tolerance: %.2f (must be >= 0)", c.RowTolerance)
	}
	if c.ParagraphGap < 0 {
		return fmt.Errorf("invalid paragraph gap: %.2f (must be >= 0)", c.ParagraphGap)
	}
	return nil
}

// Reader turns PDF files into margins.Document values.
type Reader struct {
	config    ReaderConfig
	decrypter *Decrypter
}

// NewReader creates a reader with the given configuration.
func NewReader(config ReaderConfig) *Reader {
	return &Reader{config: config, decrypter: NewDecrypter(config.Credentials)}
}

// Read extracts the text layout of every page in path. Failures are reported
// as *InputAccessError, cancellation as ctx.Err().
func (r *Reader) Read(ctx context.Context, path string) (*margins.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &InputAccessError{Path: path, Err: err}
	}

	working, cleanup, err := r.decrypter.Prepare(path)
	defer cleanup()
	if err != nil {
		return nil, &InputAccessError{Path: path, Err: err}
	}

	dims, err := api.PageDimsFile(working)
	if err != nil {
		return nil, &InputAccessError{Path: path, Err: fmt.Errorf("page geometry: %w", err)}
	}

	reader, err := pdf.Open(working)
	if err != nil {
		return nil, &InputAccessError{Path: path, Err: err}
	}
	n := reader.NumPage()
	if n != len(dims) {
		return nil, &InputAccessError{Path: path, Err: fmt.Errorf("page count mismatch: %d content pages, %d page boxes", n, len(dims))}
	}

	doc := &margins.Document{Name: path, Pages: make([]margins.Page, 0, n)}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		glyphs, err := pageGlyphs(reader, i)
		if err != nil {
			return nil, &InputAccessError{Path: path, Page: i, Err: err}
		}
		doc.Pages = append(doc.Pages, margins.Page{
			Number:    i,
			MediaBox:  geometry.Rect{X1: dims[i-1].Width, Y1: dims[i-1].Height},
			Fragments: buildFragments(i, glyphs, r.config.RowTolerance, r.config.ParagraphGap),
		})
	}

	slog.Debug("Read document", "document", path, "pages", n, "fragments", doc.FragmentCount())
	return doc, nil
}

// pageGlyphs returns the glyphs of page n. Content stream parser panics are
// returned as errors.
func pageGlyphs(reader *pdf.Reader, n int) (glyphs []Glyph, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			glyphs = nil
			err = fmt.Errorf("malformed content stream: %v", rec)
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return nil, errors.New("page object is missing")
	}

	content := page.Content()
	glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return glyphs, nil
}
