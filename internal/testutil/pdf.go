package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// GlyphWidth is the advance of every character of the synthetic font, in
// thousandths of the font size.
const GlyphWidth = 600

// TextRun is one line of text starting at a baseline position.
type TextRun struct {
	X, Y float64
	Size float64
	Text string
}

// Width returns the rendered width of the run.
func (r TextRun) Width() float64 {
	return float64(len(r.Text)) * GlyphWidth / 1000 * r.Size
}

// PDFPage describes one synthetic page.
type PDFPage struct {
	Width, Height float64
	Runs          []TextRun
}

// LetterPage returns a US letter page carrying runs.
func LetterPage(runs ...TextRun) PDFPage {
	return PDFPage{Width: 612, Height: 792, Runs: runs}
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// BuildTextPDF renders pages into a minimal PDF using the monospaced Courier
// standard font. Only ASCII text is supported.
func BuildTextPDF(pages []PDFPage) []byte {
	var objects []string

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
	)

	widths := make([]string, 95)
	for i := range widths {
		widths[i] = fmt.Sprint(GlyphWidth)
	}
	objects = append(objects, fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " ")))

	for i, p := range pages {
		var content strings.Builder
		for _, run := range p.Runs {
			fmt.Fprintf(&content, "BT /F1 %.2f Tf %.2f %.2f Td (%s) Tj ET\n", run.Size, run.X, run.Y, escapePDFString(run.Text))
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				p.Width, p.Height, 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// WriteTextPDF writes a synthetic PDF into dir, creating it if needed, and
// returns its path.
func WriteTextPDF(t *testing.T, dir, name string, pages []PDFPage) string {
	t.Helper()

	require.NoError(t, EnsureDir(dir))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, BuildTextPDF(pages), 0o600))
	return path
}

// BookPages returns count letter pages, each with a two-line paragraph whose
// left edge alternates between odd and even pages, and a running footer.
func BookPages(count int) []PDFPage {
	pages := make([]PDFPage, count)
	for i := range pages {
		n := i + 1
		x := 72.0
		if n%2 == 0 {
			x = 90
		}
		pages[i] = LetterPage(
			TextRun{X: x, Y: 700, Size: 12, Text: fmt.Sprintf("Paragraph on page %d starts here", n)},
			TextRun{X: x, Y: 686, Size: 12, Text: "and continues below"},
			TextRun{X: 270, Y: 40, Size: 10, Text: "Running Footer"},
		)
	}
	return pages
}
