package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/MeKo-Tech/pocrop/internal/pdf"
	"github.com/MeKo-Tech/pocrop/internal/testutil"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCropDryRun(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteTextPDF(t, dir, "book.pdf", testutil.BookPages(4))
	out := filepath.Join(dir, "cropped.pdf")

	stdout, _, err := executeCommand(t, "crop", in, out, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "4 pages")
	assert.Contains(t, stdout, "odd pages:")
	assert.Contains(t, stdout, "even pages:")
	assert.NoFileExists(t, out)
}

func TestCropWritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteTextPDF(t, dir, "book.pdf", testutil.BookPages(4))
	out := filepath.Join(dir, "cropped.pdf")

	stdout, _, err := executeCommand(t, "crop", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)
	require.FileExists(t, out)

	n, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestCropBlankDocumentFails(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteTextPDF(t, dir, "blank.pdf", []testutil.PDFPage{testutil.LetterPage(), testutil.LetterPage()})
	out := filepath.Join(dir, "cropped.pdf")

	_, _, err := executeCommand(t, "crop", in, out)
	require.Error(t, err)
	require.ErrorIs(t, err, margins.ErrNoContent)
	assert.Contains(t, err.Error(), in)
	assert.Contains(t, err.Error(), "no extractable text")
	assert.NoFileExists(t, out)
}

func TestCropMissingInput(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCommand(t, "crop", filepath.Join(dir, "missing.pdf"), filepath.Join(dir, "out.pdf"))
	var accessErr *pdf.InputAccessError
	require.ErrorAs(t, err, &accessErr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCropRequiresTwoArgs(t *testing.T) {
	_, _, err := executeCommand(t, "crop", "only-one.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestCropWritesMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteTextPDF(t, dir, "book.pdf", testutil.BookPages(2))
	prom := filepath.Join(dir, "pocrop.prom")

	_, _, err := executeCommand(t, "crop", in, filepath.Join(dir, "out.pdf"), "--dry-run", "--metrics-textfile", prom)
	require.NoError(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pocrop_runs_total{status="ok"} 1`)
	assert.Contains(t, string(data), "pocrop_pages_total 2")
}

func TestCropFailureStillWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteTextPDF(t, dir, "blank.pdf", []testutil.PDFPage{testutil.LetterPage()})
	prom := filepath.Join(dir, "pocrop.prom")

	_, _, err := executeCommand(t, "crop", in, filepath.Join(dir, "out.pdf"), "--metrics-textfile", prom)
	require.Error(t, err)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pocrop_runs_total{status="no_content"} 1`)
}
