package pdf

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pocrop/internal/geometry"
	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// cropFile is api.CropFile; tests replace it to simulate write failures.
var cropFile = api.CropFile

// ErrDegenerateRect is returned when a crop rectangle has no area.
var ErrDegenerateRect = errors.New("crop rectangle has zero area")

// Cropper writes crop boxes into PDF files.
type Cropper struct {
	credentials *PasswordCredentials
}

// NewCropper creates a cropper. creds may be nil.
func NewCropper(creds *PasswordCredentials) *Cropper {
	return &Cropper{credentials: creds}
}

// BoxDescription renders r in the pdfcpu box syntax.
func BoxDescription(r geometry.Rect) string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.X0, r.Y0, r.X1, r.Y1)
}

func parseBox(r geometry.Rect) (*model.Box, error) {
	if r.Width() <= 0 || r.Height() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDegenerateRect, r)
	}
	box, err := model.ParseBox(BoxDescription(r), types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to parse crop box: %w", err)
	}
	return box, nil
}

// Apply crops in into out: odd pages to res.Odd, even pages to res.Even.
// OUTPUT is only written when both crops succeed.
func (c *Cropper) Apply(in, out string, res *margins.Result) error {
	if res == nil {
		return errors.New("no inference result")
	}
	rects := res.Rects()
	oddBox, err := parseBox(rects.Odd)
	if err != nil {
		return fmt.Errorf("odd pages: %w", err)
	}
	evenBox, err := parseBox(rects.Even)
	if err != nil {
		return fmt.Errorf("even pages: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if !c.credentials.Empty() {
		conf.UserPW = c.credentials.UserPassword
		conf.OwnerPW = c.credentials.OwnerPassword
	}

	// Both crops go to a sibling temp file that replaces OUTPUT only once
	// every page has been cropped.
	tmp, err := os.CreateTemp(filepath.Dir(out), ".pocrop-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create temporary output: %w", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove temporary output", "path", tmpName, "error", err)
		}
	}()

	if err := cropFile(in, tmpName, []string{"odd"}, oddBox, conf); err != nil {
		return &InputAccessError{Path: in, Err: fmt.Errorf("failed to crop odd pages: %w", err)}
	}
	if res.PageCount > 1 {
		if err := cropFile(tmpName, tmpName, []string{"even"}, evenBox, conf); err != nil {
			return &InputAccessError{Path: in, Err: fmt.Errorf("failed to crop even pages: %w", err)}
		}
	}
	if err := os.Rename(tmpName, out); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	slog.Info("Cropped document", "input", in, "output", out, "pages", res.PageCount,
		"odd", rects.Odd.String(), "even", rects.Even.String())
	return nil
}
