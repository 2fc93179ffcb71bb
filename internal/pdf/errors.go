package pdf

import (
	"errors"
	"fmt"
)

// ErrEncrypted is returned when a document is encrypted and no usable
// credentials were supplied.
var ErrEncrypted = errors.New("document is encrypted")

// InputAccessError reports that a document or one of its pages could not be read.
type InputAccessError struct {
	Path string
	// Page is the 1-based page number, or 0 for document-level failures.
	Page int
	Err  error
}

func (e *InputAccessError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("cannot read %s (page %d): %v", e.Path, e.Page, e.Err)
	}
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *InputAccessError) Unwrap() error {
	return e.Err
}
