package margins

import (
	"errors"
	"fmt"
)

// ErrNoContent matches any *NoContentError via errors.Is.
var ErrNoContent = errors.New("no usable content")

// NoContentError reports that no page produced a qualifying content box, so no
// crop rectangle can be derived.
type NoContentError struct {
	// Document names the input, when known.
	Document string
	// Reason describes which parity group was empty.
	Reason string
}

func (e *NoContentError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("%s: %s", ErrNoContent, e.Reason)
	}
	return fmt.Sprintf("%s in %q: %s", ErrNoContent, e.Document, e.Reason)
}

// Is makes errors.Is(err, ErrNoContent) succeed.
func (e *NoContentError) Is(target error) bool {
	return target == ErrNoContent
}
