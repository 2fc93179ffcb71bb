// Package layout turns positioned text fragments into per-page content boxes:
// fragment clustering, running header/footer detection and page aggregation.
package layout

import (
	"github.com/MeKo-Tech/pocrop/internal/geometry"
)

// Kind is the granularity of a fragment as reported by the layout reader.
type Kind int

const (
	// KindOther marks fragments that are neither text boxes nor text lines.
	KindOther Kind = iota
	// KindBox is a block-level fragment spanning one or more lines.
	KindBox
	// KindLine is a single text line.
	KindLine
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindLine:
		return "line"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Recognized reports whether fragments of this kind take part in clustering.
func (k Kind) Recognized() bool {
	return k == KindBox || k == KindLine
}

// Fragment is one atomic positioned text unit of a page.
type Fragment struct {
	Page int           `json:"page"`
	BBox geometry.Rect `json:"bbox"`
	Text string        `json:"text"`
	Kind Kind          `json:"kind"`
}

// KindTally counts recognized fragment kinds over a document.
type KindTally struct {
	Box  int `json:"box"`
	Line int `json:"line"`
}

// Observe counts k if it is a recognized kind. It reports whether k was counted.
func (t *KindTally) Observe(k Kind) bool {
	switch k {
	case KindBox:
		t.Box++
	case KindLine:
		t.Line++
	default:
		return false
	}
	return true
}

// Add folds another tally into t.
func (t *KindTally) Add(o KindTally) {
	t.Box += o.Box
	t.Line += o.Line
}

// Total returns the number of counted fragments.
func (t KindTally) Total() int {
	return t.Box + t.Line
}

// Dominant returns the most frequent recognized kind. Ties, including an
// empty tally, resolve to KindBox.
func (t KindTally) Dominant() Kind {
	if t.Line > t.Box {
		return KindLine
	}
	return KindBox
}
