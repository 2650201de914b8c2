package builder

import (
	"fmt"

	"github.com/geostack-labs/geoforge/internal/object"
)

// Result accumulates the non-fatal outcome of one build call: warnings,
// per-table row counts, the attribute names that made it into the tree, and
// the computed bounding volume. It is a plain value returned alongside the
// object, so concurrent builds share nothing.
type Result struct {
	Warnings    []string
	Rows        map[string]int
	Attributes  []string
	BoundingBox *object.BoundingBox
}

func newResult() *Result {
	return &Result{Rows: make(map[string]int)}
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
