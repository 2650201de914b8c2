package builder

import (
	"fmt"
	"strings"

	"github.com/geostack-labs/geoforge/internal/table"
)

// MissingColumn names one required column absent from a source table.
type MissingColumn struct {
	Table  string
	Column string
}

func (m MissingColumn) String() string { return m.Table + "." + m.Column }

// ColumnMissingError reports required columns absent from the source tables.
// All missing columns across all required sets are collected before the
// error is returned, never one at a time.
type ColumnMissingError struct {
	Missing []MissingColumn
}

func (e *ColumnMissingError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = m.String()
	}
	return "missing required columns: " + strings.Join(names, ", ")
}

// missingCollector gathers absent columns across tables so a single error
// can report them all.
type missingCollector struct {
	missing []MissingColumn
}

func (c *missingCollector) check(tableName string, tbl *table.Table, columns ...string) {
	for _, name := range tbl.MissingColumns(columns...) {
		c.missing = append(c.missing, MissingColumn{Table: tableName, Column: name})
	}
}

func (c *missingCollector) err() error {
	if len(c.missing) == 0 {
		return nil
	}
	return &ColumnMissingError{Missing: c.missing}
}

// ValidationError reports a violated structural invariant: a non-finite
// bounding volume, an out-of-range segment index, a stable-key collision.
// It aborts the build before anything is persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
