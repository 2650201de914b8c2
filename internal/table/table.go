// Package table provides the in-memory tabular data model consumed by the
// object builders. A Table is an ordered set of named, equal-length columns,
// each holding a single scalar kind.
package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the scalar type of a column.
type Kind int

const (
	KindFloat64 Kind = iota
	KindInt64
	KindUint64
	KindString
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFloat64:
		return "float64"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a dense, named array of a single scalar kind. Missing values are
// NaN for float columns and entries with a false validity flag otherwise.
type Column interface {
	Name() string
	Kind() Kind
	Len() int

	// Missing reports whether the value at row i is absent.
	Missing(i int) bool
}

// Float64Column holds float64 values. NaN marks a missing value.
type Float64Column struct {
	ColName string
	Values  []float64
}

func (c *Float64Column) Name() string       { return c.ColName }
func (c *Float64Column) Kind() Kind         { return KindFloat64 }
func (c *Float64Column) Len() int           { return len(c.Values) }
func (c *Float64Column) Missing(i int) bool { return math.IsNaN(c.Values[i]) }

// Int64Column holds int64 values. A nil Valid slice means every value is set.
type Int64Column struct {
	ColName string
	Values  []int64
	Valid   []bool
}

func (c *Int64Column) Name() string { return c.ColName }
func (c *Int64Column) Kind() Kind   { return KindInt64 }
func (c *Int64Column) Len() int     { return len(c.Values) }
func (c *Int64Column) Missing(i int) bool {
	return c.Valid != nil && !c.Valid[i]
}

// Uint64Column holds uint64 values. A nil Valid slice means every value is set.
type Uint64Column struct {
	ColName string
	Values  []uint64
	Valid   []bool
}

func (c *Uint64Column) Name() string { return c.ColName }
func (c *Uint64Column) Kind() Kind   { return KindUint64 }
func (c *Uint64Column) Len() int     { return len(c.Values) }
func (c *Uint64Column) Missing(i int) bool {
	return c.Valid != nil && !c.Valid[i]
}

// StringColumn holds string values. A nil Valid slice means every value is set.
type StringColumn struct {
	ColName string
	Values  []string
	Valid   []bool
}

func (c *StringColumn) Name() string { return c.ColName }
func (c *StringColumn) Kind() Kind   { return KindString }
func (c *StringColumn) Len() int     { return len(c.Values) }
func (c *StringColumn) Missing(i int) bool {
	return c.Valid != nil && !c.Valid[i]
}

// Table is an ordered sequence of named columns of equal length. Row order is
// meaningful within a table; builders re-sort copies rather than mutating.
type Table struct {
	cols  []Column
	index map[string]int
}

// New creates a table from the given columns. All columns must have distinct
// names and equal lengths.
func New(cols ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, col := range cols {
		if _, dup := t.index[col.Name()]; dup {
			return nil, fmt.Errorf("duplicate column %q", col.Name())
		}
		if len(t.cols) > 0 && col.Len() != t.cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, want %d", col.Name(), col.Len(), t.cols[0].Len())
		}
		t.index[col.Name()] = len(t.cols)
		t.cols = append(t.cols, col)
	}
	return t, nil
}

// MustNew is New for static test fixtures; it panics on error.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count (0 for an empty table).
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Column returns the named column, or false if absent.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Columns returns all columns in declaration order.
func (t *Table) Columns() []Column { return t.cols }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns every name in names that is not a column of t,
// preserving order. An empty result means all names resolve.
func (t *Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// SortBy returns a copy of the table stably sorted ascending by the given key
// columns, compared in order. String columns compare lexically, numeric
// columns numerically; missing values sort first.
func (t *Table) SortBy(keys ...string) (*Table, error) {
	for _, key := range keys {
		if !t.HasColumn(key) {
			return nil, fmt.Errorf("sort key %q is not a column", key)
		}
	}

	perm := make([]int, t.NumRows())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		for _, key := range keys {
			col, _ := t.Column(key)
			if c := compareRows(col, perm[a], perm[b]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	cols := make([]Column, len(t.cols))
	for i, col := range t.cols {
		cols[i] = permuteColumn(col, perm)
	}
	return New(cols...)
}

func compareRows(col Column, a, b int) int {
	am, bm := col.Missing(a), col.Missing(b)
	switch {
	case am && bm:
		return 0
	case am:
		return -1
	case bm:
		return 1
	}

	switch c := col.(type) {
	case *Float64Column:
		return cmpFloat(c.Values[a], c.Values[b])
	case *Int64Column:
		return cmpOrdered(c.Values[a], c.Values[b])
	case *Uint64Column:
		return cmpOrdered(c.Values[a], c.Values[b])
	case *StringColumn:
		return cmpOrdered(c.Values[a], c.Values[b])
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpOrdered[T int64 | uint64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func permuteColumn(col Column, perm []int) Column {
	switch c := col.(type) {
	case *Float64Column:
		values := make([]float64, len(perm))
		for i, p := range perm {
			values[i] = c.Values[p]
		}
		return &Float64Column{ColName: c.ColName, Values: values}
	case *Int64Column:
		values := make([]int64, len(perm))
		for i, p := range perm {
			values[i] = c.Values[p]
		}
		return &Int64Column{ColName: c.ColName, Values: values, Valid: permuteValid(c.Valid, perm)}
	case *Uint64Column:
		values := make([]uint64, len(perm))
		for i, p := range perm {
			values[i] = c.Values[p]
		}
		return &Uint64Column{ColName: c.ColName, Values: values, Valid: permuteValid(c.Valid, perm)}
	case *StringColumn:
		values := make([]string, len(perm))
		for i, p := range perm {
			values[i] = c.Values[p]
		}
		return &StringColumn{ColName: c.ColName, Values: values, Valid: permuteValid(c.Valid, perm)}
	default:
		panic(fmt.Sprintf("unknown column type %T", col))
	}
}

func permuteValid(valid []bool, perm []int) []bool {
	if valid == nil {
		return nil
	}
	out := make([]bool, len(perm))
	for i, p := range perm {
		out[i] = valid[p]
	}
	return out
}

// AsFloat64 converts a column to float64 values. Missing and non-parseable
// entries become NaN; this is the continuous-attribute coercion and is never
// an error.
func AsFloat64(col Column) []float64 {
	out := make([]float64, col.Len())
	switch c := col.(type) {
	case *Float64Column:
		copy(out, c.Values)
	case *Int64Column:
		for i, v := range c.Values {
			if c.Missing(i) {
				out[i] = math.NaN()
				continue
			}
			out[i] = float64(v)
		}
	case *Uint64Column:
		for i, v := range c.Values {
			if c.Missing(i) {
				out[i] = math.NaN()
				continue
			}
			out[i] = float64(v)
		}
	case *StringColumn:
		for i, v := range c.Values {
			if c.Missing(i) {
				out[i] = math.NaN()
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				out[i] = math.NaN()
				continue
			}
			out[i] = f
		}
	default:
		for i := range out {
			out[i] = math.NaN()
		}
	}
	return out
}

// AsString converts a column to string values. Missing entries become the
// empty string, which categorical encoding treats as a category of its own.
func AsString(col Column) []string {
	out := make([]string, col.Len())
	switch c := col.(type) {
	case *Float64Column:
		for i, v := range c.Values {
			if c.Missing(i) {
				continue
			}
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	case *Int64Column:
		for i, v := range c.Values {
			if c.Missing(i) {
				continue
			}
			out[i] = strconv.FormatInt(v, 10)
		}
	case *Uint64Column:
		for i, v := range c.Values {
			if c.Missing(i) {
				continue
			}
			out[i] = strconv.FormatUint(v, 10)
		}
	case *StringColumn:
		for i, v := range c.Values {
			if c.Missing(i) {
				continue
			}
			out[i] = v
		}
	}
	return out
}
