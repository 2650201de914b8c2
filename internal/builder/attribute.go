package builder

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

// AttributeKey derives the stable key for an attribute name: lowercased,
// spaces and dashes replaced with underscores. The derivation is applied
// identically at write and read time, so it must stay deterministic.
func AttributeKey(name string) string {
	key := strings.ToLower(name)
	key = strings.ReplaceAll(key, " ", "_")
	return strings.ReplaceAll(key, "-", "_")
}

// checkKeyCollisions rejects attribute column sets where two differently
// named columns derive the same stable key. Silent disambiguation would make
// the read-time key derivation ambiguous, so this fails fast.
func checkKeyCollisions(columns []string) error {
	byKey := make(map[string]string, len(columns))
	for _, name := range columns {
		key := AttributeKey(name)
		if prev, dup := byKey[key]; dup && prev != name {
			return validationf("attribute columns %q and %q both derive key %q", prev, name, key)
		}
		byKey[key] = name
	}
	return nil
}

// buildAttribute converts one column into a typed attribute. The type is
// decided by the column's declared kind, never by inspecting values: numeric
// kinds become continuous, strings categorical. An unrecognized kind is
// coerced to categorical with a warning.
func buildAttribute(ctx context.Context, st store.Columnar, col table.Column, res *Result) (object.Attribute, error) {
	switch col.Kind() {
	case table.KindFloat64, table.KindInt64, table.KindUint64:
		return buildContinuous(ctx, st, col)
	case table.KindString:
		return buildCategory(ctx, st, col)
	default:
		res.warnf("column %q has unknown kind %s, treating as category", col.Name(), col.Kind())
		return buildCategory(ctx, st, col)
	}
}

func buildContinuous(ctx context.Context, st store.Columnar, col table.Column) (object.Attribute, error) {
	values := table.AsFloat64(col)
	tbl := table.MustNew(&table.Float64Column{ColName: "data", Values: values})
	ref, err := st.SubmitTable(ctx, tbl)
	if err != nil {
		return nil, err
	}
	return &object.ContinuousAttribute{
		Name:          col.Name(),
		Key:           AttributeKey(col.Name()),
		AttributeType: object.AttributeTypeScalar,
		Values:        ref,
	}, nil
}

func buildCategory(ctx context.Context, st store.Columnar, col table.Column) (object.Attribute, error) {
	values := table.AsString(col)
	lookup, codes := encodeCategories(values)

	tableRef, err := submitLookup(ctx, st, lookup)
	if err != nil {
		return nil, err
	}
	codesRef, err := submitCodes(ctx, st, codes)
	if err != nil {
		return nil, err
	}
	return &object.CategoryAttribute{
		Name:          col.Name(),
		Key:           AttributeKey(col.Name()),
		AttributeType: object.AttributeTypeCategory,
		Table:         tableRef,
		Values:        codesRef,
	}, nil
}

// encodeCategories dictionary-encodes a string column. Codes are dense
// integers starting at 1, assigned in first-occurrence order. Missing values
// arrive as the empty string and encode as a category of their own.
func encodeCategories(values []string) (lookup []string, codes []int64) {
	byValue := make(map[string]int64)
	codes = make([]int64, len(values))
	for i, v := range values {
		code, seen := byValue[v]
		if !seen {
			lookup = append(lookup, v)
			code = int64(len(lookup))
			byValue[v] = code
		}
		codes[i] = code
	}
	return lookup, codes
}

func submitLookup(ctx context.Context, st store.Columnar, lookup []string) (object.Reference, error) {
	keys := make([]int64, len(lookup))
	for i := range lookup {
		keys[i] = int64(i + 1)
	}
	tbl := table.MustNew(
		&table.Int64Column{ColName: "key", Values: keys},
		&table.StringColumn{ColName: "value", Values: lookup},
	)
	return st.SubmitTable(ctx, tbl)
}

func submitCodes(ctx context.Context, st store.Columnar, codes []int64) (object.Reference, error) {
	tbl := table.MustNew(&table.Int64Column{ColName: "data", Values: codes})
	return st.SubmitTable(ctx, tbl)
}

// buildAttributes converts the named columns into attributes, skipping the
// excluded set. A failing column is recorded as a warning and omitted; the
// build continues with the remaining attributes.
func buildAttributes(ctx context.Context, st store.Columnar, tbl *table.Table, columns, exclude []string, res *Result) ([]object.Attribute, error) {
	selected := lo.Filter(columns, func(name string, _ int) bool {
		return tbl.HasColumn(name) && !lo.Contains(exclude, name)
	})
	if err := checkKeyCollisions(selected); err != nil {
		return nil, err
	}

	var attrs []object.Attribute
	for _, name := range selected {
		col, _ := tbl.Column(name)
		attr, err := buildAttribute(ctx, st, col, res)
		if err != nil {
			res.warnf("failed to build attribute %q: %v", name, err)
			continue
		}
		attrs = append(attrs, attr)
		res.Attributes = append(res.Attributes, name)
	}
	return attrs, nil
}

// defaultAttributeColumns returns every column not claimed by a geometric or
// semantic role, the fallback when no attribute columns are specified.
func defaultAttributeColumns(tbl *table.Table, used []string) []string {
	return lo.Filter(tbl.Names(), func(name string, _ int) bool {
		return !lo.Contains(used, name)
	})
}
