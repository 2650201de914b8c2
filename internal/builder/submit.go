package builder

import (
	"context"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

// submitFloats persists float64 columns under the given output names, one
// slice per name. Geometry payloads always travel as float64.
func submitFloats(ctx context.Context, st store.Columnar, names []string, cols ...[]float64) (object.Reference, error) {
	out := make([]table.Column, len(cols))
	for i := range cols {
		out[i] = &table.Float64Column{ColName: names[i], Values: cols[i]}
	}
	tbl, err := table.New(out...)
	if err != nil {
		return object.Reference{}, err
	}
	return st.SubmitTable(ctx, tbl)
}

// submitCoordinates persists the x/y/z coordinate triple of a table.
func submitCoordinates(ctx context.Context, st store.Columnar, tbl *table.Table, xCol, yCol, zCol string) (object.Reference, error) {
	cx, _ := tbl.Column(xCol)
	cy, _ := tbl.Column(yCol)
	cz, _ := tbl.Column(zCol)
	return submitFloats(ctx, st, []string{"x", "y", "z"},
		table.AsFloat64(cx), table.AsFloat64(cy), table.AsFloat64(cz))
}

// submitIndices persists a pair of uint64 index columns.
func submitIndices(ctx context.Context, st store.Columnar, starts, ends []uint64) (object.Reference, error) {
	tbl := table.MustNew(
		&table.Uint64Column{ColName: "data1", Values: starts},
		&table.Uint64Column{ColName: "data2", Values: ends},
	)
	return st.SubmitTable(ctx, tbl)
}
