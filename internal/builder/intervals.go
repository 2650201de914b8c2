package builder

import (
	"context"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

// DownholeIntervalsSpec maps input columns to the flat-intervals roles.
// Every row is a complete interval with precomputed start, end and midpoint
// coordinates, so no grouping index is involved.
type DownholeIntervalsSpec struct {
	Name        string
	Description string
	Tags        map[string]string
	CRS         string

	HoleIDColumn string
	FromColumn   string
	ToColumn     string

	StartXColumn, StartYColumn, StartZColumn string
	EndXColumn, EndYColumn, EndZColumn       string
	MidXColumn, MidYColumn, MidZColumn       string

	AttributeColumns []string
	IsComposited     bool
}

func (s DownholeIntervalsSpec) roleColumns() []string {
	return []string{
		s.HoleIDColumn, s.FromColumn, s.ToColumn,
		s.StartXColumn, s.StartYColumn, s.StartZColumn,
		s.EndXColumn, s.EndYColumn, s.EndZColumn,
		s.MidXColumn, s.MidYColumn, s.MidZColumn,
	}
}

// BuildDownholeIntervals assembles a DownholeIntervals object from one flat
// interval table. The bounding volume is computed from the midpoint
// coordinates specifically.
func BuildDownholeIntervals(ctx context.Context, st store.Columnar, tbl *table.Table, spec DownholeIntervalsSpec) (*object.DownholeIntervals, *Result, error) {
	res := newResult()
	res.Rows["intervals"] = tbl.NumRows()

	roles := spec.roleColumns()
	var mc missingCollector
	mc.check("intervals", tbl, roles...)
	mc.check("intervals", tbl, spec.AttributeColumns...)
	if err := mc.err(); err != nil {
		return nil, res, err
	}

	box, _, err := boundingVolume(tbl, spec.MidXColumn, spec.MidYColumn, spec.MidZColumn)
	if err != nil {
		return nil, res, err
	}
	res.BoundingBox = &box

	startRef, err := submitCoordinates(ctx, st, tbl, spec.StartXColumn, spec.StartYColumn, spec.StartZColumn)
	if err != nil {
		return nil, res, err
	}
	endRef, err := submitCoordinates(ctx, st, tbl, spec.EndXColumn, spec.EndYColumn, spec.EndZColumn)
	if err != nil {
		return nil, res, err
	}
	midRef, err := submitCoordinates(ctx, st, tbl, spec.MidXColumn, spec.MidYColumn, spec.MidZColumn)
	if err != nil {
		return nil, res, err
	}

	fromCol, _ := tbl.Column(spec.FromColumn)
	toCol, _ := tbl.Column(spec.ToColumn)
	fromToRef, err := submitFloats(ctx, st, []string{"data1", "data2"},
		table.AsFloat64(fromCol), table.AsFloat64(toCol))
	if err != nil {
		return nil, res, err
	}

	idCol, _ := tbl.Column(spec.HoleIDColumn)
	ids := table.AsString(idCol)
	lookup, codes := encodeCategories(ids)
	lookupRef, err := submitLookup(ctx, st, lookup)
	if err != nil {
		return nil, res, err
	}
	codesRef, err := submitCodes(ctx, st, codes)
	if err != nil {
		return nil, res, err
	}
	res.Rows["holes"] = len(lookup)

	attrCols := spec.AttributeColumns
	if attrCols == nil {
		attrCols = defaultAttributeColumns(tbl, roles)
	}
	attrs, err := buildAttributes(ctx, st, tbl, attrCols, roles, res)
	if err != nil {
		return nil, res, err
	}

	di := &object.DownholeIntervals{
		Base: object.Base{
			Schema:                    object.SchemaDownholeIntervals,
			Name:                      spec.Name,
			Description:               spec.Description,
			Tags:                      spec.Tags,
			BoundingBox:               box,
			CoordinateReferenceSystem: crsOrDefault(spec.CRS),
		},
		IsComposited: spec.IsComposited,
		Start:        object.Locations{Coordinates: startRef},
		End:          object.Locations{Coordinates: endRef},
		MidPoints:    object.Locations{Coordinates: midRef},
		FromTo: object.FromToDepths{
			Intervals: object.Intervals{StartAndEnd: fromToRef},
		},
		HoleID: object.CategoryData{
			Table:  lookupRef,
			Values: codesRef,
		},
		Attributes: attrs,
	}
	return di, res, nil
}
