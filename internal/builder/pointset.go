// Package builder assembles validated geoscience object trees from tabular
// input. Each entity builder is a pure transformation from input tables and
// a column mapping to an entity tree plus a result value; no builder state
// survives a call.
package builder

import (
	"context"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

// PointsetSpec maps input columns to the point-set roles.
type PointsetSpec struct {
	Name        string
	Description string
	Tags        map[string]string
	CRS         string

	XColumn string
	YColumn string
	ZColumn string

	// AttributeColumns selects attribute source columns. Nil means every
	// column not used as a coordinate.
	AttributeColumns []string
}

// BuildPointset assembles a Pointset from one table of coordinates and
// attributes.
func BuildPointset(ctx context.Context, st store.Columnar, tbl *table.Table, spec PointsetSpec) (*object.Pointset, *Result, error) {
	res := newResult()
	res.Rows["points"] = tbl.NumRows()

	coordCols := []string{spec.XColumn, spec.YColumn, spec.ZColumn}
	var mc missingCollector
	mc.check("points", tbl, coordCols...)
	mc.check("points", tbl, spec.AttributeColumns...)
	if err := mc.err(); err != nil {
		return nil, res, err
	}

	box, valid, err := boundingVolume(tbl, spec.XColumn, spec.YColumn, spec.ZColumn)
	if err != nil {
		return nil, res, err
	}
	res.BoundingBox = &box
	if valid < tbl.NumRows() {
		res.warnf("%d of %d rows have missing coordinates", tbl.NumRows()-valid, tbl.NumRows())
	}

	coordsRef, err := submitCoordinates(ctx, st, tbl, spec.XColumn, spec.YColumn, spec.ZColumn)
	if err != nil {
		return nil, res, err
	}

	attrCols := spec.AttributeColumns
	if attrCols == nil {
		attrCols = defaultAttributeColumns(tbl, coordCols)
	}
	attrs, err := buildAttributes(ctx, st, tbl, attrCols, coordCols, res)
	if err != nil {
		return nil, res, err
	}

	ps := &object.Pointset{
		Base: object.Base{
			Schema:                    object.SchemaPointset,
			Name:                      spec.Name,
			Description:               spec.Description,
			Tags:                      spec.Tags,
			BoundingBox:               box,
			CoordinateReferenceSystem: crsOrDefault(spec.CRS),
		},
		Locations: object.PointsetLocations{
			Coordinates: coordsRef,
			Attributes:  attrs,
		},
	}
	return ps, res, nil
}

func crsOrDefault(crs string) string {
	if crs == "" {
		return "unspecified"
	}
	return crs
}
