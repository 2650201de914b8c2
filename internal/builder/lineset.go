package builder

import (
	"context"
	"math"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

// LineSegmentsSpec maps input columns to the line-network roles. Vertices
// and segments come from separate tables; segment rows reference vertex rows
// by position.
type LineSegmentsSpec struct {
	Name        string
	Description string
	Tags        map[string]string
	CRS         string

	XColumn string
	YColumn string
	ZColumn string

	StartIndexColumn string
	EndIndexColumn   string

	VertexAttributeColumns  []string
	SegmentAttributeColumns []string
}

// BuildLineSegments assembles a LineSegments object. Every segment index is
// range-checked against the vertex count before anything is persisted.
func BuildLineSegments(ctx context.Context, st store.Columnar, vertices, segments *table.Table, spec LineSegmentsSpec) (*object.LineSegments, *Result, error) {
	res := newResult()
	res.Rows["vertices"] = vertices.NumRows()
	res.Rows["segments"] = segments.NumRows()

	coordCols := []string{spec.XColumn, spec.YColumn, spec.ZColumn}
	indexCols := []string{spec.StartIndexColumn, spec.EndIndexColumn}

	var mc missingCollector
	mc.check("vertices", vertices, coordCols...)
	mc.check("vertices", vertices, spec.VertexAttributeColumns...)
	mc.check("segments", segments, indexCols...)
	mc.check("segments", segments, spec.SegmentAttributeColumns...)
	if err := mc.err(); err != nil {
		return nil, res, err
	}

	starts, err := indexValues(segments, spec.StartIndexColumn, vertices.NumRows())
	if err != nil {
		return nil, res, err
	}
	ends, err := indexValues(segments, spec.EndIndexColumn, vertices.NumRows())
	if err != nil {
		return nil, res, err
	}

	box, _, err := boundingVolume(vertices, spec.XColumn, spec.YColumn, spec.ZColumn)
	if err != nil {
		return nil, res, err
	}
	res.BoundingBox = &box

	verticesRef, err := submitCoordinates(ctx, st, vertices, spec.XColumn, spec.YColumn, spec.ZColumn)
	if err != nil {
		return nil, res, err
	}
	indicesRef, err := submitIndices(ctx, st, starts, ends)
	if err != nil {
		return nil, res, err
	}

	vertexAttrCols := spec.VertexAttributeColumns
	if vertexAttrCols == nil {
		vertexAttrCols = defaultAttributeColumns(vertices, coordCols)
	}
	vertexAttrs, err := buildAttributes(ctx, st, vertices, vertexAttrCols, coordCols, res)
	if err != nil {
		return nil, res, err
	}

	segmentAttrCols := spec.SegmentAttributeColumns
	if segmentAttrCols == nil {
		segmentAttrCols = defaultAttributeColumns(segments, indexCols)
	}
	segmentAttrs, err := buildAttributes(ctx, st, segments, segmentAttrCols, indexCols, res)
	if err != nil {
		return nil, res, err
	}

	ls := &object.LineSegments{
		Base: object.Base{
			Schema:                    object.SchemaLineSegments,
			Name:                      spec.Name,
			Description:               spec.Description,
			Tags:                      spec.Tags,
			BoundingBox:               box,
			CoordinateReferenceSystem: crsOrDefault(spec.CRS),
		},
		Segments: object.Segments{
			Vertices: object.Vertices{Reference: verticesRef, Attributes: vertexAttrs},
			Indices:  object.Indices{Reference: indicesRef, Attributes: segmentAttrs},
		},
	}
	return ls, res, nil
}

// indexValues reads a segment index column, requiring integral values in
// [0, vertexCount-1]. Missing or out-of-range entries are hard failures.
func indexValues(tbl *table.Table, name string, vertexCount int) ([]uint64, error) {
	col, _ := tbl.Column(name)
	raw := table.AsFloat64(col)
	out := make([]uint64, len(raw))
	for i, v := range raw {
		if math.IsNaN(v) {
			return nil, validationf("segment index column %q: row %d is missing", name, i)
		}
		if v != math.Trunc(v) || v < 0 {
			return nil, validationf("segment index column %q: row %d has non-index value %g", name, i, v)
		}
		if int(v) > vertexCount-1 {
			return nil, validationf("segment index column %q: row %d references vertex %d, max valid index is %d",
				name, i, int(v), vertexCount-1)
		}
		out[i] = uint64(v)
	}
	return out, nil
}
