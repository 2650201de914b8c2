package builder

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

// IntervalCollectionSpec describes one named interval collection (assays,
// geology, ...) attached to a hole collection.
type IntervalCollectionSpec struct {
	Name             string
	Table            *table.Table
	HoleIDColumn     string
	FromColumn       string
	ToColumn         string
	AttributeColumns []string
}

// DownholeCollectionSpec maps collar and survey columns to the hole
// collection roles.
type DownholeCollectionSpec struct {
	Name        string
	Description string
	Tags        map[string]string
	CRS         string

	CollarIDColumn string
	SurveyIDColumn string
	XColumn        string
	YColumn        string
	ZColumn        string
	DepthColumn    string
	AzimuthColumn  string
	DipColumn      string

	// MaxDepthColumn names a collar column with final hole depths. When
	// empty, max depth is derived per hole from the survey rows, zero for
	// holes with no survey.
	MaxDepthColumn string

	// InvertDip negates every survey dip value before persistence, for
	// sources using the positive-down convention.
	InvertDip bool

	Intervals []IntervalCollectionSpec
}

// BuildDownholeCollection assembles a DownholeCollection from collar and
// survey tables plus any number of interval collections. Collar and survey
// are independently stable-sorted by their hole-id columns before the
// grouping indexes are built.
func BuildDownholeCollection(ctx context.Context, st store.Columnar, collar, survey *table.Table, spec DownholeCollectionSpec) (*object.DownholeCollection, *Result, error) {
	res := newResult()
	res.Rows["collars"] = collar.NumRows()
	res.Rows["surveys"] = survey.NumRows()

	var mc missingCollector
	mc.check("collar", collar, spec.CollarIDColumn, spec.XColumn, spec.YColumn, spec.ZColumn)
	if spec.MaxDepthColumn != "" {
		mc.check("collar", collar, spec.MaxDepthColumn)
	}
	mc.check("survey", survey, spec.SurveyIDColumn, spec.DepthColumn, spec.AzimuthColumn, spec.DipColumn)
	for _, ic := range spec.Intervals {
		mc.check(ic.Name, ic.Table, ic.HoleIDColumn, ic.FromColumn, ic.ToColumn)
		mc.check(ic.Name, ic.Table, ic.AttributeColumns...)
	}
	if err := mc.err(); err != nil {
		return nil, res, err
	}

	collar, err := collar.SortBy(spec.CollarIDColumn)
	if err != nil {
		return nil, res, err
	}
	survey, err = survey.SortBy(spec.SurveyIDColumn)
	if err != nil {
		return nil, res, err
	}

	collarIDCol, _ := collar.Column(spec.CollarIDColumn)
	collarIDs := table.AsString(collarIDCol)
	holeLookup := lo.Uniq(collarIDs)
	res.Rows["holes"] = len(holeLookup)

	box, _, err := boundingVolume(collar, spec.XColumn, spec.YColumn, spec.ZColumn)
	if err != nil {
		return nil, res, err
	}
	res.BoundingBox = &box

	location, err := buildLocation(ctx, st, collar, survey, holeLookup, collarIDs, spec, res)
	if err != nil {
		return nil, res, err
	}

	var collections []object.IntervalTable
	for _, ic := range spec.Intervals {
		coll, err := buildIntervalCollection(ctx, st, ic, holeLookup, res)
		if err != nil {
			return nil, res, err
		}
		collections = append(collections, *coll)
		res.Rows["intervals:"+ic.Name] = ic.Table.NumRows()
	}

	dc := &object.DownholeCollection{
		Base: object.Base{
			Schema:                    object.SchemaDownholeCollection,
			Name:                      spec.Name,
			Description:               spec.Description,
			Tags:                      spec.Tags,
			BoundingBox:               box,
			CoordinateReferenceSystem: crsOrDefault(spec.CRS),
		},
		Location:    *location,
		Collections: collections,
	}
	return dc, res, nil
}

func buildLocation(ctx context.Context, st store.Columnar, collar, survey *table.Table, holeLookup, collarIDs []string, spec DownholeCollectionSpec, res *Result) (*object.DownholeLocation, error) {
	coordsRef, err := submitCoordinates(ctx, st, collar, spec.XColumn, spec.YColumn, spec.ZColumn)
	if err != nil {
		return nil, err
	}

	surveyIDCol, _ := survey.Column(spec.SurveyIDColumn)
	surveyIDs := table.AsString(surveyIDCol)
	depthCol, _ := survey.Column(spec.DepthColumn)
	depths := table.AsFloat64(depthCol)

	maxDepths, err := collarMaxDepths(collar, collarIDs, surveyIDs, depths, spec)
	if err != nil {
		return nil, err
	}
	// Convention: final, target and current depth all carry the max depth.
	distancesRef, err := submitFloats(ctx, st, []string{"final", "target", "current"}, maxDepths, maxDepths, maxDepths)
	if err != nil {
		return nil, err
	}

	lookupRef, err := submitLookup(ctx, st, holeLookup)
	if err != nil {
		return nil, err
	}
	codeOf := make(map[string]int64, len(holeLookup))
	for i, id := range holeLookup {
		codeOf[id] = int64(i + 1)
	}
	collarCodes := make([]int64, len(collarIDs))
	for i, id := range collarIDs {
		collarCodes[i] = codeOf[id]
	}
	codesRef, err := submitCodes(ctx, st, collarCodes)
	if err != nil {
		return nil, err
	}

	holesRef, err := submitGroupIndex(ctx, st, groupIndex(surveyIDs, holeLookup, res))
	if err != nil {
		return nil, err
	}

	azimuthCol, _ := survey.Column(spec.AzimuthColumn)
	dipCol, _ := survey.Column(spec.DipColumn)
	dips := table.AsFloat64(dipCol)
	if spec.InvertDip {
		for i := range dips {
			dips[i] = -dips[i]
		}
	}
	pathRef, err := submitFloats(ctx, st, []string{"distance", "azimuth", "dip"},
		depths, table.AsFloat64(azimuthCol), dips)
	if err != nil {
		return nil, err
	}

	return &object.DownholeLocation{
		Coordinates: coordsRef,
		Distances:   distancesRef,
		HoleID: object.CategoryData{
			Table:  lookupRef,
			Values: codesRef,
		},
		Holes: holesRef,
		Path:  pathRef,
	}, nil
}

// collarMaxDepths returns one max depth per collar row, either read from the
// declared collar column or derived as the deepest survey reading for that
// hole, zero when the hole has no survey rows.
func collarMaxDepths(collar *table.Table, collarIDs, surveyIDs []string, depths []float64, spec DownholeCollectionSpec) ([]float64, error) {
	if spec.MaxDepthColumn != "" {
		col, _ := collar.Column(spec.MaxDepthColumn)
		return table.AsFloat64(col), nil
	}

	deepest := make(map[string]float64, len(collarIDs))
	for i, id := range surveyIDs {
		if math.IsNaN(depths[i]) {
			continue
		}
		if d, ok := deepest[id]; !ok || depths[i] > d {
			deepest[id] = depths[i]
		}
	}
	out := make([]float64, len(collarIDs))
	for i, id := range collarIDs {
		out[i] = deepest[id] // zero for holes with no survey rows
	}
	return out, nil
}

func buildIntervalCollection(ctx context.Context, st store.Columnar, spec IntervalCollectionSpec, holeLookup []string, res *Result) (*object.IntervalTable, error) {
	tbl, err := spec.Table.SortBy(spec.HoleIDColumn, spec.FromColumn)
	if err != nil {
		return nil, err
	}

	fromCol, _ := tbl.Column(spec.FromColumn)
	toCol, _ := tbl.Column(spec.ToColumn)
	intervalsRef, err := submitFloats(ctx, st, []string{"data1", "data2"},
		table.AsFloat64(fromCol), table.AsFloat64(toCol))
	if err != nil {
		return nil, err
	}

	idCol, _ := tbl.Column(spec.HoleIDColumn)
	holesRef, err := submitGroupIndex(ctx, st, groupIndex(table.AsString(idCol), holeLookup, res))
	if err != nil {
		return nil, err
	}

	exclude := []string{spec.HoleIDColumn, spec.FromColumn, spec.ToColumn}
	attrCols := spec.AttributeColumns
	if attrCols == nil {
		attrCols = defaultAttributeColumns(tbl, exclude)
	}
	attrs, err := buildAttributes(ctx, st, tbl, attrCols, exclude, res)
	if err != nil {
		return nil, fmt.Errorf("interval collection %q: %w", spec.Name, err)
	}

	return &object.IntervalTable{
		Name: spec.Name,
		FromTo: object.FromTo{
			Intervals:  object.Intervals{StartAndEnd: intervalsRef},
			Attributes: attrs,
		},
		Holes: holesRef,
	}, nil
}
