package service

import (
	"context"

	"github.com/geostack-labs/geoforge/internal/builder"
)

// PointsetRequest builds a point set from one file of coordinates and
// attributes.
type PointsetRequest struct {
	Target

	File             string   `json:"file"`
	XColumn          string   `json:"x_column"`
	YColumn          string   `json:"y_column"`
	ZColumn          string   `json:"z_column"`
	AttributeColumns []string `json:"attribute_columns,omitempty"`
}

// CreatePointset loads the input file, builds and validates a point set, and
// creates it unless the request is a dry run.
func (s *Service) CreatePointset(ctx context.Context, req PointsetRequest) *Outcome {
	if err := s.checkRemote(req.Target); err != nil {
		return s.failure(err, nil)
	}
	tables, err := s.loadTables(ctx, map[string]string{"points": req.File})
	if err != nil {
		return s.failure(err, nil)
	}
	val := newValidation(tables)

	obj, res, err := builder.BuildPointset(ctx, s.Store, tables["points"], builder.PointsetSpec{
		Name:             req.Name,
		Description:      req.Description,
		Tags:             tagsOrEmpty(req.Tags),
		CRS:              req.CRS,
		XColumn:          req.XColumn,
		YColumn:          req.YColumn,
		ZColumn:          req.ZColumn,
		AttributeColumns: req.AttributeColumns,
	})
	if err != nil {
		return s.failure(err, mergeResult(val, res))
	}
	return s.finish(ctx, obj, res, req.Target, val)
}

// LineSegmentsRequest builds a line network from a vertex file and a segment
// file. Segment rows reference vertex rows by zero-based position.
type LineSegmentsRequest struct {
	Target

	VerticesFile string `json:"vertices_file"`
	SegmentsFile string `json:"segments_file"`

	XColumn string `json:"x_column"`
	YColumn string `json:"y_column"`
	ZColumn string `json:"z_column"`

	StartIndexColumn string `json:"start_index_column"`
	EndIndexColumn   string `json:"end_index_column"`

	VertexAttributeColumns  []string `json:"vertex_attribute_columns,omitempty"`
	SegmentAttributeColumns []string `json:"segment_attribute_columns,omitempty"`
}

// CreateLineSegments loads both input files, builds and validates a line
// network, and creates it unless the request is a dry run.
func (s *Service) CreateLineSegments(ctx context.Context, req LineSegmentsRequest) *Outcome {
	if err := s.checkRemote(req.Target); err != nil {
		return s.failure(err, nil)
	}
	tables, err := s.loadTables(ctx, map[string]string{
		"vertices": req.VerticesFile,
		"segments": req.SegmentsFile,
	})
	if err != nil {
		return s.failure(err, nil)
	}
	val := newValidation(tables)

	obj, res, err := builder.BuildLineSegments(ctx, s.Store, tables["vertices"], tables["segments"], builder.LineSegmentsSpec{
		Name:                    req.Name,
		Description:             req.Description,
		Tags:                    tagsOrEmpty(req.Tags),
		CRS:                     req.CRS,
		XColumn:                 req.XColumn,
		YColumn:                 req.YColumn,
		ZColumn:                 req.ZColumn,
		StartIndexColumn:        req.StartIndexColumn,
		EndIndexColumn:          req.EndIndexColumn,
		VertexAttributeColumns:  req.VertexAttributeColumns,
		SegmentAttributeColumns: req.SegmentAttributeColumns,
	})
	if err != nil {
		return s.failure(err, mergeResult(val, res))
	}
	return s.finish(ctx, obj, res, req.Target, val)
}

// IntervalCollection names one interval file attached to a hole collection.
type IntervalCollection struct {
	Name             string   `json:"name"`
	File             string   `json:"file"`
	HoleIDColumn     string   `json:"hole_id_column"`
	FromColumn       string   `json:"from_column"`
	ToColumn         string   `json:"to_column"`
	AttributeColumns []string `json:"attribute_columns,omitempty"`
}

// DownholeCollectionRequest builds a hole collection from collar and survey
// files plus any number of interval collections.
type DownholeCollectionRequest struct {
	Target

	CollarFile string `json:"collar_file"`
	SurveyFile string `json:"survey_file"`

	CollarIDColumn string `json:"collar_id_column"`
	SurveyIDColumn string `json:"survey_id_column"`
	XColumn        string `json:"x_column"`
	YColumn        string `json:"y_column"`
	ZColumn        string `json:"z_column"`
	DepthColumn    string `json:"depth_column"`
	AzimuthColumn  string `json:"azimuth_column"`
	DipColumn      string `json:"dip_column"`
	MaxDepthColumn string `json:"max_depth_column,omitempty"`
	InvertDip      bool   `json:"invert_dip,omitempty"`

	Intervals []IntervalCollection `json:"intervals,omitempty"`
}

// CreateDownholeCollection loads the collar, survey and interval files,
// builds and validates a hole collection, and creates it unless the request
// is a dry run.
func (s *Service) CreateDownholeCollection(ctx context.Context, req DownholeCollectionRequest) *Outcome {
	if err := s.checkRemote(req.Target); err != nil {
		return s.failure(err, nil)
	}
	files := map[string]string{
		"collar": req.CollarFile,
		"survey": req.SurveyFile,
	}
	for _, ic := range req.Intervals {
		files["intervals:"+ic.Name] = ic.File
	}
	tables, err := s.loadTables(ctx, files)
	if err != nil {
		return s.failure(err, nil)
	}
	val := newValidation(tables)

	spec := builder.DownholeCollectionSpec{
		Name:           req.Name,
		Description:    req.Description,
		Tags:           tagsOrEmpty(req.Tags),
		CRS:            req.CRS,
		CollarIDColumn: req.CollarIDColumn,
		SurveyIDColumn: req.SurveyIDColumn,
		XColumn:        req.XColumn,
		YColumn:        req.YColumn,
		ZColumn:        req.ZColumn,
		DepthColumn:    req.DepthColumn,
		AzimuthColumn:  req.AzimuthColumn,
		DipColumn:      req.DipColumn,
		MaxDepthColumn: req.MaxDepthColumn,
		InvertDip:      req.InvertDip,
	}
	for _, ic := range req.Intervals {
		spec.Intervals = append(spec.Intervals, builder.IntervalCollectionSpec{
			Name:             ic.Name,
			Table:            tables["intervals:"+ic.Name],
			HoleIDColumn:     ic.HoleIDColumn,
			FromColumn:       ic.FromColumn,
			ToColumn:         ic.ToColumn,
			AttributeColumns: ic.AttributeColumns,
		})
	}

	obj, res, err := builder.BuildDownholeCollection(ctx, s.Store, tables["collar"], tables["survey"], spec)
	if err != nil {
		return s.failure(err, mergeResult(val, res))
	}
	return s.finish(ctx, obj, res, req.Target, val)
}

// DownholeIntervalsRequest builds a flat interval object from one file with
// precomputed start, end and midpoint coordinates per interval.
type DownholeIntervalsRequest struct {
	Target

	File string `json:"file"`

	HoleIDColumn string `json:"hole_id_column"`
	FromColumn   string `json:"from_column"`
	ToColumn     string `json:"to_column"`

	StartXColumn string `json:"start_x_column"`
	StartYColumn string `json:"start_y_column"`
	StartZColumn string `json:"start_z_column"`
	EndXColumn   string `json:"end_x_column"`
	EndYColumn   string `json:"end_y_column"`
	EndZColumn   string `json:"end_z_column"`
	MidXColumn   string `json:"mid_x_column"`
	MidYColumn   string `json:"mid_y_column"`
	MidZColumn   string `json:"mid_z_column"`

	AttributeColumns []string `json:"attribute_columns,omitempty"`
	IsComposited     bool     `json:"is_composited,omitempty"`
}

// CreateDownholeIntervals loads the input file, builds and validates a flat
// interval object, and creates it unless the request is a dry run.
func (s *Service) CreateDownholeIntervals(ctx context.Context, req DownholeIntervalsRequest) *Outcome {
	if err := s.checkRemote(req.Target); err != nil {
		return s.failure(err, nil)
	}
	tables, err := s.loadTables(ctx, map[string]string{"intervals": req.File})
	if err != nil {
		return s.failure(err, nil)
	}
	val := newValidation(tables)

	obj, res, err := builder.BuildDownholeIntervals(ctx, s.Store, tables["intervals"], builder.DownholeIntervalsSpec{
		Name:             req.Name,
		Description:      req.Description,
		Tags:             tagsOrEmpty(req.Tags),
		CRS:              req.CRS,
		HoleIDColumn:     req.HoleIDColumn,
		FromColumn:       req.FromColumn,
		ToColumn:         req.ToColumn,
		StartXColumn:     req.StartXColumn,
		StartYColumn:     req.StartYColumn,
		StartZColumn:     req.StartZColumn,
		EndXColumn:       req.EndXColumn,
		EndYColumn:       req.EndYColumn,
		EndZColumn:       req.EndZColumn,
		MidXColumn:       req.MidXColumn,
		MidYColumn:       req.MidYColumn,
		MidZColumn:       req.MidZColumn,
		AttributeColumns: req.AttributeColumns,
		IsComposited:     req.IsComposited,
	})
	if err != nil {
		return s.failure(err, mergeResult(val, res))
	}
	return s.finish(ctx, obj, res, req.Target, val)
}

// mergeResult folds partial builder results into the validation summary so a
// failed build still reports warnings gathered before the failure.
func mergeResult(val *Validation, res *builder.Result) *Validation {
	if res == nil {
		return val
	}
	val.Warnings = append(val.Warnings, res.Warnings...)
	if val.BoundingBox == nil {
		val.BoundingBox = res.BoundingBox
	}
	for name, n := range res.Rows {
		val.Rows[name] = n
	}
	return val
}
