// Package object defines the schema-shaped entity trees produced by the
// builders, along with serialization to nested maps and the strict re-parse
// used as a pre-upload validation round-trip.
package object

import (
	"fmt"
	"math"
)

// Schema identifiers for the supported object kinds. The schema string is
// embedded in every serialized tree and checked on re-parse.
const (
	SchemaPointset           = "/objects/pointset/1.3.0/pointset.schema.json"
	SchemaLineSegments       = "/objects/line-segments/2.2.0/line-segments.schema.json"
	SchemaDownholeCollection = "/objects/downhole-collection/1.3.0/downhole-collection.schema.json"
	SchemaDownholeIntervals  = "/objects/downhole-intervals/1.3.0/downhole-intervals.schema.json"
)

// Object is implemented by every top-level entity tree.
type Object interface {
	// SchemaID returns the schema identifier for the object kind.
	SchemaID() string

	// Validate checks structural invariants after a round-trip re-parse.
	Validate() error
}

// Reference points at a columnar table persisted through the store. Data is
// an opaque content pointer (digest); Length and Width describe the table
// shape. References are embedded verbatim in the entity tree.
type Reference struct {
	Data   string `json:"data" mapstructure:"data"`
	Length int64  `json:"length" mapstructure:"length"`
	Width  int64  `json:"width,omitempty" mapstructure:"width,omitempty"`
}

func (r Reference) validate(field string) error {
	if r.Data == "" {
		return fmt.Errorf("%s: empty data reference", field)
	}
	if r.Length < 0 {
		return fmt.Errorf("%s: negative length %d", field, r.Length)
	}
	return nil
}

// BoundingBox is the axis-aligned extent over valid coordinate rows. All six
// values must be finite.
type BoundingBox struct {
	MinX float64 `json:"min_x" mapstructure:"min_x"`
	MaxX float64 `json:"max_x" mapstructure:"max_x"`
	MinY float64 `json:"min_y" mapstructure:"min_y"`
	MaxY float64 `json:"max_y" mapstructure:"max_y"`
	MinZ float64 `json:"min_z" mapstructure:"min_z"`
	MaxZ float64 `json:"max_z" mapstructure:"max_z"`
}

// Validate rejects non-finite or inverted extents.
func (b BoundingBox) Validate() error {
	for name, v := range map[string]float64{
		"min_x": b.MinX, "max_x": b.MaxX,
		"min_y": b.MinY, "max_y": b.MaxY,
		"min_z": b.MinZ, "max_z": b.MaxZ,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bounding box %s is not finite", name)
		}
	}
	if b.MinX > b.MaxX || b.MinY > b.MaxY || b.MinZ > b.MaxZ {
		return fmt.Errorf("bounding box min exceeds max")
	}
	return nil
}

// Base carries the fields shared by every object kind.
type Base struct {
	Schema                    string            `json:"schema" mapstructure:"schema"`
	Name                      string            `json:"name" mapstructure:"name"`
	UUID                      *string           `json:"uuid" mapstructure:"uuid"`
	Description               string            `json:"description,omitempty" mapstructure:"description,omitempty"`
	Tags                      map[string]string `json:"tags,omitempty" mapstructure:"tags,omitempty"`
	BoundingBox               BoundingBox       `json:"bounding_box" mapstructure:"bounding_box"`
	CoordinateReferenceSystem string            `json:"coordinate_reference_system" mapstructure:"coordinate_reference_system"`
}

func (b Base) validate(schema string) error {
	if b.Schema != schema {
		return fmt.Errorf("schema mismatch: got %q, want %q", b.Schema, schema)
	}
	if b.Name == "" {
		return fmt.Errorf("object name is empty")
	}
	return b.BoundingBox.Validate()
}

// CategoryData pairs a lookup table with a parallel array of integer codes.
type CategoryData struct {
	Table  Reference `json:"table" mapstructure:"table"`
	Values Reference `json:"values" mapstructure:"values"`
}

func (c CategoryData) validate(field string) error {
	if err := c.Table.validate(field + ".table"); err != nil {
		return err
	}
	return c.Values.validate(field + ".values")
}

// Locations wraps an N×3 coordinate array.
type Locations struct {
	Coordinates Reference `json:"coordinates" mapstructure:"coordinates"`
}

// Intervals wraps a K×2 from/to depth array.
type Intervals struct {
	StartAndEnd Reference `json:"start_and_end" mapstructure:"start_and_end"`
}

// Pointset is a set of 3D points with optional per-point attributes.
type Pointset struct {
	Base      `mapstructure:",squash"`
	Locations PointsetLocations `json:"locations" mapstructure:"locations"`
}

// PointsetLocations holds the coordinate array and its attributes.
type PointsetLocations struct {
	Coordinates Reference   `json:"coordinates" mapstructure:"coordinates"`
	Attributes  []Attribute `json:"attributes,omitempty" mapstructure:"attributes,omitempty"`
}

func (p *Pointset) SchemaID() string { return SchemaPointset }

func (p *Pointset) Validate() error {
	if err := p.Base.validate(SchemaPointset); err != nil {
		return err
	}
	if err := p.Locations.Coordinates.validate("locations.coordinates"); err != nil {
		return err
	}
	return validateAttributes(p.Locations.Coordinates.Length, p.Locations.Attributes)
}

// LineSegments is a vertex array plus a segment-index array, each with
// optional attributes.
type LineSegments struct {
	Base     `mapstructure:",squash"`
	Segments Segments `json:"segments" mapstructure:"segments"`
}

// Segments couples vertices with the index pairs that join them.
type Segments struct {
	Vertices Vertices `json:"vertices" mapstructure:"vertices"`
	Indices  Indices  `json:"indices" mapstructure:"indices"`
}

// Vertices is an M×3 float array with optional vertex attributes.
type Vertices struct {
	Reference  `mapstructure:",squash"`
	Attributes []Attribute `json:"attributes,omitempty" mapstructure:"attributes,omitempty"`
}

// Indices is a K×2 index array with optional segment attributes.
type Indices struct {
	Reference  `mapstructure:",squash"`
	Attributes []Attribute `json:"attributes,omitempty" mapstructure:"attributes,omitempty"`
}

func (l *LineSegments) SchemaID() string { return SchemaLineSegments }

func (l *LineSegments) Validate() error {
	if err := l.Base.validate(SchemaLineSegments); err != nil {
		return err
	}
	if err := l.Segments.Vertices.validate("segments.vertices"); err != nil {
		return err
	}
	if err := l.Segments.Indices.validate("segments.indices"); err != nil {
		return err
	}
	if err := validateAttributes(l.Segments.Vertices.Length, l.Segments.Vertices.Attributes); err != nil {
		return err
	}
	return validateAttributes(l.Segments.Indices.Length, l.Segments.Indices.Attributes)
}

// DownholeCollection is drillhole data: collar locations, survey path, the
// per-hole grouping index, and named interval collections.
type DownholeCollection struct {
	Base        `mapstructure:",squash"`
	Location    DownholeLocation `json:"location" mapstructure:"location"`
	Collections []IntervalTable  `json:"collections,omitempty" mapstructure:"collections,omitempty"`
}

// DownholeLocation describes the holes themselves: one collar coordinate and
// distance triple per hole, the hole-id category data, the survey path, and
// the grouping index mapping each hole to its survey rows.
type DownholeLocation struct {
	Coordinates Reference    `json:"coordinates" mapstructure:"coordinates"`
	Distances   Reference    `json:"distances" mapstructure:"distances"`
	HoleID      CategoryData `json:"hole_id" mapstructure:"hole_id"`
	Holes       Reference    `json:"holes" mapstructure:"holes"`
	Path        Reference    `json:"path" mapstructure:"path"`
}

// IntervalTable is one named interval collection (assays, geology, ...).
type IntervalTable struct {
	Name   string    `json:"name" mapstructure:"name"`
	FromTo FromTo    `json:"from_to" mapstructure:"from_to"`
	Holes  Reference `json:"holes" mapstructure:"holes"`
}

// FromTo holds interval depths and their attributes.
type FromTo struct {
	Intervals  Intervals   `json:"intervals" mapstructure:"intervals"`
	Attributes []Attribute `json:"attributes,omitempty" mapstructure:"attributes,omitempty"`
}

func (d *DownholeCollection) SchemaID() string { return SchemaDownholeCollection }

func (d *DownholeCollection) Validate() error {
	if err := d.Base.validate(SchemaDownholeCollection); err != nil {
		return err
	}
	loc := d.Location
	if err := loc.Coordinates.validate("location.coordinates"); err != nil {
		return err
	}
	if err := loc.Distances.validate("location.distances"); err != nil {
		return err
	}
	if err := loc.HoleID.validate("location.hole_id"); err != nil {
		return err
	}
	if err := loc.Holes.validate("location.holes"); err != nil {
		return err
	}
	if err := loc.Path.validate("location.path"); err != nil {
		return err
	}
	if loc.Coordinates.Length != loc.HoleID.Values.Length {
		return fmt.Errorf("location: %d collar coordinates but %d hole ids",
			loc.Coordinates.Length, loc.HoleID.Values.Length)
	}
	for i, coll := range d.Collections {
		if coll.Name == "" {
			return fmt.Errorf("collections[%d]: empty name", i)
		}
		if err := coll.FromTo.Intervals.StartAndEnd.validate(fmt.Sprintf("collections[%d].from_to", i)); err != nil {
			return err
		}
		if err := coll.Holes.validate(fmt.Sprintf("collections[%d].holes", i)); err != nil {
			return err
		}
		if err := validateAttributes(coll.FromTo.Intervals.StartAndEnd.Length, coll.FromTo.Attributes); err != nil {
			return err
		}
	}
	return nil
}

// DownholeIntervals is the flattened interval representation: every row is a
// complete interval with precomputed start/end/mid coordinates, so no
// grouping index is needed.
type DownholeIntervals struct {
	Base         `mapstructure:",squash"`
	IsComposited bool         `json:"is_composited" mapstructure:"is_composited"`
	Start        Locations    `json:"start" mapstructure:"start"`
	End          Locations    `json:"end" mapstructure:"end"`
	MidPoints    Locations    `json:"mid_points" mapstructure:"mid_points"`
	FromTo       FromToDepths `json:"from_to" mapstructure:"from_to"`
	HoleID       CategoryData `json:"hole_id" mapstructure:"hole_id"`
	Attributes   []Attribute  `json:"attributes,omitempty" mapstructure:"attributes,omitempty"`
}

// FromToDepths wraps the from/to depth intervals.
type FromToDepths struct {
	Intervals Intervals `json:"intervals" mapstructure:"intervals"`
}

func (d *DownholeIntervals) SchemaID() string { return SchemaDownholeIntervals }

func (d *DownholeIntervals) Validate() error {
	if err := d.Base.validate(SchemaDownholeIntervals); err != nil {
		return err
	}
	n := d.Start.Coordinates.Length
	for field, ref := range map[string]Reference{
		"start.coordinates":      d.Start.Coordinates,
		"end.coordinates":        d.End.Coordinates,
		"mid_points.coordinates": d.MidPoints.Coordinates,
		"from_to.intervals":      d.FromTo.Intervals.StartAndEnd,
		"hole_id.values":         d.HoleID.Values,
	} {
		if err := ref.validate(field); err != nil {
			return err
		}
		if ref.Length != n {
			return fmt.Errorf("%s: %d rows, want %d", field, ref.Length, n)
		}
	}
	if err := d.HoleID.Table.validate("hole_id.table"); err != nil {
		return err
	}
	return validateAttributes(n, d.Attributes)
}

func validateAttributes(rows int64, attrs []Attribute) error {
	seen := make(map[string]string, len(attrs))
	for _, a := range attrs {
		key, name := a.AttributeKey(), a.AttributeName()
		if key == "" {
			return fmt.Errorf("attribute %q: empty key", name)
		}
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("attribute key %q derived from both %q and %q", key, prev, name)
		}
		seen[key] = name
		if n := a.ValueCount(); n != rows {
			return fmt.Errorf("attribute %q: %d values, want %d", name, n, rows)
		}
	}
	return nil
}
