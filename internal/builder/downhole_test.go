package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

func collarTable() *table.Table {
	return table.MustNew(
		&table.StringColumn{ColName: "hole_id", Values: []string{"H2", "H1"}},
		&table.Float64Column{ColName: "x", Values: []float64{100, 0}},
		&table.Float64Column{ColName: "y", Values: []float64{200, 0}},
		&table.Float64Column{ColName: "z", Values: []float64{50, 10}},
	)
}

func surveyTable() *table.Table {
	return table.MustNew(
		&table.StringColumn{ColName: "hole_id", Values: []string{"H1", "H2", "H1", "H2"}},
		&table.Float64Column{ColName: "depth", Values: []float64{0, 0, 50, 80}},
		&table.Float64Column{ColName: "azimuth", Values: []float64{90, 180, 92, 181}},
		&table.Float64Column{ColName: "dip", Values: []float64{60, 55, 61, 56}},
	)
}

func holesSpec() DownholeCollectionSpec {
	return DownholeCollectionSpec{
		Name:           "drilling",
		CollarIDColumn: "hole_id",
		SurveyIDColumn: "hole_id",
		XColumn:        "x", YColumn: "y", ZColumn: "z",
		DepthColumn:   "depth",
		AzimuthColumn: "azimuth",
		DipColumn:     "dip",
	}
}

func TestBuildDownholeCollection(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	dc, res, err := BuildDownholeCollection(ctx, st, collarTable(), surveyTable(), holesSpec())
	if err != nil {
		t.Fatalf("BuildDownholeCollection failed: %v", err)
	}

	if dc.Schema != object.SchemaDownholeCollection {
		t.Errorf("schema = %q", dc.Schema)
	}
	if res.Rows["holes"] != 2 {
		t.Errorf("holes = %d, want 2", res.Rows["holes"])
	}

	// Collars are sorted by hole id before anything derives from them.
	lookupTbl, ok := st.Table(dc.Location.HoleID.Table.Data)
	if !ok {
		t.Fatal("hole lookup not persisted")
	}
	valueCol, _ := lookupTbl.Column("value")
	values := table.AsString(valueCol)
	if values[0] != "H1" || values[1] != "H2" {
		t.Errorf("hole lookup = %v, want [H1 H2]", values)
	}

	// Grouping index: two survey rows per hole after sorting.
	holesTbl, ok := st.Table(dc.Location.Holes.Data)
	if !ok {
		t.Fatal("holes index not persisted")
	}
	offCol, _ := holesTbl.Column("offset")
	cntCol, _ := holesTbl.Column("count")
	offsets := offCol.(*table.Uint64Column).Values
	counts := cntCol.(*table.Uint64Column).Values
	if offsets[0] != 0 || counts[0] != 2 || offsets[1] != 2 || counts[1] != 2 {
		t.Errorf("holes index = offsets %v counts %v", offsets, counts)
	}

	// Max depth is derived from the deepest survey reading per hole, and
	// all three distance roles carry it.
	distTbl, ok := st.Table(dc.Location.Distances.Data)
	if !ok {
		t.Fatal("distances not persisted")
	}
	finalCol, _ := distTbl.Column("final")
	finals := table.AsFloat64(finalCol)
	if finals[0] != 50 || finals[1] != 80 {
		t.Errorf("final depths = %v, want [50 80] in sorted hole order", finals)
	}

	if _, err := object.RoundTrip(dc); err != nil {
		t.Errorf("round trip failed: %v", err)
	}
}

func TestBuildDownholeCollectionInvertDip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	spec := holesSpec()
	spec.InvertDip = true

	dc, _, err := BuildDownholeCollection(ctx, st, collarTable(), surveyTable(), spec)
	if err != nil {
		t.Fatalf("BuildDownholeCollection failed: %v", err)
	}

	pathTbl, _ := st.Table(dc.Location.Path.Data)
	dipCol, _ := pathTbl.Column("dip")
	dips := table.AsFloat64(dipCol)
	for _, d := range dips {
		if d >= 0 {
			t.Fatalf("dips should be negated, got %v", dips)
		}
	}
}

func TestBuildDownholeCollectionWithIntervals(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	assays := table.MustNew(
		&table.StringColumn{ColName: "hole_id", Values: []string{"H1", "H1", "H1"}},
		&table.Float64Column{ColName: "from", Values: []float64{10, 0, 20}},
		&table.Float64Column{ColName: "to", Values: []float64{20, 10, 30}},
		&table.Float64Column{ColName: "au", Values: []float64{1.2, 0.4, 2.5}},
	)

	spec := holesSpec()
	spec.Intervals = []IntervalCollectionSpec{{
		Name:         "assays",
		Table:        assays,
		HoleIDColumn: "hole_id",
		FromColumn:   "from",
		ToColumn:     "to",
	}}

	dc, res, err := BuildDownholeCollection(ctx, st, collarTable(), surveyTable(), spec)
	if err != nil {
		t.Fatalf("BuildDownholeCollection failed: %v", err)
	}
	if len(dc.Collections) != 1 || dc.Collections[0].Name != "assays" {
		t.Fatalf("collections = %+v", dc.Collections)
	}
	if res.Rows["intervals:assays"] != 3 {
		t.Errorf("rows = %v", res.Rows)
	}

	// Intervals are sorted by (hole, from) before persistence.
	ivTbl, _ := st.Table(dc.Collections[0].FromTo.Intervals.StartAndEnd.Data)
	fromCol, _ := ivTbl.Column("data1")
	froms := table.AsFloat64(fromCol)
	if froms[0] != 0 || froms[1] != 10 || froms[2] != 20 {
		t.Errorf("froms = %v, want sorted [0 10 20]", froms)
	}

	// H2 has no assay rows: its run is zero-count at the end.
	holesTbl, _ := st.Table(dc.Collections[0].Holes.Data)
	cntCol, _ := holesTbl.Column("count")
	counts := cntCol.(*table.Uint64Column).Values
	offCol, _ := holesTbl.Column("offset")
	offsets := offCol.(*table.Uint64Column).Values
	if counts[0] != 3 || counts[1] != 0 || offsets[1] != 3 {
		t.Errorf("assay index = offsets %v counts %v", offsets, counts)
	}

	if _, err := object.RoundTrip(dc); err != nil {
		t.Errorf("round trip failed: %v", err)
	}
}

func TestBuildDownholeCollectionSurveylessHole(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	// H2 is in the collar table but has no survey rows.
	survey := table.MustNew(
		&table.StringColumn{ColName: "hole_id", Values: []string{"H1", "H1", "H1"}},
		&table.Float64Column{ColName: "depth", Values: []float64{0, 25, 50}},
		&table.Float64Column{ColName: "azimuth", Values: []float64{90, 91, 92}},
		&table.Float64Column{ColName: "dip", Values: []float64{60, 61, 62}},
	)

	dc, res, err := BuildDownholeCollection(ctx, st, collarTable(), survey, holesSpec())
	if err != nil {
		t.Fatalf("BuildDownholeCollection failed: %v", err)
	}
	if res.Rows["holes"] != 2 {
		t.Errorf("holes = %d, want 2", res.Rows["holes"])
	}

	holesTbl, ok := st.Table(dc.Location.Holes.Data)
	if !ok {
		t.Fatal("holes index not persisted")
	}
	offCol, _ := holesTbl.Column("offset")
	cntCol, _ := holesTbl.Column("count")
	offsets := offCol.(*table.Uint64Column).Values
	counts := cntCol.(*table.Uint64Column).Values
	if offsets[0] != 0 || counts[0] != 3 || offsets[1] != 3 || counts[1] != 0 {
		t.Errorf("holes index = offsets %v counts %v, want [(0,3),(3,0)]", offsets, counts)
	}

	// Derived max depth is zero for the hole with no survey readings.
	distTbl, ok := st.Table(dc.Location.Distances.Data)
	if !ok {
		t.Fatal("distances not persisted")
	}
	finalCol, _ := distTbl.Column("final")
	finals := table.AsFloat64(finalCol)
	if finals[0] != 50 || finals[1] != 0 {
		t.Errorf("final depths = %v, want [50 0]", finals)
	}

	if _, err := object.RoundTrip(dc); err != nil {
		t.Errorf("round trip failed: %v", err)
	}
}

func TestBuildDownholeCollectionMaxDepthColumn(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	collar := table.MustNew(
		&table.StringColumn{ColName: "hole_id", Values: []string{"H1"}},
		&table.Float64Column{ColName: "x", Values: []float64{0}},
		&table.Float64Column{ColName: "y", Values: []float64{0}},
		&table.Float64Column{ColName: "z", Values: []float64{0}},
		&table.Float64Column{ColName: "eoh", Values: []float64{123}},
	)
	survey := table.MustNew(
		&table.StringColumn{ColName: "hole_id", Values: []string{"H1"}},
		&table.Float64Column{ColName: "depth", Values: []float64{50}},
		&table.Float64Column{ColName: "azimuth", Values: []float64{0}},
		&table.Float64Column{ColName: "dip", Values: []float64{60}},
	)

	spec := holesSpec()
	spec.MaxDepthColumn = "eoh"

	dc, _, err := BuildDownholeCollection(ctx, st, collar, survey, spec)
	if err != nil {
		t.Fatalf("BuildDownholeCollection failed: %v", err)
	}
	distTbl, _ := st.Table(dc.Location.Distances.Data)
	finalCol, _ := distTbl.Column("final")
	if finals := table.AsFloat64(finalCol); finals[0] != 123 {
		t.Errorf("final depth = %v, want declared column value 123", finals)
	}
}

func TestBuildDownholeCollectionMissingColumns(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	collar := table.MustNew(&table.StringColumn{ColName: "hole_id", Values: []string{"H1"}})
	_, _, err := BuildDownholeCollection(ctx, st, collar, surveyTable(), holesSpec())
	var cme *ColumnMissingError
	if !errors.As(err, &cme) {
		t.Fatalf("expected ColumnMissingError, got %v", err)
	}
}
