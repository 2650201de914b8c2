package builder

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

func TestAttributeKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Au ppm", "au_ppm"},
		{"DENSITY", "density"},
		{"rock-type", "rock_type"},
		{"Cu - total", "cu___total"},
		{"already_fine", "already_fine"},
	}
	for _, tt := range tests {
		if got := AttributeKey(tt.name); got != tt.want {
			t.Errorf("AttributeKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCheckKeyCollisions(t *testing.T) {
	if err := checkKeyCollisions([]string{"Au ppm", "density"}); err != nil {
		t.Errorf("distinct keys should pass: %v", err)
	}

	err := checkKeyCollisions([]string{"Au ppm", "au_ppm"})
	if err == nil {
		t.Fatal("colliding keys should fail")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("collision should be a ValidationError, got %T", err)
	}
}

func TestEncodeCategories(t *testing.T) {
	lookup, codes := encodeCategories([]string{"granite", "basalt", "granite", "", "basalt"})

	wantLookup := []string{"granite", "basalt", ""}
	if len(lookup) != len(wantLookup) {
		t.Fatalf("lookup = %v, want %v", lookup, wantLookup)
	}
	for i := range wantLookup {
		if lookup[i] != wantLookup[i] {
			t.Fatalf("lookup = %v, want %v (first-occurrence order)", lookup, wantLookup)
		}
	}

	wantCodes := []int64{1, 2, 1, 3, 2}
	for i := range wantCodes {
		if codes[i] != wantCodes[i] {
			t.Fatalf("codes = %v, want %v", codes, wantCodes)
		}
	}
}

func TestBuildAttributeByDeclaredKind(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	res := newResult()

	// A string column of numerals stays categorical: the declared kind
	// decides, not the values.
	col := &table.StringColumn{ColName: "zone", Values: []string{"1", "2", "1"}}
	attr, err := buildAttribute(ctx, st, col, res)
	if err != nil {
		t.Fatalf("buildAttribute failed: %v", err)
	}
	cat, ok := attr.(*object.CategoryAttribute)
	if !ok {
		t.Fatalf("numeric-looking strings became %T, want category", attr)
	}
	if cat.AttributeType != object.AttributeTypeCategory {
		t.Errorf("attribute_type = %q", cat.AttributeType)
	}

	fcol := &table.Float64Column{ColName: "grade", Values: []float64{0.5, math.NaN(), 1.5}}
	attr, err = buildAttribute(ctx, st, fcol, res)
	if err != nil {
		t.Fatalf("buildAttribute failed: %v", err)
	}
	cont, ok := attr.(*object.ContinuousAttribute)
	if !ok {
		t.Fatalf("float column became %T, want continuous", attr)
	}
	if cont.ValueCount() != 3 {
		t.Errorf("ValueCount = %d, want 3 (NaN rows keep their slot)", cont.ValueCount())
	}
}

func TestBuildCategoryMissingIsItsOwnCategory(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()

	col := &table.StringColumn{
		ColName: "lith",
		Values:  []string{"granite", "", "granite"},
		Valid:   []bool{true, false, true},
	}
	attr, err := buildCategory(ctx, st, col)
	if err != nil {
		t.Fatalf("buildCategory failed: %v", err)
	}
	cat := attr.(*object.CategoryAttribute)

	lookupTbl, ok := st.Table(cat.Table.Data)
	if !ok {
		t.Fatal("lookup table was not persisted")
	}
	valueCol, _ := lookupTbl.Column("value")
	values := table.AsString(valueCol)
	if len(values) != 2 || values[0] != "granite" || values[1] != "" {
		t.Errorf("lookup values = %v, want [granite \"\"]", values)
	}

	codesTbl, ok := st.Table(cat.Values.Data)
	if !ok {
		t.Fatal("codes table was not persisted")
	}
	codesCol, _ := codesTbl.Column("data")
	codes := codesCol.(*table.Int64Column).Values
	if codes[0] != 1 || codes[1] != 2 || codes[2] != 1 {
		t.Errorf("codes = %v, want [1 2 1]", codes)
	}
}

func TestBuildAttributesSelectionAndExclusion(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	res := newResult()

	tbl := table.MustNew(
		&table.Float64Column{ColName: "x", Values: []float64{1}},
		&table.Float64Column{ColName: "grade", Values: []float64{2}},
		&table.StringColumn{ColName: "lith", Values: []string{"a"}},
	)

	attrs, err := buildAttributes(ctx, st, tbl, []string{"grade", "lith", "x", "missing"}, []string{"x"}, res)
	if err != nil {
		t.Fatalf("buildAttributes failed: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("built %d attributes, want 2 (x excluded, missing skipped)", len(attrs))
	}
	if res.Attributes[0] != "grade" || res.Attributes[1] != "lith" {
		t.Errorf("attribute names = %v", res.Attributes)
	}
}

func TestBuildAttributesKeyCollisionFailsBuild(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore()
	res := newResult()

	tbl := table.MustNew(
		&table.Float64Column{ColName: "Au ppm", Values: []float64{1}},
		&table.Float64Column{ColName: "au_ppm", Values: []float64{2}},
	)

	_, err := buildAttributes(ctx, st, tbl, tbl.Names(), nil, res)
	if err == nil {
		t.Fatal("key collision should abort the build")
	}
	if st.Len() != 0 {
		t.Errorf("nothing should be persisted on collision, store has %d blobs", st.Len())
	}
}

func TestDefaultAttributeColumns(t *testing.T) {
	tbl := table.MustNew(
		&table.Float64Column{ColName: "x", Values: []float64{1}},
		&table.Float64Column{ColName: "y", Values: []float64{1}},
		&table.Float64Column{ColName: "grade", Values: []float64{1}},
	)
	got := defaultAttributeColumns(tbl, []string{"x", "y"})
	if len(got) != 1 || got[0] != "grade" {
		t.Errorf("defaultAttributeColumns = %v, want [grade]", got)
	}
}
