package builder

import (
	"errors"
	"math"
	"testing"

	"github.com/geostack-labs/geoforge/internal/table"
)

func coordTable(xs, ys, zs []float64) *table.Table {
	return table.MustNew(
		&table.Float64Column{ColName: "x", Values: xs},
		&table.Float64Column{ColName: "y", Values: ys},
		&table.Float64Column{ColName: "z", Values: zs},
	)
}

func TestBoundingVolume(t *testing.T) {
	tbl := coordTable(
		[]float64{0, 10, 5},
		[]float64{-2, 4, 1},
		[]float64{100, 90, 95},
	)

	box, valid, err := boundingVolume(tbl, "x", "y", "z")
	if err != nil {
		t.Fatalf("boundingVolume failed: %v", err)
	}
	if valid != 3 {
		t.Errorf("valid = %d, want 3", valid)
	}
	if box.MinX != 0 || box.MaxX != 10 || box.MinY != -2 || box.MaxY != 4 || box.MinZ != 90 || box.MaxZ != 100 {
		t.Errorf("box = %+v", box)
	}
}

func TestBoundingVolumeSkipsIncompleteRows(t *testing.T) {
	// A row with any missing coordinate contributes to no extent.
	tbl := coordTable(
		[]float64{0, math.NaN(), 500},
		[]float64{0, 1, 2},
		[]float64{0, 1, math.NaN()},
	)

	box, valid, err := boundingVolume(tbl, "x", "y", "z")
	if err != nil {
		t.Fatalf("boundingVolume failed: %v", err)
	}
	if valid != 1 {
		t.Errorf("valid = %d, want 1", valid)
	}
	if box.MaxX != 0 {
		t.Errorf("partial rows leaked into extent: %+v", box)
	}
}

func TestBoundingVolumeAllMissingFails(t *testing.T) {
	tbl := coordTable(
		[]float64{math.NaN()},
		[]float64{1},
		[]float64{1},
	)
	_, _, err := boundingVolume(tbl, "x", "y", "z")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestBoundingVolumeInfiniteFails(t *testing.T) {
	tbl := coordTable(
		[]float64{math.Inf(1)},
		[]float64{1},
		[]float64{1},
	)
	var ve *ValidationError
	_, _, err := boundingVolume(tbl, "x", "y", "z")
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for infinite coordinate, got %v", err)
	}
}
