package builder

import (
	"math"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/table"
)

// boundingVolume computes the axis-aligned extent over rows where all three
// coordinate columns are present. It returns the number of valid rows, and
// fails when no row is valid or any extremum is non-finite. The volume is
// mandatory on every entity type, so failure is a hard stop.
func boundingVolume(tbl *table.Table, xCol, yCol, zCol string) (object.BoundingBox, int, error) {
	cx, _ := tbl.Column(xCol)
	cy, _ := tbl.Column(yCol)
	cz, _ := tbl.Column(zCol)
	xs, ys, zs := table.AsFloat64(cx), table.AsFloat64(cy), table.AsFloat64(cz)

	box := object.BoundingBox{
		MinX: math.Inf(1), MaxX: math.Inf(-1),
		MinY: math.Inf(1), MaxY: math.Inf(-1),
		MinZ: math.Inf(1), MaxZ: math.Inf(-1),
	}
	valid := 0
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(zs[i]) {
			continue
		}
		valid++
		box.MinX = math.Min(box.MinX, xs[i])
		box.MaxX = math.Max(box.MaxX, xs[i])
		box.MinY = math.Min(box.MinY, ys[i])
		box.MaxY = math.Max(box.MaxY, ys[i])
		box.MinZ = math.Min(box.MinZ, zs[i])
		box.MaxZ = math.Max(box.MaxZ, zs[i])
	}

	if valid == 0 {
		return object.BoundingBox{}, 0, validationf("no valid coordinate rows for bounding volume")
	}
	if err := box.Validate(); err != nil {
		return object.BoundingBox{}, 0, validationf("bounding volume: %v", err)
	}
	return box, valid, nil
}
