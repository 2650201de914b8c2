package builder

import (
	"context"
	"sort"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

// groupRun is one contiguous run of rows sharing a group key in a table
// sorted by that key. Count may be zero for keys with no rows.
type groupRun struct {
	Key    int64
	Offset uint64
	Count  uint64
}

// groupIndex scans row keys once, closing a run at every key change, then
// synthesizes a zero-count run for every lookup key never observed so that
// children-per-parent queries are total over all known parents. Zero-count
// runs sit at the end of the table. The result is sorted by offset, so no
// consumer needs the original row order to locate a group's rows.
//
// The caller must supply keys already sorted ascending; the builders sort
// before indexing. Keys absent from the lookup are skipped and reported.
func groupIndex(keys []string, lookup []string, res *Result) []groupRun {
	codeOf := make(map[string]int64, len(lookup))
	for i, v := range lookup {
		codeOf[v] = int64(i + 1)
	}

	var runs []groupRun
	seen := make(map[int64]bool, len(lookup))
	for i := 0; i < len(keys); {
		j := i
		for j < len(keys) && keys[j] == keys[i] {
			j++
		}
		if code, ok := codeOf[keys[i]]; ok {
			runs = append(runs, groupRun{Key: code, Offset: uint64(i), Count: uint64(j - i)})
			seen[code] = true
		} else {
			res.warnf("group key %q has %d rows but is not in the group lookup; rows ignored by the index", keys[i], j-i)
		}
		i = j
	}

	end := uint64(len(keys))
	for i := range lookup {
		code := int64(i + 1)
		if !seen[code] {
			runs = append(runs, groupRun{Key: code, Offset: end, Count: 0})
		}
	}

	sort.SliceStable(runs, func(a, b int) bool { return runs[a].Offset < runs[b].Offset })
	return runs
}

// submitGroupIndex persists the (group key, offset, count) triples as their
// own columnar table.
func submitGroupIndex(ctx context.Context, st store.Columnar, runs []groupRun) (object.Reference, error) {
	keys := make([]int64, len(runs))
	offsets := make([]uint64, len(runs))
	counts := make([]uint64, len(runs))
	for i, r := range runs {
		keys[i] = r.Key
		offsets[i] = r.Offset
		counts[i] = r.Count
	}
	tbl := table.MustNew(
		&table.Int64Column{ColName: "hole_index", Values: keys},
		&table.Uint64Column{ColName: "offset", Values: offsets},
		&table.Uint64Column{ColName: "count", Values: counts},
	)
	return st.SubmitTable(ctx, tbl)
}
