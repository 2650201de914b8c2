package builder

import (
	"testing"
)

func TestGroupIndexContiguousRuns(t *testing.T) {
	res := newResult()
	runs := groupIndex(
		[]string{"H1", "H1", "H1", "H2", "H2"},
		[]string{"H1", "H2"},
		res,
	)

	want := []groupRun{
		{Key: 1, Offset: 0, Count: 3},
		{Key: 2, Offset: 3, Count: 2},
	}
	assertRuns(t, runs, want)
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestGroupIndexZeroCountHole(t *testing.T) {
	// H2 has no child rows; it still gets a run so per-hole queries are
	// total over the lookup.
	res := newResult()
	runs := groupIndex(
		[]string{"H1", "H1", "H1"},
		[]string{"H1", "H2"},
		res,
	)

	want := []groupRun{
		{Key: 1, Offset: 0, Count: 3},
		{Key: 2, Offset: 3, Count: 0},
	}
	assertRuns(t, runs, want)
}

func TestGroupIndexUnknownKeyWarnsAndSkips(t *testing.T) {
	res := newResult()
	runs := groupIndex(
		[]string{"H1", "H9", "H9"},
		[]string{"H1", "H2"},
		res,
	)

	want := []groupRun{
		{Key: 1, Offset: 0, Count: 1},
		{Key: 2, Offset: 3, Count: 0},
	}
	assertRuns(t, runs, want)
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one about H9", res.Warnings)
	}
}

func TestGroupIndexEmptyKeys(t *testing.T) {
	res := newResult()
	runs := groupIndex(nil, []string{"H1"}, res)

	want := []groupRun{{Key: 1, Offset: 0, Count: 0}}
	assertRuns(t, runs, want)
}

func TestGroupIndexSortedByOffset(t *testing.T) {
	res := newResult()
	runs := groupIndex(
		[]string{"H2", "H2", "H3"},
		[]string{"H1", "H2", "H3"},
		res,
	)

	// H1 never appears, so its zero-count run lands at the end offset.
	want := []groupRun{
		{Key: 2, Offset: 0, Count: 2},
		{Key: 3, Offset: 2, Count: 1},
		{Key: 1, Offset: 3, Count: 0},
	}
	assertRuns(t, runs, want)
}

func assertRuns(t *testing.T, got, want []groupRun) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("runs = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("run %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
