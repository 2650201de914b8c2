package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/geostack-labs/geoforge/internal/table"
)

func sampleTable() *table.Table {
	return table.MustNew(
		&table.Float64Column{ColName: "x", Values: []float64{1, 2, 3}},
		&table.StringColumn{ColName: "tag", Values: []string{"a", "b", "c"}},
	)
}

func TestEncodeDigestIsDeterministic(t *testing.T) {
	a, err := encodeArrow(sampleTable())
	if err != nil {
		t.Fatalf("encodeArrow failed: %v", err)
	}
	b, err := encodeArrow(sampleTable())
	if err != nil {
		t.Fatalf("encodeArrow failed: %v", err)
	}
	if digest(a) != digest(b) {
		t.Error("same table produced different digests")
	}
}

func TestDigestChangesWithContent(t *testing.T) {
	a, _ := encodeArrow(sampleTable())
	other := table.MustNew(&table.Float64Column{ColName: "x", Values: []float64{9}})
	b, _ := encodeArrow(other)
	if digest(a) == digest(b) {
		t.Error("different tables produced the same digest")
	}
}

func TestMemStoreSubmitAndOpen(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore()

	ref, err := st.SubmitTable(ctx, sampleTable())
	if err != nil {
		t.Fatalf("SubmitTable failed: %v", err)
	}
	if ref.Length != 3 || ref.Width != 2 {
		t.Errorf("ref = %+v", ref)
	}

	rc, err := st.Open(ref.Data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()
	payload, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if digest(payload) != ref.Data {
		t.Error("payload does not hash to its own digest")
	}

	if _, err := st.Open("missing"); err == nil {
		t.Error("Open on unknown digest should fail")
	}
}

func TestMemStoreDeduplicates(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore()

	r1, _ := st.SubmitTable(ctx, sampleTable())
	r2, _ := st.SubmitTable(ctx, sampleTable())
	if r1.Data != r2.Data {
		t.Errorf("digests differ: %s vs %s", r1.Data, r2.Data)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d blobs, want 1", st.Len())
	}
}

func TestDirStoreSubmitOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	st, err := NewDirStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}

	ref, err := st.SubmitTable(ctx, sampleTable())
	if err != nil {
		t.Fatalf("SubmitTable failed: %v", err)
	}

	rc, err := st.Open(ref.Data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()
	payload, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if digest(payload) != ref.Data {
		t.Error("payload does not hash to its own digest")
	}
}

func TestDirStoreResubmitIsNoOp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewDirStore(dir, nil)
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}

	ref, _ := st.SubmitTable(ctx, sampleTable())
	path := filepath.Join(dir, ref.Data+".arrow")
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("blob file missing: %v", err)
	}

	if _, err := st.SubmitTable(ctx, sampleTable()); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	after, _ := os.Stat(path)
	if !after.ModTime().Equal(before.ModTime()) {
		t.Error("resubmit rewrote an existing blob")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("cache dir has %d files, want 1", len(entries))
	}
}

func TestDirStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	if _, err := NewDirStore(dir, nil); err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir not created: %v", err)
	}
}

func TestDirStoreOpenUnknownDigest(t *testing.T) {
	st, _ := NewDirStore(t.TempDir(), nil)
	if _, err := st.Open("deadbeef"); err == nil {
		t.Error("Open on unknown digest should fail")
	}
}
