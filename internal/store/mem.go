package store

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/table"
)

// MemStore keeps encoded payloads in memory. Used for dry runs and tests.
type MemStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	tables map[string]*table.Table
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		blobs:  make(map[string][]byte),
		tables: make(map[string]*table.Table),
	}
}

// SubmitTable encodes the table and retains the payload in memory.
func (s *MemStore) SubmitTable(_ context.Context, tbl *table.Table) (object.Reference, error) {
	payload, err := encodeArrow(tbl)
	if err != nil {
		return object.Reference{}, err
	}
	d := digest(payload)

	s.mu.Lock()
	s.blobs[d] = payload
	s.tables[d] = tbl
	s.mu.Unlock()

	return object.Reference{
		Data:   d,
		Length: int64(tbl.NumRows()),
		Width:  int64(tbl.NumCols()),
	}, nil
}

// Open returns the payload for a submitted digest.
func (s *MemStore) Open(digest string) (io.ReadCloser, error) {
	s.mu.Lock()
	payload, ok := s.blobs[digest]
	s.mu.Unlock()
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

// Table returns the submitted table behind a digest, for test inspection.
func (s *MemStore) Table(digest string) (*table.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tbl, ok := s.tables[digest]
	return tbl, ok
}

// Len reports how many distinct blobs have been submitted.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

var (
	_ Columnar   = (*MemStore)(nil)
	_ BlobSource = (*MemStore)(nil)
)
