package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/table"
)

// DirStore writes encoded tables to digest-named files under a cache
// directory. Submitting the same table twice is a no-op.
type DirStore struct {
	dir    string
	logger *slog.Logger
}

// NewDirStore creates the cache directory if needed.
func NewDirStore(dir string, logger *slog.Logger) (*DirStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create blob cache dir: %w", err)
	}
	return &DirStore{dir: dir, logger: logger}, nil
}

// SubmitTable encodes the table and persists it under its content digest.
func (s *DirStore) SubmitTable(_ context.Context, tbl *table.Table) (object.Reference, error) {
	payload, err := encodeArrow(tbl)
	if err != nil {
		return object.Reference{}, err
	}
	d := digest(payload)
	path := s.path(d)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, payload, 0640); err != nil {
			return object.Reference{}, fmt.Errorf("write blob %s: %w", d, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			return object.Reference{}, fmt.Errorf("write blob %s: %w", d, err)
		}
		s.logger.Debug("stored blob", "digest", d, "rows", tbl.NumRows(), "cols", tbl.NumCols())
	}

	return object.Reference{
		Data:   d,
		Length: int64(tbl.NumRows()),
		Width:  int64(tbl.NumCols()),
	}, nil
}

// Open returns the payload for a previously submitted digest.
func (s *DirStore) Open(digest string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(digest))
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", digest, err)
	}
	return f, nil
}

func (s *DirStore) path(digest string) string {
	return filepath.Join(s.dir, digest+".arrow")
}

var (
	_ Columnar   = (*DirStore)(nil)
	_ BlobSource = (*DirStore)(nil)
)
