// Package store persists rectangular tables as columnar blobs and hands back
// opaque references for embedding in entity trees. Payloads are
// content-addressed: the same table always yields the same reference, which
// makes re-submission and upload retries idempotent.
package store

import (
	"context"
	"io"

	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/table"
)

// Columnar accepts a table and returns a reference usable inside entity
// trees. Implementations must accept heterogeneous column schemas.
type Columnar interface {
	SubmitTable(ctx context.Context, tbl *table.Table) (object.Reference, error)
}

// BlobSource resolves a reference's content pointer back to its payload so
// the uploader can push it to durable storage.
type BlobSource interface {
	Open(digest string) (io.ReadCloser, error)
}
