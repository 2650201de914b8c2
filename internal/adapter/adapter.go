// Package adapter provides the input boundary: database-backed loaders that
// ingest CSV and Parquet files and hand them to the builders as in-memory
// tables.
package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/geostack-labs/geoforge/internal/table"
)

// Config holds the configuration for an adapter connection.
type Config struct {
	// Path is the database file path. Empty or ":memory:" means in-memory,
	// which is the normal mode: input files are staged, scanned, discarded.
	Path string
}

// Adapter loads tabular input files and reads them back as tables.
type Adapter interface {
	// Connect establishes the connection.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// LoadCSV stages a CSV file as a named table with inferred schema.
	LoadCSV(ctx context.Context, tableName, filePath string) error

	// LoadParquet stages a Parquet file as a named table.
	LoadParquet(ctx context.Context, tableName, filePath string) error

	// ReadTable scans a staged table into memory.
	ReadTable(ctx context.Context, tableName string) (*table.Table, error)

	// Name returns the adapter name (e.g. "duckdb").
	Name() string
}

// Factory creates a fresh adapter instance.
type Factory func() Adapter

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes an adapter available under the given name. Called from
// driver init functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates an adapter by name.
func New(name string) (Adapter, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown adapter %q (available: %v)", name, List())
	}
	return factory(), nil
}

// IsRegistered reports whether an adapter name is known.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// List returns the registered adapter names, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InputNotFoundError reports a source file that does not exist. Loading
// fails with it before any staging happens.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input not found: %s", e.Path)
}
