// Package service orchestrates the build tools: load input tables, validate,
// assemble the entity tree, round-trip it against the schema, and - unless
// the call is a dry run - upload the referenced data and create the object.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geostack-labs/geoforge/internal/adapter"
	"github.com/geostack-labs/geoforge/internal/builder"
	"github.com/geostack-labs/geoforge/internal/object"
	"github.com/geostack-labs/geoforge/internal/remote"
	"github.com/geostack-labs/geoforge/internal/store"
	"github.com/geostack-labs/geoforge/internal/table"
)

// Build outcome statuses. Structural failures are pre-network and carry the
// phase that rejected the build.
const (
	StatusValidationPassed       = "validation_passed"
	StatusCreated                = "created"
	StatusError                  = "error"
	StatusValidationFailed       = "validation_failed"
	StatusSchemaValidationFailed = "schema_validation_failed"
	StatusCreationFailed         = "creation_failed"
)

// BlobStore persists tables and serves their payloads back for upload.
type BlobStore interface {
	store.Columnar
	store.BlobSource
}

// Creator is the slice of the remote client the service needs.
type Creator interface {
	UploadReferencedData(ctx context.Context, workspaceID string, obj map[string]any, src store.BlobSource, cache remote.UploadCache) error
	CreateObject(ctx context.Context, workspaceID, path string, obj map[string]any) (*remote.ObjectMetadata, error)
}

// Service wires the collaborators around the builder core.
type Service struct {
	AdapterName string
	Store       BlobStore
	Remote      Creator
	Cache       remote.UploadCache
	Logger      *slog.Logger
}

// New creates a service with the duckdb adapter as default input loader.
func New(st BlobStore, rc Creator, cache remote.UploadCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		AdapterName: "duckdb",
		Store:       st,
		Remote:      rc,
		Cache:       cache,
		Logger:      logger,
	}
}

// Validation summarizes one build for the caller: row counts per table,
// observed column names, the computed bounding volume, attribute names that
// made it in, and any warnings.
type Validation struct {
	Rows        map[string]int      `json:"rows,omitempty"`
	Columns     map[string][]string `json:"columns,omitempty"`
	BoundingBox *object.BoundingBox `json:"bounding_box,omitempty"`
	Attributes  []string            `json:"attributes,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
	Errors      []string            `json:"errors,omitempty"`
}

// Outcome is the result envelope of one tool call.
type Outcome struct {
	Status     string                 `json:"status"`
	Message    string                 `json:"message,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Validation *Validation            `json:"validation,omitempty"`
	Object     *remote.ObjectMetadata `json:"object,omitempty"`
}

// Target names the destination of a build: workspace, object path, display
// metadata, and whether this is a dry run.
type Target struct {
	WorkspaceID string            `json:"workspace_id"`
	ObjectPath  string            `json:"object_path"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	CRS         string            `json:"coordinate_reference_system,omitempty"`
	DryRun      bool              `json:"dry_run"`
}

// loadTables stages each named file through a fresh in-memory adapter and
// scans it back. Keys name the tables; values are file paths.
func (s *Service) loadTables(ctx context.Context, files map[string]string) (map[string]*table.Table, error) {
	a, err := adapter.New(s.AdapterName)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, adapter.Config{}); err != nil {
		return nil, err
	}
	defer func() { _ = a.Close() }()

	out := make(map[string]*table.Table, len(files))
	for name, path := range files {
		if err := loadFile(ctx, a, name, path); err != nil {
			return nil, err
		}
		tbl, err := a.ReadTable(ctx, name)
		if err != nil {
			return nil, err
		}
		out[name] = tbl
	}
	return out, nil
}

func loadFile(ctx context.Context, a adapter.Adapter, name, path string) error {
	if isParquet(path) {
		return a.LoadParquet(ctx, name, path)
	}
	return a.LoadCSV(ctx, name, path)
}

func isParquet(path string) bool {
	n := len(path)
	return n > 8 && path[n-8:] == ".parquet"
}

// finish runs the shared tail of every build: round-trip validation, then
// either the dry-run report or upload and create.
func (s *Service) finish(ctx context.Context, obj object.Object, res *builder.Result, target Target, val *Validation) *Outcome {
	val.BoundingBox = res.BoundingBox
	val.Attributes = res.Attributes
	val.Warnings = res.Warnings
	for name, n := range res.Rows {
		val.Rows[name] = n
	}

	m, err := object.RoundTrip(obj)
	if err != nil {
		return s.failure(err, val)
	}

	if target.DryRun {
		return &Outcome{
			Status:     StatusValidationPassed,
			Message:    "dry run passed; disable dry run to create the object",
			Validation: val,
		}
	}

	if err := s.Remote.UploadReferencedData(ctx, target.WorkspaceID, m, s.Store, s.Cache); err != nil {
		return s.failure(err, val)
	}
	meta, err := s.Remote.CreateObject(ctx, target.WorkspaceID, target.ObjectPath, m)
	if err != nil {
		return s.failure(err, val)
	}

	s.Logger.Info("created object",
		"path", meta.Path, "object_id", meta.ID, "version", meta.VersionID)
	return &Outcome{
		Status:     StatusCreated,
		Validation: val,
		Object:     meta,
	}
}

// failure maps an error onto the phase-specific outcome status.
func (s *Service) failure(err error, val *Validation) *Outcome {
	status := StatusError

	var (
		notFound  *adapter.InputNotFoundError
		colErr    *builder.ColumnMissingError
		valErr    *builder.ValidationError
		schemaErr *object.SchemaValidationError
		remoteErr *remote.RemoteError
	)
	switch {
	case errors.As(err, &notFound):
		status = StatusError
	case errors.As(err, &colErr), errors.As(err, &valErr):
		status = StatusValidationFailed
		if val != nil {
			val.Errors = append(val.Errors, err.Error())
		}
	case errors.As(err, &schemaErr):
		status = StatusSchemaValidationFailed
	case errors.As(err, &remoteErr):
		status = StatusCreationFailed
	}

	s.Logger.Warn("build failed", "status", status, "error", err)
	return &Outcome{
		Status:     status,
		Error:      err.Error(),
		Validation: val,
	}
}

func newValidation(tables map[string]*table.Table) *Validation {
	val := &Validation{
		Rows:    make(map[string]int, len(tables)),
		Columns: make(map[string][]string, len(tables)),
	}
	for name, tbl := range tables {
		val.Rows[name] = tbl.NumRows()
		val.Columns[name] = tbl.Names()
	}
	return val
}

func tagsOrEmpty(tags map[string]string) map[string]string {
	if tags == nil {
		return map[string]string{}
	}
	return tags
}

var errNoRemote = fmt.Errorf("no remote client configured")

// checkRemote guards non-dry-run calls when the service has no remote side.
func (s *Service) checkRemote(target Target) error {
	if target.DryRun {
		return nil
	}
	if s.Remote == nil {
		return errNoRemote
	}
	return nil
}
