package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/geostack-labs/geoforge/internal/table"
)

func init() {
	Register("duckdb", func() Adapter { return NewDuckDBAdapter() })
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DuckDBAdapter stages input files in a DuckDB database and scans them back
// as in-memory tables.
type DuckDBAdapter struct {
	db     *sql.DB
	config Config
}

// NewDuckDBAdapter creates a new DuckDB adapter instance.
func NewDuckDBAdapter() *DuckDBAdapter {
	return &DuckDBAdapter{}
}

// Name returns "duckdb".
func (a *DuckDBAdapter) Name() string { return "duckdb" }

// Connect establishes a connection to DuckDB.
// Use ":memory:" or an empty path for an in-memory database.
func (a *DuckDBAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == ":memory:" {
		path = ""
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.db = db
	a.config = cfg
	return nil
}

// Close closes the DuckDB connection.
func (a *DuckDBAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// LoadCSV stages a CSV file with automatic schema inference.
func (a *DuckDBAdapter) LoadCSV(ctx context.Context, tableName, filePath string) error {
	return a.loadFile(ctx, tableName, filePath, "read_csv_auto('%s', header=true)")
}

// LoadParquet stages a Parquet file.
func (a *DuckDBAdapter) LoadParquet(ctx context.Context, tableName, filePath string) error {
	return a.loadFile(ctx, tableName, filePath, "read_parquet('%s')")
}

func (a *DuckDBAdapter) loadFile(ctx context.Context, tableName, filePath, readerFmt string) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if err := validIdent(tableName); err != nil {
		return err
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return &InputNotFoundError{Path: filePath}
	}

	reader := fmt.Sprintf(readerFmt, strings.ReplaceAll(absPath, "'", "''"))
	query := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM %s", tableName, reader)
	if _, err := a.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to load %s: %w", filePath, err)
	}
	return nil
}

// ReadTable scans a staged table into memory, preserving column order and
// mapping DuckDB types onto the table column kinds: floating types become
// float64 columns, signed integers int64, unsigned integers uint64, and
// everything else strings.
func (a *DuckDBAdapter) ReadTable(ctx context.Context, tableName string) (*table.Table, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if err := validIdent(tableName); err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, "SELECT * FROM "+tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", tableName, err)
	}
	defer func() { _ = rows.Close() }()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	builders := make([]columnBuilder, len(colTypes))
	for i, ct := range colTypes {
		builders[i] = newColumnBuilder(ct.Name(), ct.DatabaseTypeName())
	}

	values := make([]any, len(colTypes))
	ptrs := make([]any, len(colTypes))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			builders[i].append(v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table %s: %w", tableName, err)
	}

	cols := make([]table.Column, len(builders))
	for i, b := range builders {
		cols[i] = b.column()
	}
	return table.New(cols...)
}

func validIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// columnBuilder accumulates scanned values into one typed column.
type columnBuilder interface {
	append(v any)
	column() table.Column
}

func newColumnBuilder(name, dbType string) columnBuilder {
	switch strings.ToUpper(dbType) {
	case "DOUBLE", "FLOAT", "REAL", "DECIMAL":
		return &floatBuilder{name: name}
	case "BIGINT", "INTEGER", "SMALLINT", "TINYINT", "INT", "HUGEINT":
		return &intBuilder{name: name}
	case "UBIGINT", "UINTEGER", "USMALLINT", "UTINYINT":
		return &uintBuilder{name: name}
	default:
		return &stringBuilder{name: name}
	}
}

type floatBuilder struct {
	name   string
	values []float64
}

func (b *floatBuilder) append(v any) {
	switch x := v.(type) {
	case nil:
		b.values = append(b.values, math.NaN())
	case float64:
		b.values = append(b.values, x)
	case float32:
		b.values = append(b.values, float64(x))
	case int64:
		b.values = append(b.values, float64(x))
	case int32:
		b.values = append(b.values, float64(x))
	default:
		b.values = append(b.values, math.NaN())
	}
}

func (b *floatBuilder) column() table.Column {
	return &table.Float64Column{ColName: b.name, Values: b.values}
}

type intBuilder struct {
	name   string
	values []int64
	valid  []bool
}

func (b *intBuilder) append(v any) {
	switch x := v.(type) {
	case nil:
		b.values = append(b.values, 0)
		b.valid = append(b.valid, false)
	case int64:
		b.values = append(b.values, x)
		b.valid = append(b.valid, true)
	case int32:
		b.values = append(b.values, int64(x))
		b.valid = append(b.valid, true)
	case int16:
		b.values = append(b.values, int64(x))
		b.valid = append(b.valid, true)
	case int8:
		b.values = append(b.values, int64(x))
		b.valid = append(b.valid, true)
	case int:
		b.values = append(b.values, int64(x))
		b.valid = append(b.valid, true)
	default:
		b.values = append(b.values, 0)
		b.valid = append(b.valid, false)
	}
}

func (b *intBuilder) column() table.Column {
	return &table.Int64Column{ColName: b.name, Values: b.values, Valid: b.valid}
}

type uintBuilder struct {
	name   string
	values []uint64
	valid  []bool
}

func (b *uintBuilder) append(v any) {
	switch x := v.(type) {
	case nil:
		b.values = append(b.values, 0)
		b.valid = append(b.valid, false)
	case uint64:
		b.values = append(b.values, x)
		b.valid = append(b.valid, true)
	case uint32:
		b.values = append(b.values, uint64(x))
		b.valid = append(b.valid, true)
	case uint16:
		b.values = append(b.values, uint64(x))
		b.valid = append(b.valid, true)
	case uint8:
		b.values = append(b.values, uint64(x))
		b.valid = append(b.valid, true)
	default:
		b.values = append(b.values, 0)
		b.valid = append(b.valid, false)
	}
}

func (b *uintBuilder) column() table.Column {
	return &table.Uint64Column{ColName: b.name, Values: b.values, Valid: b.valid}
}

type stringBuilder struct {
	name   string
	values []string
	valid  []bool
}

func (b *stringBuilder) append(v any) {
	switch x := v.(type) {
	case nil:
		b.values = append(b.values, "")
		b.valid = append(b.valid, false)
	case string:
		b.values = append(b.values, x)
		b.valid = append(b.valid, true)
	case []byte:
		b.values = append(b.values, string(x))
		b.valid = append(b.valid, true)
	case bool:
		b.values = append(b.values, fmt.Sprintf("%t", x))
		b.valid = append(b.valid, true)
	case time.Time:
		b.values = append(b.values, x.Format(time.RFC3339))
		b.valid = append(b.valid, true)
	default:
		b.values = append(b.values, fmt.Sprint(x))
		b.valid = append(b.valid, true)
	}
}

func (b *stringBuilder) column() table.Column {
	return &table.StringColumn{ColName: b.name, Values: b.values, Valid: b.valid}
}

// Ensure DuckDBAdapter implements Adapter interface
var _ Adapter = (*DuckDBAdapter)(nil)
