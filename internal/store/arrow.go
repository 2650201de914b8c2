package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/geostack-labs/geoforge/internal/table"
)

// encodeArrow serializes a table to Arrow IPC file bytes. Column order and
// names are preserved; NaN floats stay as values so the missing marker
// survives the encoding.
func encodeArrow(tbl *table.Table) ([]byte, error) {
	pool := memory.NewGoAllocator()

	fields := make([]arrow.Field, 0, tbl.NumCols())
	for _, col := range tbl.Columns() {
		var dt arrow.DataType
		switch col.Kind() {
		case table.KindFloat64:
			dt = arrow.PrimitiveTypes.Float64
		case table.KindInt64:
			dt = arrow.PrimitiveTypes.Int64
		case table.KindUint64:
			dt = arrow.PrimitiveTypes.Uint64
		case table.KindString:
			dt = arrow.BinaryTypes.String
		default:
			return nil, fmt.Errorf("column %q: unsupported kind %s", col.Name(), col.Kind())
		}
		fields = append(fields, arrow.Field{Name: col.Name(), Type: dt, Nullable: true})
	}
	schema := arrow.NewSchema(fields, nil)

	rb := array.NewRecordBuilder(pool, schema)
	defer rb.Release()

	for i, col := range tbl.Columns() {
		switch c := col.(type) {
		case *table.Float64Column:
			rb.Field(i).(*array.Float64Builder).AppendValues(c.Values, nil)
		case *table.Int64Column:
			rb.Field(i).(*array.Int64Builder).AppendValues(c.Values, c.Valid)
		case *table.Uint64Column:
			rb.Field(i).(*array.Uint64Builder).AppendValues(c.Values, c.Valid)
		case *table.StringColumn:
			rb.Field(i).(*array.StringBuilder).AppendValues(c.Values, c.Valid)
		}
	}

	rec := rb.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := ipc.NewFileWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(pool))
	if err != nil {
		return nil, fmt.Errorf("open arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		return nil, fmt.Errorf("write arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close arrow writer: %w", err)
	}
	return buf.Bytes(), nil
}

// digest returns the hex sha256 of the payload, the content pointer stored
// in references.
func digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
