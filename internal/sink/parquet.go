package sink

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	"github.com/nvandessel/navigator/internal/tables"
)

// DefaultRowGroupSize is the number of rows per Parquet row group and per
// Arrow record batch.
const DefaultRowGroupSize = 64 * 1024

// ParquetSink writes each table to <dir>/<table>.parquet with Snappy
// compression. Timestamps are stored as microseconds adjusted to UTC and
// dates as Date32.
type ParquetSink struct {
	dir          string
	rowGroupSize int
	mem          memory.Allocator
}

// NewParquetSink creates a sink rooted at dir.
func NewParquetSink(dir string) *ParquetSink {
	return &ParquetSink{
		dir:          dir,
		rowGroupSize: DefaultRowGroupSize,
		mem:          memory.DefaultAllocator,
	}
}

// Format implements Sink.
func (s *ParquetSink) Format() string { return FormatParquet }

// Write implements Sink.
func (s *ParquetSink) Write(ctx context.Context, t *tables.Table) (Output, error) {
	schema, err := ArrowSchema(t)
	if err != nil {
		return Output{}, err
	}

	name := t.Name + ".parquet"
	err = writeFile(filepath.Join(s.dir, name), func(w io.Writer) error {
		props := parquet.NewWriterProperties(
			parquet.WithCompression(compress.Codecs.Snappy),
			parquet.WithMaxRowGroupLength(int64(s.rowGroupSize)),
		)
		fw, err := pqarrow.NewFileWriter(schema, w, props, pqarrow.DefaultWriterProps())
		if err != nil {
			return fmt.Errorf("creating parquet writer: %w", err)
		}

		for start := 0; start < t.Len(); start += s.rowGroupSize {
			if err := ctx.Err(); err != nil {
				fw.Close()
				return err
			}
			end := min(start+s.rowGroupSize, t.Len())
			rec, err := s.record(schema, t, start, end)
			if err != nil {
				fw.Close()
				return err
			}
			err = fw.Write(rec)
			rec.Release()
			if err != nil {
				fw.Close()
				return fmt.Errorf("writing rows %d-%d: %w", start, end, err)
			}
		}
		return fw.Close()
	})
	if err != nil {
		return Output{}, err
	}
	return Output{Table: t.Name, Format: FormatParquet, Path: name, Rows: t.Len()}, nil
}

// ArrowSchema maps a table layout to an Arrow schema.
func ArrowSchema(t *tables.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(t.Columns))
	for i, col := range t.Columns {
		dt, err := arrowType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, col.Name, err)
		}
		fields[i] = arrow.Field{Name: col.Name, Type: dt, Nullable: col.Nullable}
	}
	return arrow.NewSchema(fields, nil), nil
}

func arrowType(t tables.Type) (arrow.DataType, error) {
	switch t {
	case tables.String, tables.JSON:
		return arrow.BinaryTypes.String, nil
	case tables.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case tables.Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case tables.Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case tables.Timestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	case tables.Date:
		return arrow.FixedWidthTypes.Date32, nil
	default:
		return nil, fmt.Errorf("unsupported column type %s", t)
	}
}

// record builds one Arrow record from rows [start, end).
func (s *ParquetSink) record(schema *arrow.Schema, t *tables.Table, start, end int) (arrow.Record, error) {
	b := array.NewRecordBuilder(s.mem, schema)
	defer b.Release()

	for c, col := range t.Columns {
		fb := b.Field(c)
		fb.Reserve(end - start)
		for r := start; r < end; r++ {
			v := t.Rows[r][c]
			if v == nil {
				fb.AppendNull()
				continue
			}
			if err := appendValue(fb, col.Type, v); err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", t.Name, r, col.Name, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendValue(fb array.Builder, typ tables.Type, v any) error {
	var ok bool
	switch typ {
	case tables.String, tables.JSON:
		var s string
		if s, ok = v.(string); ok {
			fb.(*array.StringBuilder).Append(s)
		}
	case tables.Int64:
		var n int64
		if n, ok = v.(int64); ok {
			fb.(*array.Int64Builder).Append(n)
		}
	case tables.Float64:
		var f float64
		if f, ok = v.(float64); ok {
			fb.(*array.Float64Builder).Append(f)
		}
	case tables.Bool:
		var bv bool
		if bv, ok = v.(bool); ok {
			fb.(*array.BooleanBuilder).Append(bv)
		}
	case tables.Timestamp:
		var ts time.Time
		if ts, ok = v.(time.Time); ok {
			fb.(*array.TimestampBuilder).Append(arrow.Timestamp(ts.UnixMicro()))
		}
	case tables.Date:
		var d time.Time
		if d, ok = v.(time.Time); ok {
			fb.(*array.Date32Builder).Append(arrow.Date32FromTime(d))
		}
	}
	if !ok {
		return fmt.Errorf("value %T does not match column type %s", v, typ)
	}
	return nil
}
