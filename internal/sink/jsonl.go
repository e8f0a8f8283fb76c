package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/nvandessel/navigator/internal/tables"
)

// JSONLSink writes each table to <dir>/<table>.jsonl, one object per row
// with keys in column order. JSON columns are embedded as nested documents.
type JSONLSink struct {
	dir string
}

// NewJSONLSink creates a sink rooted at dir.
func NewJSONLSink(dir string) *JSONLSink {
	return &JSONLSink{dir: dir}
}

// Format implements Sink.
func (s *JSONLSink) Format() string { return FormatJSONL }

// Write implements Sink.
func (s *JSONLSink) Write(ctx context.Context, t *tables.Table) (Output, error) {
	name := t.Name + ".jsonl"
	err := writeFile(filepath.Join(s.dir, name), func(w io.Writer) error {
		var line bytes.Buffer
		for i, row := range t.Rows {
			if i%10000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			line.Reset()
			if err := encodeRow(&line, t.Columns, row); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			if _, err := w.Write(line.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Output{}, err
	}
	return Output{Table: t.Name, Format: FormatJSONL, Path: name, Rows: t.Len()}, nil
}

func encodeRow(buf *bytes.Buffer, cols []tables.Column, row []any) error {
	buf.WriteByte('{')
	for i, col := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := jsonValue(col, row[i])
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteString("}\n")
	return nil
}

func jsonValue(col tables.Column, v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch col.Type {
	case tables.JSON:
		raw := []byte(v.(string))
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid JSON document")
		}
		return raw, nil
	case tables.Timestamp, tables.Date:
		s, _ := tables.FormatCell(col, v)
		return json.Marshal(s)
	default:
		return json.Marshal(v)
	}
}
