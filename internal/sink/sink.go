// Package sink writes raw tables to their destinations: Parquet and JSONL
// files in an output directory, or bronze tables in Postgres.
package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nvandessel/navigator/internal/tables"
	"golang.org/x/sync/errgroup"
)

// Format names accepted by the output configuration.
const (
	FormatParquet  = "parquet"
	FormatJSONL    = "jsonl"
	FormatPostgres = "postgres"
)

// maxParallelWrites bounds concurrent table writes across all sinks.
const maxParallelWrites = 4

// Output records one table written by a sink. Path is relative to the sink's
// directory and empty for database sinks.
type Output struct {
	Table  string `json:"table"`
	Format string `json:"format"`
	Path   string `json:"path,omitempty"`
	Rows   int    `json:"rows"`
}

// Sink writes one table at a time. Implementations must allow Write to be
// called concurrently for different tables.
type Sink interface {
	Format() string
	Write(ctx context.Context, t *tables.Table) (Output, error)
}

// WriteAll writes every table to every sink, in parallel. Outputs are
// returned in sink-major, table-minor order regardless of completion order.
func WriteAll(ctx context.Context, sinks []Sink, tabs []*tables.Table) ([]Output, error) {
	outputs := make([]Output, len(sinks)*len(tabs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelWrites)
	for i, s := range sinks {
		for j, t := range tabs {
			slot := i*len(tabs) + j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, err := s.Write(gctx, t)
				if err != nil {
					return fmt.Errorf("%s sink: writing %s: %w", s.Format(), t.Name, err)
				}
				outputs[slot] = out
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// writeFile writes path through a buffered temp file and renames it into
// place, so readers never observe a partial table.
func writeFile(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	bw := bufio.NewWriterSize(f, 1<<20)
	if err := write(bw); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("flushing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}
