package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/nvandessel/navigator/internal/generator"
	"github.com/nvandessel/navigator/internal/sink"
	"github.com/nvandessel/navigator/internal/tables"
)

func params() generator.Params {
	return generator.Params{
		Seed: 42, Customers: 100, Vehicles: 50, Days: 7, EventTarget: 500,
		AsOf: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func writeRun(t *testing.T, dir string) *Manifest {
	t.Helper()
	ds, err := generator.Run(params(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	tabs, err := tables.FromDataset(ds)
	if err != nil {
		t.Fatal(err)
	}
	outputs, err := sink.WriteAll(context.Background(), []sink.Sink{sink.NewJSONLSink(dir)}, tabs)
	if err != nil {
		t.Fatal(err)
	}
	m, err := Build(params(), ds.Counts(), dir, outputs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := m.Write(dir); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m
}

func TestRunID(t *testing.T) {
	a, err := RunID(params())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := RunID(params())
	if a != b {
		t.Errorf("RunID not stable: %s vs %s", a, b)
	}

	id, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("RunID is not a UUID: %v", err)
	}
	if id.Version() != 5 {
		t.Errorf("UUID version = %d, want 5", id.Version())
	}

	p := params()
	p.Seed = 7
	if c, _ := RunID(p); c == a {
		t.Error("different params produced the same run id")
	}
}

func TestBuildAndRead(t *testing.T) {
	dir := t.TempDir()
	m := writeRun(t, dir)

	if len(m.Files) != len(tables.Names) {
		t.Fatalf("files = %d, want %d", len(m.Files), len(tables.Names))
	}
	for _, f := range m.Files {
		if !strings.HasPrefix(f.Checksum, "sha256:") || len(f.Checksum) != len("sha256:")+64 {
			t.Errorf("%s checksum = %q", f.Path, f.Checksum)
		}
		if f.Bytes == 0 && f.Rows > 0 {
			t.Errorf("%s has %d rows but zero bytes", f.Path, f.Rows)
		}
	}

	got, err := Read(dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("manifest round trip (-wrote +read):\n%s", diff)
	}
}

func TestManifestDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	writeRun(t, dirA)
	writeRun(t, dirB)

	a, err := os.ReadFile(filepath.Join(dirA, FileName))
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dirB, FileName))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(a), string(b)); diff != "" {
		t.Errorf("manifests differ:\n%s", diff)
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	writeRun(t, dir)

	if _, err := Verify(dir); err != nil {
		t.Fatalf("Verify on fresh run: %v", err)
	}

	path := filepath.Join(dir, "raw_leads.jsonl")
	if err := os.WriteFile(path, []byte("tampered\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "raw_vehicles.jsonl")); err != nil {
		t.Fatal(err)
	}

	_, err := Verify(dir)
	if err == nil {
		t.Fatal("expected verification failure")
	}
	if !strings.Contains(err.Error(), "raw_leads.jsonl: checksum mismatch") {
		t.Errorf("tampered file not reported: %v", err)
	}
	if !strings.Contains(err.Error(), "raw_vehicles.jsonl") {
		t.Errorf("missing file not reported: %v", err)
	}
}

func TestVerifyRejectsEscapingPath(t *testing.T) {
	dir := t.TempDir()
	m := writeRun(t, dir)
	m.Files = append(m.Files, File{Table: "raw_leads", Path: "../outside.jsonl"})
	if err := m.Write(dir); err != nil {
		t.Fatal(err)
	}

	_, err := Verify(dir)
	if err == nil || !strings.Contains(err.Error(), "outside") {
		t.Errorf("err = %v, want path outside run directory", err)
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Read(dir); err == nil {
		t.Error("expected error for missing manifest")
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(`{"version":99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(dir); err == nil || !strings.Contains(err.Error(), "unsupported manifest version") {
		t.Errorf("err = %v", err)
	}
}

func TestBuildSkipsDatabaseOutputs(t *testing.T) {
	m, err := Build(params(), nil, t.TempDir(), []sink.Output{{Table: "raw_events", Format: sink.FormatPostgres, Rows: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Files) != 0 {
		t.Errorf("files = %+v, want none", m.Files)
	}
}
