// Package manifest records what a generation run wrote: its params, row
// counts and a checksum per output file. The manifest carries no wall-clock
// time, so identical runs produce identical manifests.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nvandessel/navigator/internal/generator"
	"github.com/nvandessel/navigator/internal/pathutil"
	"github.com/nvandessel/navigator/internal/sink"
)

// Version is the manifest format version.
const Version = 1

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

// runNamespace scopes run ids derived from params.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/nvandessel/navigator/runs"))

// File is one written output file.
type File struct {
	Table    string `json:"table"`
	Format   string `json:"format"`
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Bytes    int64  `json:"bytes"`
	Checksum string `json:"checksum"`
}

// Manifest describes one generation run.
type Manifest struct {
	Version int              `json:"version"`
	RunID   string           `json:"run_id"`
	Params  generator.Params `json:"params"`
	Counts  map[string]int   `json:"counts"`
	Files   []File           `json:"files"`
}

// RunID derives a stable UUIDv5 from the run params.
func RunID(p generator.Params) (string, error) {
	canonical, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshaling params: %w", err)
	}
	return uuid.NewSHA1(runNamespace, canonical).String(), nil
}

// Build hashes every file output under dir and assembles the manifest.
// Outputs without a path, such as database tables, are not listed.
func Build(params generator.Params, counts map[string]int, dir string, outputs []sink.Output) (*Manifest, error) {
	id, err := RunID(params)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Version: Version,
		RunID:   id,
		Params:  params,
		Counts:  counts,
		Files:   make([]File, 0, len(outputs)),
	}
	for _, out := range outputs {
		if out.Path == "" {
			continue
		}
		sum, size, err := checksum(filepath.Join(dir, out.Path))
		if err != nil {
			return nil, err
		}
		m.Files = append(m.Files, File{
			Table:    out.Table,
			Format:   out.Format,
			Path:     out.Path,
			Rows:     out.Rows,
			Bytes:    size,
			Checksum: sum,
		})
	}
	return m, nil
}

// Write writes the manifest to dir/manifest.json via a temp file and rename.
func (m *Manifest) Write(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing manifest temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming manifest file: %w", err)
	}
	return nil
}

// Read loads dir/manifest.json.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	return &m, nil
}

// Verify re-hashes every file listed in dir's manifest and returns the
// joined mismatches, or nil when all files match.
func Verify(dir string) (*Manifest, error) {
	m, err := Read(dir)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, f := range m.Files {
		path, err := pathutil.Within(dir, f.Path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sum, size, err := checksum(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if sum != f.Checksum {
			errs = append(errs, fmt.Errorf("%s: checksum mismatch: expected %s, got %s", f.Path, f.Checksum, sum))
		} else if size != f.Bytes {
			errs = append(errs, fmt.Errorf("%s: size mismatch: expected %d, got %d", f.Path, f.Bytes, size))
		}
	}
	return m, errors.Join(errs...)
}

func checksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), n, nil
}
