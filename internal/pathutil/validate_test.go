package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestWithin(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()

	tests := []struct {
		name        string
		file        string
		want        string
		errContains string
	}{
		{name: "plain file", file: "customers.parquet", want: filepath.Join(dir, "customers.parquet")},
		{name: "nested file", file: filepath.Join("part", "events.jsonl"), want: filepath.Join(dir, "part", "events.jsonl")},
		{name: "cleaned dot segment", file: "./leads.jsonl", want: filepath.Join(dir, "leads.jsonl")},
		{name: "empty", file: "", errContains: "empty"},
		{name: "null byte", file: "events\x00.jsonl", errContains: "null byte"},
		{name: "absolute", file: filepath.Join(outside, "x.jsonl"), errContains: "absolute"},
		{name: "dot-dot escape", file: filepath.Join("..", "x.jsonl"), errContains: "outside"},
		{name: "dir itself", file: ".", errContains: "outside"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Within(dir, tt.file)
			if tt.errContains != "" {
				if err == nil {
					t.Fatalf("Within(%q) = %q, want error", tt.file, got)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Within(%q): %v", tt.file, err)
			}
			if got != tt.want {
				t.Errorf("Within(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestWithinSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	dir := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(dir, "link")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	if _, err := Within(dir, filepath.Join("link", "events.jsonl")); err == nil {
		t.Error("expected symlinked parent outside dir to be rejected")
	}
}

func TestWithinRelativeDir(t *testing.T) {
	t.Chdir(t.TempDir())
	got, err := Within("raw", "customers.jsonl")
	if err != nil {
		t.Fatalf("Within: %v", err)
	}
	if want := filepath.Join("raw", "customers.jsonl"); got != want {
		t.Errorf("Within = %q, want %q", got, want)
	}
}

func TestRedactPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"manifest.json", "manifest.json"},
		{"/manifest.json", "manifest.json"},
		{filepath.Join("/data", "raw", "manifest.json"), ".../raw/manifest.json"},
	}
	for _, tt := range tests {
		if got := RedactPath(tt.path); got != tt.want {
			t.Errorf("RedactPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
