// Package pathutil resolves file names read from run manifests against the
// run directory.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RedactPath reduces a full path to .../<parent>/<basename> for error messages.
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	if parent == "." || parent == string(filepath.Separator) {
		return filepath.Base(cleaned)
	}
	return ".../" + parent + "/" + filepath.Base(cleaned)
}

// Within joins name onto dir and returns the result, or an error when name is
// absolute, contains a null byte, or escapes dir through ".." or a symlinked
// parent. The target need not exist.
func Within(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("path validation failed: name is empty")
	}
	if strings.ContainsRune(name, '\x00') {
		return "", fmt.Errorf("path validation failed: name contains null byte")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("path validation failed: %q is absolute", RedactPath(name))
	}

	base, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("path validation failed: cannot resolve %s: %w", RedactPath(dir), err)
	}
	base, err = resolveExisting(base)
	if err != nil {
		return "", err
	}

	joined := filepath.Join(base, name)
	resolvedParent, err := resolveExisting(filepath.Dir(joined))
	if err != nil {
		return "", err
	}
	resolved := filepath.Join(resolvedParent, filepath.Base(joined))
	if !isSubpath(resolved, base) || resolved == base {
		return "", fmt.Errorf("path validation failed: %q is outside %s", name, RedactPath(dir))
	}
	return filepath.Join(dir, name), nil
}

// resolveExisting evaluates symlinks on the deepest existing ancestor of
// path and re-appends the missing tail.
func resolveExisting(path string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved, nil
	}
	parent := filepath.Dir(path)
	if parent == path {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(path))
	}
	resolvedParent, err := resolveExisting(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(path)), nil
}

// isSubpath reports whether path is base or lies under it.
func isSubpath(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(os.PathSeparator))
}
