// Package assets resolves logo and icon files under a single root directory.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/extdeck/internal/apperr"
)

// Dir is a read-only asset directory.
type Dir struct {
	root string // absolute path
}

// NewDir creates a Dir rooted at root. The directory must already exist.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("assets: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("assets: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("assets: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute root directory.
func (d *Dir) Root() string { return d.root }

// safePath resolves a relative path against the root and rejects any result
// that escapes it.
func (d *Dir) safePath(rel string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("assets: empty path")
	}
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("assets: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(d.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("assets: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("assets: path escapes root: %s", rel)
	}
	return abs, nil
}

// Resolve returns the absolute path of an existing regular file under the
// root. Missing files and directories yield apperr.ErrNotFound.
func (d *Dir) Resolve(rel string) (string, error) {
	abs, err := d.safePath(rel)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("assets: %s: %w", rel, apperr.ErrNotFound)
	}
	return abs, nil
}
