package source

import (
	"context"
	"os"

	"github.com/starford/extdeck/internal/models"
)

// File reads records from a JSON file on disk.
type File struct {
	path string
}

// NewFile creates a file fetcher.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the file location.
func (f *File) Path() string { return f.path }

// Fetch reads and decodes the file.
func (f *File) Fetch(ctx context.Context) ([]models.Extension, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadError(f.path, err)
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, loadError(f.path, err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, loadError(f.path, err)
	}
	return records, nil
}
