// Package testutil provides shared fixtures for extension data and loggers.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/extdeck/internal/models"
)

// Pair returns the two-record collection used throughout the tests:
// A (active) followed by B (inactive).
func Pair() []models.Extension {
	return []models.Extension{
		{Name: "A", Description: "first", Logo: "/assets/a.svg", IsActive: true},
		{Name: "B", Description: "second", Logo: "/assets/b.svg", IsActive: false},
	}
}

// Sample returns a larger mixed collection.
func Sample() []models.Extension {
	return []models.Extension{
		{Name: "DevLens", Description: "Quickly inspect page layouts and visualize element boundaries.", Logo: "./assets/images/logo-devlens.svg", IsActive: true},
		{Name: "StyleSpy", Description: "Instantly analyze and copy CSS from any webpage element.", Logo: "./assets/images/logo-style-spy.svg", IsActive: true},
		{Name: "SpeedBoost", Description: "Optimizes browser resource usage to accelerate page loading.", Logo: "./assets/images/logo-speed-boost.svg", IsActive: false},
		{Name: "JSONWizard", Description: "Formats, validates, and prettifies JSON responses in-browser.", Logo: "./assets/images/logo-json-wizard.svg", IsActive: true},
		{Name: "TabMaster Pro", Description: "Organizes browser tabs into groups and sessions.", Logo: "./assets/images/logo-tab-master-pro.svg", IsActive: false},
	}
}

// WriteJSON marshals v into dir/name and returns the full path.
func WriteJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
