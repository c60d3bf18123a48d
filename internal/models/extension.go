// Package models defines the domain types for extdeck.
package models

import (
	"fmt"
	"strings"

	"github.com/starford/extdeck/internal/apperr"
)

// Extension is a single entry of the extension list as supplied by the data
// source. It has no id field: its position in the canonical collection is its
// identity for mutation purposes.
type Extension struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	IsActive    bool   `json:"isActive"`
}

// Filter selects which extensions are visible.
type Filter string

// Filter modes.
const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterInactive Filter = "inactive"
)

// Filters lists every mode in control order.
var Filters = []Filter{FilterAll, FilterActive, FilterInactive}

// ParseFilter converts a raw mode value into a Filter.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterActive, FilterInactive:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", apperr.ErrInvalidFilter, s)
	}
}

// Valid reports whether f is one of the known modes.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterInactive:
		return true
	}
	return false
}

// Matches reports whether ext is visible under f.
func (f Filter) Matches(ext Extension) bool {
	switch f {
	case FilterActive:
		return ext.IsActive
	case FilterInactive:
		return !ext.IsActive
	default:
		return true
	}
}

// Label is the human-readable control label.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterInactive:
		return "Inactive"
	default:
		return "All"
	}
}

func (f Filter) String() string { return string(f) }
