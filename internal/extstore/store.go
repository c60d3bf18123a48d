// Package extstore holds the canonical in-memory extension collection and the
// current filter selection.
//
// Indices address the canonical collection. Any Remove shifts every higher
// index down by one, so an index captured before a Remove must be re-derived
// from the current Visible result and never cached across renders.
//
// A Store is not safe for concurrent use; it is owned by a single
// event-processing goroutine (see package session).
package extstore

import (
	"fmt"

	"github.com/starford/extdeck/internal/apperr"
	"github.com/starford/extdeck/internal/models"
)

// Entry is a visible record paired with its canonical index.
type Entry struct {
	Index     int
	Extension models.Extension
}

// Store is the extension collection plus the active filter.
type Store struct {
	items  []models.Extension
	filter models.Filter
}

// New returns an empty store with the "all" filter.
func New() *Store {
	return &Store{filter: models.FilterAll}
}

// Load replaces the collection wholesale. The supplied slice is copied.
func (s *Store) Load(records []models.Extension) {
	s.items = make([]models.Extension, len(records))
	copy(s.items, records)
}

// Len returns the size of the canonical collection.
func (s *Store) Len() int { return len(s.items) }

// At returns the record at index.
func (s *Store) At(index int) (models.Extension, error) {
	if err := s.check(index); err != nil {
		return models.Extension{}, err
	}
	return s.items[index], nil
}

// Toggle flips IsActive on the record at index and returns the updated record.
func (s *Store) Toggle(index int) (models.Extension, error) {
	if err := s.check(index); err != nil {
		return models.Extension{}, err
	}
	s.items[index].IsActive = !s.items[index].IsActive
	return s.items[index], nil
}

// Remove deletes the record at index and returns it.
func (s *Store) Remove(index int) (models.Extension, error) {
	if err := s.check(index); err != nil {
		return models.Extension{}, err
	}
	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	return removed, nil
}

// SetFilter replaces the current filter. It never touches the collection.
func (s *Store) SetFilter(mode models.Filter) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidFilter, mode)
	}
	s.filter = mode
	return nil
}

// Filter returns the current filter.
func (s *Store) Filter() models.Filter { return s.filter }

// Items returns a copy of the canonical collection.
func (s *Store) Items() []models.Extension {
	out := make([]models.Extension, len(s.items))
	copy(out, s.items)
	return out
}

// Visible returns the records matching the current filter in collection
// order. The result is freshly allocated on every call.
func (s *Store) Visible() []Entry {
	out := make([]Entry, 0, len(s.items))
	for i, ext := range s.items {
		if s.filter.Matches(ext) {
			out = append(out, Entry{Index: i, Extension: ext})
		}
	}
	return out
}

// VisibleItems is Visible without the canonical indices.
func (s *Store) VisibleItems() []models.Extension {
	entries := s.Visible()
	out := make([]models.Extension, len(entries))
	for i, e := range entries {
		out[i] = e.Extension
	}
	return out
}

func (s *Store) check(index int) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: index %d, len %d", apperr.ErrIndexOutOfRange, index, len(s.items))
	}
	return nil
}
