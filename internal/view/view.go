// Package view projects store state into an immutable, surface-independent
// description of the extension list. HTML, terminal and tool surfaces consume
// the same description.
package view

import (
	"fmt"

	"github.com/starford/extdeck/internal/extstore"
	"github.com/starford/extdeck/internal/models"
)

// Placeholder texts.
const (
	NoneAvailable = "No extensions available yet"
	NoneFound     = "No extensions found."
	LoadFailed    = "Failed to load extensions. Please refresh the page."
	Loading       = "Loading extensions..."
)

// ActionKind names a per-card control.
type ActionKind string

// Card actions.
const (
	ActionToggle ActionKind = "toggle"
	ActionRemove ActionKind = "remove"
)

// Action is a control wired to a card. Index is the canonical store index of
// the record, never its position in the visible subset. Name is the record
// name at render time and lets the dispatcher detect a stale index.
type Action struct {
	Kind  ActionKind
	Index int
	Name  string
	// Confirm is the prompt shown before the action runs. Empty means the
	// action runs immediately.
	Confirm string
}

// Card describes one rendered extension.
type Card struct {
	Index       int
	Name        string
	Description string
	Logo        string
	IconAlt     string
	Active      bool
	ToggleLabel string
	Toggle      Action
	Remove      Action
}

// Content is the list area: either cards or a single placeholder.
type Content struct {
	Cards       []Card
	Placeholder string
}

// Empty reports whether the content is a placeholder.
func (c Content) Empty() bool { return len(c.Cards) == 0 }

// FilterControl describes one filter button.
type FilterControl struct {
	Mode   models.Filter
	Label  string
	Active bool
}

// Page is the full screen description.
type Page struct {
	Filters []FilterControl
	Content Content
	Failed  bool
	Loading bool
}

// Render builds the list content for the visible entries in the given
// order. collectionEmpty must report whether the whole collection is empty;
// it picks between the "none available" and "none found" placeholders.
func Render(visible []extstore.Entry, collectionEmpty bool) Content {
	if len(visible) == 0 {
		if collectionEmpty {
			return Content{Placeholder: NoneAvailable}
		}
		return Content{Placeholder: NoneFound}
	}
	cards := make([]Card, 0, len(visible))
	for _, e := range visible {
		cards = append(cards, NewCard(e))
	}
	return Content{Cards: cards}
}

// NewCard builds the card for a single entry.
func NewCard(e extstore.Entry) Card {
	ext := e.Extension
	return Card{
		Index:       e.Index,
		Name:        ext.Name,
		Description: ext.Description,
		Logo:        ext.Logo,
		IconAlt:     ext.Name + " icon",
		Active:      ext.IsActive,
		ToggleLabel: "Toggle " + ext.Name,
		Toggle:      Action{Kind: ActionToggle, Index: e.Index, Name: ext.Name},
		Remove: Action{
			Kind:    ActionRemove,
			Index:   e.Index,
			Name:    ext.Name,
			Confirm: RemovePrompt(ext.Name),
		},
	}
}

// RemovePrompt is the confirmation question for removing name.
func RemovePrompt(name string) string {
	return fmt.Sprintf("Are you sure you want to remove \"%s\"?", name)
}

// Failure is the page shown when the initial load fails.
func Failure() Page {
	return Page{Failed: true, Content: Content{Placeholder: LoadFailed}}
}

// Pending is the page shown while the initial load is in flight.
func Pending() Page {
	return Page{Loading: true, Content: Content{Placeholder: Loading}}
}
