// Package controller binds the extension store, the filter controls and the
// renderer together. It turns card actions into store mutations.
//
// A Controller is not safe for concurrent use. Every surface drives it from
// one event-processing goroutine.
package controller

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/extdeck/internal/apperr"
	"github.com/starford/extdeck/internal/extstore"
	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/view"
)

// ConfirmFunc asks the user to confirm prompt.
type ConfirmFunc func(prompt string) bool

// Confirmed always answers yes.
func Confirmed(string) bool { return true }

// Declined always answers no.
func Declined(string) bool { return false }

type loadState int

const (
	statePending loadState = iota
	stateLoaded
	stateFailed
)

// Controller owns the store for the lifetime of a session.
type Controller struct {
	store   *extstore.Store
	filters *Filters
	logger  *slog.Logger
	state   loadState
	loadErr error
}

// New creates a controller with an empty store in the pending state.
func New(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	store := extstore.New()
	return &Controller{
		store:   store,
		filters: NewFilters(store),
		logger:  logger,
	}
}

// Load replaces the collection and marks the session loaded. An empty
// collection is valid and renders the "none available" placeholder.
func (c *Controller) Load(records []models.Extension) {
	c.store.Load(records)
	c.state = stateLoaded
	c.loadErr = nil
	c.logger.Info("extensions loaded", slog.Int("count", len(records)))
}

// Fail records a terminal load failure. The cause is logged; the page shows
// only the static failure message.
func (c *Controller) Fail(err error) {
	c.state = stateFailed
	c.loadErr = err
	c.logger.Error("failed to load extensions", slog.String("error", err.Error()))
}

// Ready reports whether the initial load has resolved, successfully or not.
func (c *Controller) Ready() bool { return c.state != statePending }

// Loaded reports whether records are available for interaction.
func (c *Controller) Loaded() bool { return c.state == stateLoaded }

// LoadErr returns the load failure, if any.
func (c *Controller) LoadErr() error { return c.loadErr }

// Filter returns the active filter.
func (c *Controller) Filter() models.Filter { return c.filters.Active() }

// Len returns the size of the collection.
func (c *Controller) Len() int { return c.store.Len() }

// Visible returns the visible entries with canonical indices.
func (c *Controller) Visible() []extstore.Entry { return c.store.Visible() }

// Entries is Visible for callers that must not read an unloaded session.
func (c *Controller) Entries() ([]extstore.Entry, error) {
	if err := c.requireLoaded(); err != nil {
		return nil, err
	}
	return c.store.Visible(), nil
}

// Lookup returns the record at index after the same checks a mutation runs.
func (c *Controller) Lookup(index int, name string) (models.Extension, error) {
	if err := c.resolve(index, name); err != nil {
		return models.Extension{}, err
	}
	return c.store.At(index)
}

// Select changes the filter through the filter controls.
func (c *Controller) Select(mode models.Filter) (bool, error) {
	if err := c.requireLoaded(); err != nil {
		return false, err
	}
	changed, err := c.filters.Select(mode)
	if err != nil {
		return false, err
	}
	if changed {
		c.logger.Debug("filter changed", slog.String("mode", mode.String()))
	}
	return changed, nil
}

// NextFilter cycles to the next filter control.
func (c *Controller) NextFilter() (models.Filter, error) {
	mode := c.filters.Next()
	_, err := c.Select(mode)
	return mode, err
}

// Toggle flips the record at index. name must match the record currently at
// index.
func (c *Controller) Toggle(index int, name string) (models.Extension, error) {
	if err := c.resolve(index, name); err != nil {
		return models.Extension{}, err
	}
	ext, err := c.store.Toggle(index)
	if err != nil {
		return models.Extension{}, c.internal("toggle", index, err)
	}
	c.logger.Debug("extension toggled",
		slog.Int("index", index),
		slog.String("name", ext.Name),
		slog.Bool("active", ext.IsActive))
	return ext, nil
}

// Remove asks confirm and, when it agrees, deletes the record at index.
// removed is false when the user declined; the store is then untouched.
func (c *Controller) Remove(index int, name string, confirm ConfirmFunc) (removed bool, err error) {
	ext, err := c.Lookup(index, name)
	if err != nil {
		return false, err
	}
	if confirm == nil || !confirm(view.RemovePrompt(ext.Name)) {
		c.logger.Debug("remove declined", slog.Int("index", index), slog.String("name", ext.Name))
		return false, nil
	}
	if _, err := c.store.Remove(index); err != nil {
		return false, c.internal("remove", index, err)
	}
	c.logger.Debug("extension removed", slog.Int("index", index), slog.String("name", ext.Name))
	return true, nil
}

// Dispatch runs a card action.
func (c *Controller) Dispatch(a view.Action, confirm ConfirmFunc) error {
	switch a.Kind {
	case view.ActionToggle:
		_, err := c.Toggle(a.Index, a.Name)
		return err
	case view.ActionRemove:
		_, err := c.Remove(a.Index, a.Name, confirm)
		return err
	default:
		return fmt.Errorf("unknown action %q", a.Kind)
	}
}

// Page renders the current state.
func (c *Controller) Page() view.Page {
	switch c.state {
	case statePending:
		p := view.Pending()
		p.Filters = c.filters.Controls()
		return p
	case stateFailed:
		return view.Failure()
	}
	return view.Page{
		Filters: c.filters.Controls(),
		Content: view.Render(c.store.Visible(), c.store.Len() == 0),
	}
}

// resolve checks that index still addresses the record named name.
func (c *Controller) resolve(index int, name string) error {
	if err := c.requireLoaded(); err != nil {
		return err
	}
	ext, err := c.store.At(index)
	if err != nil {
		return c.internal("resolve", index, err)
	}
	if name != "" && ext.Name != name {
		err := fmt.Errorf("%w: index %d holds %q, not %q", apperr.ErrStaleIndex, index, ext.Name, name)
		return c.internal("resolve", index, err)
	}
	return nil
}

func (c *Controller) requireLoaded() error {
	if c.state != stateLoaded {
		return apperr.ErrNotLoaded
	}
	return nil
}

// internal logs index errors, which only occur when a caller holds an index
// from an outdated render.
func (c *Controller) internal(op string, index int, err error) error {
	if errors.Is(err, apperr.ErrIndexOutOfRange) || errors.Is(err, apperr.ErrStaleIndex) {
		c.logger.Error("invalid extension index",
			slog.String("op", op),
			slog.Int("index", index),
			slog.String("error", err.Error()))
	}
	return err
}
