package controller

import (
	"fmt"
	"slices"

	"github.com/starford/extdeck/internal/apperr"
	"github.com/starford/extdeck/internal/extstore"
	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/view"
)

// Filters is the filter control set. The controls are fixed at construction
// and exactly one of them is active at any time: the one matching the store's
// filter.
type Filters struct {
	store    *extstore.Store
	controls []models.Filter
}

// NewFilters discovers the given controls once. With no modes it uses every
// known filter in the default order.
func NewFilters(store *extstore.Store, modes ...models.Filter) *Filters {
	if len(modes) == 0 {
		modes = models.Filters
	}
	return &Filters{store: store, controls: slices.Clone(modes)}
}

// Select activates mode. Selecting the current mode is a no-op and reports
// changed=false.
func (f *Filters) Select(mode models.Filter) (bool, error) {
	if !slices.Contains(f.controls, mode) {
		return false, fmt.Errorf("%w: no control for %q", apperr.ErrInvalidFilter, mode)
	}
	if f.store.Filter() == mode {
		return false, nil
	}
	if err := f.store.SetFilter(mode); err != nil {
		return false, err
	}
	return true, nil
}

// Active returns the selected mode.
func (f *Filters) Active() models.Filter { return f.store.Filter() }

// Next returns the control after the active one, wrapping around.
func (f *Filters) Next() models.Filter {
	i := slices.Index(f.controls, f.store.Filter())
	return f.controls[(i+1)%len(f.controls)]
}

// Controls describes the buttons with the active indicator set.
func (f *Filters) Controls() []view.FilterControl {
	active := f.store.Filter()
	out := make([]view.FilterControl, len(f.controls))
	for i, m := range f.controls {
		out[i] = view.FilterControl{Mode: m, Label: m.Label(), Active: m == active}
	}
	return out
}
