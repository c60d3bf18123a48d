// Package session serialises every interaction with a controller onto one
// goroutine.
//
// Concurrency model: a single internal event loop owns the controller. Public
// methods send closures through a channel and wait for their result, so
// requests run strictly one at a time in arrival order and the controller
// needs no locks.
package session

import (
	"errors"
	"sync/atomic"

	"github.com/starford/extdeck/internal/controller"
	"github.com/starford/extdeck/internal/extstore"
	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/view"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("session closed")

// Change kinds passed to a Notifier.
const (
	KindLoaded   = "extensions.loaded"
	KindToggled  = "extension.toggled"
	KindRemoved  = "extension.removed"
	KindFilter   = "filter.changed"
	KindLoadFail = "extensions.failed"
)

// Notifier observes successful mutations. It runs on the event loop and must
// not block.
type Notifier func(kind string, data map[string]any)

// Option configures a Session.
type Option func(*Session)

// WithNotifier registers a change observer.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notify = n }
}

// Session owns a controller behind an event loop.
type Session struct {
	ctrl   *controller.Controller
	notify Notifier

	reqCh   chan func()
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// New starts the event loop for ctrl.
func New(ctrl *controller.Controller, opts ...Option) *Session {
	s := &Session{
		ctrl:    ctrl,
		reqCh:   make(chan func()),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

func (s *Session) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.stopCh:
			return
		case fn := <-s.reqCh:
			fn()
		}
	}
}

// Close stops the event loop. Pending callers receive ErrClosed.
func (s *Session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	<-s.stopped
}

// do runs fn on the event loop and waits for it to finish.
func (s *Session) do(fn func()) error {
	if s.closed.Load() {
		return ErrClosed
	}
	done := make(chan struct{})
	req := func() {
		defer close(done)
		fn()
	}
	select {
	case s.reqCh <- req:
	case <-s.stopped:
		return ErrClosed
	}
	<-done
	return nil
}

func (s *Session) emit(kind string, data map[string]any) {
	if s.notify != nil {
		s.notify(kind, data)
	}
}

// Load replaces the collection.
func (s *Session) Load(records []models.Extension) error {
	return s.do(func() {
		s.ctrl.Load(records)
		s.emit(KindLoaded, map[string]any{"count": len(records)})
	})
}

// Fail records a terminal load failure.
func (s *Session) Fail(cause error) error {
	return s.do(func() {
		s.ctrl.Fail(cause)
		s.emit(KindLoadFail, map[string]any{"error": cause.Error()})
	})
}

// Ready reports whether the initial load has resolved.
func (s *Session) Ready() bool {
	var ready bool
	if err := s.do(func() { ready = s.ctrl.Ready() }); err != nil {
		return false
	}
	return ready
}

// Page renders the current state.
func (s *Session) Page() (view.Page, error) {
	var p view.Page
	err := s.do(func() { p = s.ctrl.Page() })
	return p, err
}

// Snapshot is a consistent read of the list state.
type Snapshot struct {
	Filter  models.Filter
	Total   int
	Visible []extstore.Entry
}

// Snapshot returns the visible entries together with the filter and total.
func (s *Session) Snapshot() (snap Snapshot, err error) {
	if doErr := s.do(func() { snap, err = s.snapshot() }); doErr != nil {
		return Snapshot{}, doErr
	}
	return snap, err
}

func (s *Session) snapshot() (Snapshot, error) {
	entries, err := s.ctrl.Entries()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Filter: s.ctrl.Filter(), Total: s.ctrl.Len(), Visible: entries}, nil
}

// Select changes the filter.
func (s *Session) Select(mode models.Filter) (changed bool, err error) {
	if doErr := s.do(func() {
		changed, err = s.ctrl.Select(mode)
		if err == nil && changed {
			s.emit(KindFilter, map[string]any{"mode": mode.String()})
		}
	}); doErr != nil {
		return false, doErr
	}
	return changed, err
}

// SelectAndSnapshot changes the filter and reads the resulting list in a
// single step.
func (s *Session) SelectAndSnapshot(mode models.Filter) (snap Snapshot, err error) {
	if doErr := s.do(func() {
		var changed bool
		if changed, err = s.ctrl.Select(mode); err != nil {
			return
		}
		if changed {
			s.emit(KindFilter, map[string]any{"mode": mode.String()})
		}
		snap, err = s.snapshot()
	}); doErr != nil {
		return Snapshot{}, doErr
	}
	return snap, err
}

// Toggle flips the record at index.
func (s *Session) Toggle(index int, name string) (ext models.Extension, err error) {
	if doErr := s.do(func() {
		ext, err = s.ctrl.Toggle(index, name)
		if err == nil {
			s.emit(KindToggled, map[string]any{"index": index, "name": ext.Name, "isActive": ext.IsActive})
		}
	}); doErr != nil {
		return models.Extension{}, doErr
	}
	return ext, err
}

// Remove deletes the record at index when confirm agrees.
func (s *Session) Remove(index int, name string, confirm controller.ConfirmFunc) (removed bool, err error) {
	if doErr := s.do(func() {
		if ext, lookupErr := s.ctrl.Lookup(index, name); lookupErr == nil {
			name = ext.Name
		}
		removed, err = s.ctrl.Remove(index, name, confirm)
		if err == nil && removed {
			s.emit(KindRemoved, map[string]any{"index": index, "name": name})
		}
	}); doErr != nil {
		return false, doErr
	}
	return removed, err
}

// Lookup returns the record at index, checked against name like a mutation
// would be. It is used to build confirmation screens.
func (s *Session) Lookup(index int, name string) (ext models.Extension, err error) {
	if doErr := s.do(func() { ext, err = s.ctrl.Lookup(index, name) }); doErr != nil {
		return models.Extension{}, doErr
	}
	return ext, err
}
