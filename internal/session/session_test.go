package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/starford/extdeck/internal/apperr"
	"github.com/starford/extdeck/internal/controller"
	"github.com/starford/extdeck/internal/models"
	"github.com/starford/extdeck/internal/testutil"
)

type recorder struct {
	mu    sync.Mutex
	kinds []string
}

func (r *recorder) notify(kind string, _ map[string]any) {
	r.mu.Lock()
	r.kinds = append(r.kinds, kind)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.kinds...)
}

func newSession(t *testing.T, rec *recorder) *Session {
	t.Helper()
	var opts []Option
	if rec != nil {
		opts = append(opts, WithNotifier(rec.notify))
	}
	s := New(controller.New(testutil.Logger()), opts...)
	t.Cleanup(s.Close)
	return s
}

func TestReadyAfterLoad(t *testing.T) {
	s := newSession(t, nil)
	if s.Ready() {
		t.Error("should not be ready before load")
	}
	if _, err := s.Snapshot(); !errors.Is(err, apperr.ErrNotLoaded) {
		t.Errorf("snapshot before load err = %v", err)
	}
	if err := s.Load(testutil.Pair()); err != nil {
		t.Fatal(err)
	}
	if !s.Ready() {
		t.Error("should be ready after load")
	}
}

func TestReadyAfterFailure(t *testing.T) {
	s := newSession(t, nil)
	_ = s.Fail(errors.New("no data"))
	if !s.Ready() {
		t.Error("failed load still resolves readiness")
	}
	p, err := s.Page()
	if err != nil {
		t.Fatal(err)
	}
	if !p.Failed {
		t.Error("expected failure page")
	}
}

func TestMutationsNotify(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, rec)
	_ = s.Load(testutil.Pair())

	if _, err := s.Select(models.FilterActive); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Select(models.FilterActive); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Toggle(1, "B"); err != nil {
		t.Fatal(err)
	}
	if removed, err := s.Remove(0, "A", controller.Declined); err != nil || removed {
		t.Fatalf("declined remove: removed=%v err=%v", removed, err)
	}
	if removed, err := s.Remove(0, "A", controller.Confirmed); err != nil || !removed {
		t.Fatalf("confirmed remove: removed=%v err=%v", removed, err)
	}

	want := []string{KindLoaded, KindFilter, KindToggled, KindRemoved}
	got := rec.list()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSelectAndSnapshot(t *testing.T) {
	s := newSession(t, nil)
	_ = s.Load(testutil.Pair())
	snap, err := s.SelectAndSnapshot(models.FilterInactive)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Filter != models.FilterInactive || snap.Total != 2 || len(snap.Visible) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Visible[0].Index != 1 || snap.Visible[0].Extension.Name != "B" {
		t.Errorf("visible = %+v", snap.Visible[0])
	}
}

func TestLookup(t *testing.T) {
	s := newSession(t, nil)
	_ = s.Load(testutil.Pair())
	ext, err := s.Lookup(1, "B")
	if err != nil || ext.Name != "B" {
		t.Fatalf("lookup = %+v, %v", ext, err)
	}
	if _, err := s.Lookup(1, "A"); !errors.Is(err, apperr.ErrStaleIndex) {
		t.Errorf("err = %v, want stale", err)
	}
	if _, err := s.Lookup(9, ""); !errors.Is(err, apperr.ErrIndexOutOfRange) {
		t.Errorf("err = %v, want out of range", err)
	}
}

func TestConcurrentTogglesAreSerialised(t *testing.T) {
	s := newSession(t, nil)
	_ = s.Load(testutil.Pair())

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Toggle(0, "A")
		}()
	}
	wg.Wait()

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	// An even number of toggles returns A to its original state.
	if !snap.Visible[0].Extension.IsActive {
		t.Error("A should be active after an even number of toggles")
	}
}

func TestClosedSession(t *testing.T) {
	s := New(controller.New(testutil.Logger()))
	s.Close()
	s.Close()
	if err := s.Load(nil); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if s.Ready() {
		t.Error("closed session is never ready")
	}
}
