package source

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/extdeck/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, path string) *atomic.Int32 {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var calls atomic.Int32
	go Watch(ctx, path, testutil.Logger(), func() { calls.Add(1) })
	time.Sleep(100 * time.Millisecond)
	return &calls
}

func TestWatchReportsChange(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteJSON(t, dir, "data.json", testutil.Pair())
	calls := startWatch(t, path)

	testutil.WriteJSON(t, dir, "data.json", testutil.Sample())

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() == 1
	}, "expected one change callback")
}

func TestWatchIgnoresIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteJSON(t, dir, "data.json", testutil.Pair())
	calls := startWatch(t, path)

	testutil.WriteJSON(t, dir, "data.json", testutil.Pair())
	time.Sleep(600 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks = %d for identical content", n)
	}
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteJSON(t, dir, "data.json", testutil.Pair())
	calls := startWatch(t, path)

	_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644)
	time.Sleep(600 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("callbacks = %d for sibling file", n)
	}
}

func TestWatchRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteJSON(t, dir, "data.json", testutil.Pair())
	calls := startWatch(t, path)

	tmp := testutil.WriteJSON(t, dir, "data.json.tmp", testutil.Sample())
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "expected change callback after rename")
}
