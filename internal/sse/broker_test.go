package sse

import (
	"bufio"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func next(t *testing.T, sub *Subscription) string {
	t.Helper()
	select {
	case frame, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed")
		}
		return string(frame)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for frame")
		return ""
	}
}

func silent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case frame := <-sub.C:
		t.Fatalf("unexpected frame %q", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func streamClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Second}
}

// readUntil consumes lines until one starts with prefix.
func readUntil(t *testing.T, r *bufio.Reader, prefix string) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream for %q: %v", prefix, err)
		}
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line)
		}
	}
}

func TestSubscriptionClients(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	first := b.Subscribe()
	second := b.Subscribe()
	if first.Clients != 1 || second.Clients != 2 {
		t.Fatalf("clients = %d, %d; want 1, 2", first.Clients, second.Clients)
	}

	first.Close()
	if _, ok := <-first.C; ok {
		t.Error("closed subscription should not deliver")
	}
	third := b.Subscribe()
	defer third.Close()
	if third.Clients != 2 {
		t.Errorf("clients after leave = %d, want 2", third.Clients)
	}
	second.Close()
}

func TestFrameFormat(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(Event{Type: "extension.toggled", Data: map[string]any{"index": 1, "name": "B", "isActive": false}})

	want := "id: 1\nevent: extension.toggled\ndata: {\"index\":1,\"isActive\":false,\"name\":\"B\"}\n\n"
	if got := next(t, sub); got != want {
		t.Errorf("frame = %q, want %q", got, want)
	}
}

func TestListChangesInvalidateOncePerWindow(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(Event{Type: "extension.toggled", Data: map[string]any{"index": 1, "name": "B", "isActive": true}, Invalidates: true})
	b.Publish(Event{Type: "extension.removed", Data: map[string]any{"index": 0, "name": "A"}, Invalidates: true})

	if got := next(t, sub); !strings.Contains(got, "id: 1\nevent: extension.toggled") {
		t.Errorf("first frame = %q", got)
	}
	if got := next(t, sub); got != "id: 2\nevent: view.invalidated\ndata: {}\n\n" {
		t.Errorf("second frame = %q", got)
	}
	if got := next(t, sub); !strings.Contains(got, "id: 3\nevent: extension.removed") {
		t.Errorf("third frame = %q", got)
	}
	silent(t, sub)
}

func TestInvalidationResumesAfterWindow(t *testing.T) {
	b := NewBroker(30 * time.Millisecond)
	defer b.Close()
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(Event{Type: "extensions.loaded", Data: map[string]any{"count": 2}, Invalidates: true})
	next(t, sub)
	if got := next(t, sub); !strings.Contains(got, "event: view.invalidated") {
		t.Fatalf("frame = %q", got)
	}

	time.Sleep(60 * time.Millisecond)
	b.Publish(Event{Type: "filter.changed", Data: map[string]any{"mode": "active"}, Invalidates: true})
	if got := next(t, sub); !strings.Contains(got, `"mode":"active"`) {
		t.Errorf("frame = %q", got)
	}
	if got := next(t, sub); !strings.Contains(got, "event: view.invalidated") {
		t.Errorf("window elapsed, want invalidation; got %q", got)
	}
}

func TestLoadFailureDoesNotInvalidate(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	sub := b.Subscribe()
	defer sub.Close()

	b.Publish(Event{Type: "extensions.failed", Data: map[string]any{"error": "load failed: status 503"}})

	got := next(t, sub)
	if !strings.Contains(got, "event: extensions.failed") || !strings.Contains(got, "status 503") {
		t.Errorf("frame = %q", got)
	}
	silent(t, sub)
}

func TestPublishNeverBlocks(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	sub := b.Subscribe() // never read
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			b.Publish(Event{Type: "extension.toggled", Data: map[string]any{"index": i}, Invalidates: true})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stalled reader")
	}
}

func TestServeHTTPStreamsFrames(t *testing.T) {
	b := NewBroker(time.Hour, WithKeepAlive(0))
	defer b.Close()
	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := streamClient().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	r := bufio.NewReader(resp.Body)
	if got := readUntil(t, r, "retry:"); got != "retry: 3000" {
		t.Errorf("retry = %q", got)
	}

	b.Publish(Event{Type: "extensions.loaded", Data: map[string]any{"count": 4}, Invalidates: true})
	readUntil(t, r, "event: extensions.loaded")
	if got := readUntil(t, r, "data:"); got != `data: {"count":4}` {
		t.Errorf("data = %q", got)
	}
	readUntil(t, r, "event: view.invalidated")
}

func TestServeHTTPLeavesOnDisconnect(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := streamClient().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	readUntil(t, bufio.NewReader(resp.Body), "retry:")
	resp.Body.Close()

	deadline := time.Now().Add(time.Second)
	for {
		sub := b.Subscribe()
		sub.Close()
		if sub.Clients == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stream still registered, clients = %d", sub.Clients)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServeHTTPKeepAlive(t *testing.T) {
	b := NewBroker(time.Second, WithKeepAlive(10*time.Millisecond))
	defer b.Close()
	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := streamClient().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	readUntil(t, bufio.NewReader(resp.Body), ": keepalive")
}

func TestCloseEndsStreams(t *testing.T) {
	b := NewBroker(time.Second, WithKeepAlive(0))
	srv := httptest.NewServer(b)
	defer srv.Close()

	sub := b.Subscribe()
	resp, err := streamClient().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	r := bufio.NewReader(resp.Body)
	readUntil(t, r, "retry:")

	b.Close()

	if _, ok := <-sub.C; ok {
		t.Error("subscription should be closed")
	}
	if _, err := io.ReadAll(r); err != nil && !errors.Is(err, io.EOF) {
		t.Errorf("stream should end cleanly: %v", err)
	}

	late := b.Subscribe()
	if _, ok := <-late.C; ok || late.Clients != 0 {
		t.Error("subscribe after close should return a closed subscription")
	}
	late.Close()
	sub.Close()
	b.Publish(Event{Type: "extensions.loaded"})
}
