// Package sse streams extension list changes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// InvalidatedEvent tells pages to re-render. At most one is sent per throttle
// window.
const InvalidatedEvent = "view.invalidated"

// retryMillis is the reconnect delay suggested to browsers.
const retryMillis = 3000

// Event is one change notification.
type Event struct {
	Type string
	Data any
	// Invalidates requests a view.invalidated frame after this event.
	Invalidates bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets the interval of comment frames on idle streams. Zero
// disables them.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// WithLogger sets the logger used for stream lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(b *Broker) { b.logger = l }
}

// Subscription is one open stream.
type Subscription struct {
	// C receives encoded frames. It is closed on Close or broker shutdown.
	C <-chan []byte
	// Clients counts open streams, this one included, when it joined.
	Clients int

	ch     chan []byte
	broker *Broker
}

// Close leaves the broker.
func (s *Subscription) Close() {
	s.broker.leave(s.ch)
}

type joinRequest struct {
	ch    chan []byte
	reply chan int
}

// Broker fans events out to open streams. The run loop owns the client set,
// the frame sequence and the throttle clock.
type Broker struct {
	throttle  time.Duration
	keepAlive time.Duration
	logger    *slog.Logger

	joinCh  chan joinRequest
	leaveCh chan chan []byte
	events  chan Event

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that sends view.invalidated at most once per
// throttle.
func NewBroker(throttle time.Duration, opts ...Option) *Broker {
	if throttle <= 0 {
		throttle = time.Second
	}
	b := &Broker{
		throttle: throttle,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		joinCh:   make(chan joinRequest),
		leaveCh:  make(chan chan []byte),
		events:   make(chan Event, 256),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		seq            uint64
		lastInvalidate time.Time
	)

	send := func(kind string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			b.logger.Warn("sse event dropped", slog.String("event", kind), slog.String("error", err.Error()))
			return
		}
		seq++
		frame := fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, kind, payload)
		for ch := range clients {
			select {
			case ch <- frame:
			default:
				// Slow reader; it catches up on the next invalidation.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case req := <-b.joinCh:
			clients[req.ch] = struct{}{}
			req.reply <- len(clients)

		case ch := <-b.leaveCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
				b.logger.Debug("sse client left", slog.Int("clients", len(clients)))
			}

		case e := <-b.events:
			send(e.Type, e.Data)
			if !e.Invalidates {
				continue
			}
			if now := time.Now(); now.Sub(lastInvalidate) >= b.throttle {
				lastInvalidate = now
				send(InvalidatedEvent, struct{}{})
			}
		}
	}
}

// Close stops the broker and ends every subscription.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe opens a stream. After Close the returned channel is already
// closed.
func (b *Broker) Subscribe() *Subscription {
	ch := make(chan []byte, 64)
	sub := &Subscription{C: ch, ch: ch, broker: b}
	if b.closed.Load() {
		close(ch)
		return sub
	}
	req := joinRequest{ch: ch, reply: make(chan int, 1)}
	select {
	case b.joinCh <- req:
		sub.Clients = <-req.reply
	case <-b.stopped:
		close(ch)
	}
	return sub
}

func (b *Broker) leave(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leaveCh <- ch:
	case <-b.stopped:
	}
}

// Publish queues e for every open stream. It never blocks: when the queue is
// full the event is dropped.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- e:
	default:
		b.logger.Warn("sse queue full", slog.String("event", e.Type))
	}
}

// ServeHTTP streams events to one client until it disconnects (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := b.Subscribe()
	defer sub.Close()
	b.logger.Debug("sse client joined", slog.Int("clients", sub.Clients))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "retry: %d\n\n", retryMillis)
	flusher.Flush()

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		ticker := time.NewTicker(b.keepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-sub.C:
			if !ok {
				return
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		case <-tick:
			_, _ = io.WriteString(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}
