// Package sse implements a Server-Sent Events broker for live catalog
// and state updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type reloadReq struct {
	templates int
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + reload throttle timestamp). Public methods communicate with this
// loop through channels, so no mutexes are required.
type Broker struct {
	reloadMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	reloadCh      chan reloadReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given reload throttle interval.
func NewBroker(reloadThrottle time.Duration) *Broker {
	if reloadThrottle <= 0 {
		reloadThrottle = 2 * time.Second
	}

	b := &Broker{
		reloadMin:     reloadThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		reloadCh:      make(chan reloadReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastReload time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)
		raw := []byte(msg)

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
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

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.reloadCh:
			now := time.Now()
			if now.Sub(lastReload) >= b.reloadMin {
				lastReload = now
				broadcast(Event{Type: "catalog.reloaded", Data: map[string]int{"templates": req.templates}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishReload publishes a throttled catalog.reloaded event. Rapid
// successive source rewrites collapse into at most one event per
// throttle interval.
func (b *Broker) PublishReload(templates int) {
	if b.closed.Load() {
		return
	}
	select {
	case b.reloadCh <- reloadReq{templates: templates}:
	case <-b.stopped:
	}
}

// PublishStateChanged announces that the persisted preferences changed.
func (b *Broker) PublishStateChanged() {
	b.Publish(Event{Type: "state.changed", Data: map[string]string{}})
}

// PublishFavoritesChanged announces a favorite toggle.
func (b *Broker) PublishFavoritesChanged(id string, favorited bool) {
	b.Publish(Event{Type: "favorites.changed", Data: map[string]any{"id": id, "favorited": favorited}})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
