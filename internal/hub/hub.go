// Package hub streams topology events to SSE subscribers.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"topomon/internal/service"
)

const keepaliveInterval = 30 * time.Second

// Hub fans topology events out over server-sent events. Each subscriber
// gets a buffered frame channel; one that stops draining misses frames
// instead of stalling the broadcast.
type Hub struct {
	events chan service.Event

	mu     sync.Mutex
	nextID int
	subs   map[int]chan []byte
}

// New creates a hub subscribed to the event bus
func New(bus *service.EventBus) *Hub {
	h := &Hub{
		events: make(chan service.Event, 256),
		subs:   make(map[int]chan []byte),
	}
	bus.Subscribe(h.events)
	return h
}

// Run broadcasts bus events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.events:
			h.broadcast(ev)
		}
	}
}

func (h *Hub) broadcast(ev service.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Dropping unencodable %s event: %v", ev.Type, err)
		return
	}
	frame := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, payload))

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		select {
		case sub <- frame:
		default:
			log.Printf("SSE subscriber %d lagging, frame dropped", id)
		}
	}
}

func (h *Hub) subscribe() (int, chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan []byte, 64)
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

func (h *Hub) drop(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP holds the connection open and relays frames until the
// client goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	id, frames := h.subscribe()
	defer h.drop(id)
	log.Printf("SSE subscriber %d connected", id)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-frames:
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			log.Printf("SSE subscriber %d disconnected", id)
			return
		}
	}
}
