package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// BroadcastHook fans out widget events to in-process subscribers.
type BroadcastHook struct {
	mu     sync.RWMutex
	subs   map[int]subscriber
	next   int
	replay ReplayFunc
}

const subscriberBuffer = 64

// ReplayFunc reports the events a view has already emitted, so a late subscriber
// can catch up on widgets that settled before it connected.
type ReplayFunc func(viewID string) []WidgetEvent

type subscriber struct {
	viewID string
	ch     chan WidgetEvent
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]subscriber),
	}
}

// WidgetUpdated satisfies the RefreshHook interface and broadcasts events.
// Slow subscribers drop events rather than block widget settlement.
func (h *BroadcastHook) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.viewID != "" && sub.viewID != event.ViewID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of every widget event and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan WidgetEvent, func()) {
	return h.SubscribeView("")
}

// SetReplay installs the catch-up source used by SubscribeView.
func (h *BroadcastHook) SetReplay(fn ReplayFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replay = fn
}

// SubscribeView returns events for one page view only. An empty id receives everything.
// View subscriptions start with the replayed events of that view when a replay source is set.
func (h *BroadcastHook) SubscribeView(viewID string) (<-chan WidgetEvent, func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	ch := make(chan WidgetEvent, subscriberBuffer)
	h.subs[id] = subscriber{viewID: viewID, ch: ch}
	replay := h.replay
	h.mu.Unlock()

	if replay != nil && viewID != "" {
		for _, event := range replay(viewID) {
			select {
			case ch <- event:
			default:
			}
		}
	}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

// Subscribers reports the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams widget events as JSON.
// The optional `view` query parameter narrows the stream to one page view.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.SubscribeView(r.URL.Query().Get("view"))
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for refresh events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.SubscribeView(r.URL.Query().Get("view"))
	defer cancel()

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.Write([]byte("data: "))
			if err := encoder.Encode(event); err != nil {
				return
			}
			w.Write([]byte("\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
