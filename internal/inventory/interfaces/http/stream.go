package http

import (
	"net/http"
	"sync"

	"stockdeck/internal/observability/metrics"
)

// Broker fans the latest inventory snapshot out to connected clients. It
// retains the most recent payload so late joiners receive current data
// immediately instead of waiting for the next source mutation.
type Broker struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	last    []byte
}

// NewBroker constructs a broker.
func NewBroker() *Broker {
	return &Broker{clients: make(map[chan []byte]struct{})}
}

// Publish retains the payload and delivers it to every subscriber. A slow
// subscriber drops the frame rather than stalling the broker.
func (b *Broker) Publish(payload []byte) {
	if b == nil || payload == nil {
		return
	}
	b.mu.Lock()
	b.last = payload
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
		}
	}
	b.mu.Unlock()
}

// Subscribe registers a new client channel and queues immediate catch-up
// delivery of the retained snapshot, if one exists.
func (b *Broker) Subscribe() chan []byte {
	if b == nil {
		return nil
	}
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	if b.last != nil {
		ch <- b.last
	}
	b.mu.Unlock()
	metrics.AddStreamSubscribers(1)
	return ch
}

// Unsubscribe removes a client channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b == nil || ch == nil {
		return
	}
	b.mu.Lock()
	_, known := b.clients[ch]
	delete(b.clients, ch)
	b.mu.Unlock()
	if known {
		metrics.AddStreamSubscribers(-1)
		close(ch)
	}
}

// StreamHandler serves the SSE inventory stream.
type StreamHandler struct {
	broker *Broker
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(broker *Broker) *StreamHandler {
	return &StreamHandler{broker: broker}
}

// ServeHTTP handles GET /api/v1/inventory/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.broker == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.broker.Subscribe()
	if ch == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	defer h.broker.Unsubscribe(ch)

	_, _ = w.Write([]byte("event: connected\ndata: {}\n\n"))
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write([]byte("event: inventory\n"))
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-notify:
			return
		}
	}
}
