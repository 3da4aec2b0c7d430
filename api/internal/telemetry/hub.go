package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/irgordon/bazaar/api/internal/core/domain"
)

// AllSales is the topic every sale is broadcast on, in addition to per-listing topics.
const AllSales = "*"

// SaleEvent is what the live purchase feed carries.
type SaleEvent struct {
	PurchaseID uuid.UUID           `json:"purchase_id"`
	Kind       domain.PurchaseKind `json:"type"`
	TargetID   uuid.UUID           `json:"target_id"`
	ListingIDs []uuid.UUID         `json:"listing_ids"`
	At         time.Time           `json:"at"`
}

// Hub fans sale events out to connected feed clients.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]chan SaleEvent // topic -> client channels
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string][]chan SaleEvent),
	}
}

// Subscribe registers a client on a topic: AllSales or a listing id.
func (h *Hub) Subscribe(topic string) chan SaleEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan SaleEvent, 100) // buffered so a slow client never blocks a purchase
	h.subscribers[topic] = append(h.subscribers[topic], ch)
	return ch
}

// Unsubscribe removes and closes a client channel.
func (h *Hub) Unsubscribe(topic string, ch chan SaleEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[topic]
	for i, sub := range subs {
		if sub == ch {
			h.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(h.subscribers[topic]) == 0 {
		delete(h.subscribers, topic)
	}
}

// Publish broadcasts ev on AllSales and on the topic of every listing it touched.
func (h *Hub) Publish(ev SaleEvent) {
	h.broadcast(AllSales, ev)
	for _, id := range ev.ListingIDs {
		h.broadcast(id.String(), ev)
	}
}

func (h *Hub) broadcast(topic string, ev SaleEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[topic] {
		select {
		case ch <- ev:
		default: // drop when the client's buffer is full
		}
	}
}

// Close disconnects every subscriber. Later Publish calls reach nobody.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic, subs := range h.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subscribers, topic)
	}
}

// Subscribers reports how many clients listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}
