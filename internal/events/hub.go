// Package events is an in-process feed of relay activity, consumed by the
// websocket debug tail. Publishing never blocks message handling.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types published by the relay.
const (
	TypeMessageReceived  = "message_received"
	TypeSessionReset     = "session_reset"
	TypeSessionExpired   = "session_expired"
	TypeReplySent        = "reply_sent"
	TypeProviderDegraded = "provider_degraded"
	TypeProviderFailed   = "provider_failed"
	TypeDeliveryFailed   = "delivery_failed"
)

type Event struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
	Detail string `json:"detail,omitempty"`
	TSMs   int64  `json:"ts_ms"`
}

// Hub fans events out to subscribers. Slow subscribers lose events rather
// than stalling the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

func (h *Hub) Publish(eventType, userID, detail string) {
	evt := Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		UserID: userID,
		Detail: detail,
		TSMs:   time.Now().UnixMilli(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// drop for saturated subscribers
		}
	}
}

// Subscribe returns a buffered event channel and a cancel func. The
// channel is closed on cancel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		_, ok := h.subs[ch]
		delete(h.subs, ch)
		h.mu.Unlock()
		if ok {
			close(ch)
		}
	}
	return ch, cancel
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
