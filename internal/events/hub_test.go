package events

import (
	"testing"
	"time"
)

func TestHubPublishReachesSubscriber(t *testing.T) {
	h := NewHub()
	feed, cancel := h.Subscribe()
	defer cancel()

	h.Publish(TypeReplySent, "42", "")

	select {
	case evt := <-feed:
		if evt.Type != TypeReplySent || evt.UserID != "42" {
			t.Fatalf("unexpected event: %+v", evt)
		}
		if evt.ID == "" || evt.TSMs == 0 {
			t.Fatalf("event not normalized: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received")
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub()
	feed, cancel := h.Subscribe()
	cancel()

	if _, ok := <-feed; ok {
		t.Fatalf("channel should be closed after cancel")
	}
	if h.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount() = %d, want 0", h.SubscriberCount())
	}

	// Double cancel is harmless.
	cancel()
}

func TestHubDropsWhenSubscriberSaturated(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			h.Publish(TypeMessageReceived, "42", "")
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish blocked on a saturated subscriber")
	}
}
