package conversation

import (
	"testing"
	"time"

	"github.com/mzhao/synogpt/internal/provider"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.Get("u1"); ok {
		t.Fatalf("Get on empty store should miss")
	}

	sess := Session{
		Username:     "alice",
		Messages:     []provider.Message{{Role: provider.RoleUser, Content: "hi"}},
		LastActivity: time.Now(),
	}
	s.Put("u1", sess)

	got, ok := s.Get("u1")
	if !ok {
		t.Fatalf("Get after Put should hit")
	}
	if got.Username != "alice" || len(got.Messages) != 1 {
		t.Fatalf("unexpected session state: %+v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	s.Delete("u1")
	if _, ok := s.Get("u1"); ok {
		t.Fatalf("Get after Delete should miss")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	s.Put("u1", Session{
		Messages: []provider.Message{{Role: provider.RoleUser, Content: "original"}},
	})

	got, _ := s.Get("u1")
	got.Messages[0].Content = "mutated"
	got.Messages = append(got.Messages, provider.Message{Role: provider.RoleUser, Content: "extra"})

	stored, _ := s.Get("u1")
	if len(stored.Messages) != 1 || stored.Messages[0].Content != "original" {
		t.Fatalf("stored session aliased by caller mutation: %+v", stored.Messages)
	}
}

// A freshly constructed store holds nothing: session state does not
// survive process restarts, and that is a contract.
func TestMemoryStoreStartsEmpty(t *testing.T) {
	s := NewMemoryStore()
	s.Put("u1", Session{Username: "alice"})

	restarted := NewMemoryStore()
	if restarted.Len() != 0 {
		t.Fatalf("new store Len() = %d, want 0", restarted.Len())
	}
	if _, ok := restarted.Get("u1"); ok {
		t.Fatalf("new store should not know user u1")
	}
}
