package conversation

import (
	"testing"
	"time"

	"github.com/mzhao/synogpt/internal/provider"
)

func TestPolicyResetKeywords(t *testing.T) {
	p := NewPolicy(DefaultResetKeywords, 10, 30*time.Minute)

	for _, text := range []string{"new", "  Restart  ", "REFRESH", "刷新", "新话题", "over"} {
		if !p.IsReset(text) {
			t.Fatalf("IsReset(%q) = false, want true", text)
		}
	}
	for _, text := range []string{"news", "a new topic", "", "hello"} {
		if p.IsReset(text) {
			t.Fatalf("IsReset(%q) = true, want false", text)
		}
	}
}

func TestPolicyExpiryThreshold(t *testing.T) {
	p := NewPolicy(nil, 10, 30*time.Minute)
	now := time.Now()

	idle := Session{LastActivity: now.Add(-31 * time.Minute)}
	if !p.Expired(idle, now) {
		t.Fatalf("session idle 31m should be expired at a 30m gap")
	}

	exact := Session{LastActivity: now.Add(-30 * time.Minute)}
	if !p.Expired(exact, now) {
		t.Fatalf("session idle exactly 30m should be expired (gap is inclusive)")
	}

	fresh := Session{LastActivity: now.Add(-29 * time.Minute)}
	if p.Expired(fresh, now) {
		t.Fatalf("session idle 29m should not be expired")
	}
}

func TestPolicyTruncateKeepsLastEntries(t *testing.T) {
	p := NewPolicy(nil, 10, 30*time.Minute)

	msgs := make([]provider.Message, 0, 12)
	for i := 0; i < 12; i++ {
		msgs = append(msgs, provider.Message{Role: provider.RoleUser, Content: string(rune('a' + i))})
	}

	got := p.Truncate(msgs)
	if len(got) != 10 {
		t.Fatalf("truncated length = %d, want 10", len(got))
	}
	if got[0].Content != "c" || got[9].Content != "l" {
		t.Fatalf("truncation kept wrong window: first=%q last=%q", got[0].Content, got[9].Content)
	}
}

func TestPolicyTruncateLeavesShortHistory(t *testing.T) {
	p := NewPolicy(nil, 10, 30*time.Minute)

	msgs := []provider.Message{
		{Role: provider.RoleUser, Content: "hi"},
		{Role: provider.RoleAssistant, Content: "hello"},
	}
	got := p.Truncate(msgs)
	if len(got) != 2 {
		t.Fatalf("truncated length = %d, want 2", len(got))
	}
}
