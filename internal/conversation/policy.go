package conversation

import (
	"strings"
	"time"

	"github.com/mzhao/synogpt/internal/provider"
)

// ResetEcho is the fixed text returned when a reset keyword clears a
// session. It stands in for a reply so the user sees the break.
const ResetEcho = "----------------------------"

// DefaultResetKeywords clear the conversation when a message consists of
// exactly one of them (after trimming and lowercasing).
var DefaultResetKeywords = []string{
	"new", "refresh", "00", "restart", "刷新", "新话题", "退下", "结束", "over",
}

// Policy decides, for an incoming message, whether the user's session is
// reset, expired, or continued, and bounds retained history length.
type Policy struct {
	resetKeywords      map[string]struct{}
	maxConversationLen int
	maxTimeGap         time.Duration
}

func NewPolicy(resetKeywords []string, maxConversationLen int, maxTimeGap time.Duration) *Policy {
	kw := make(map[string]struct{}, len(resetKeywords))
	for _, k := range resetKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		kw[k] = struct{}{}
	}
	return &Policy{
		resetKeywords:      kw,
		maxConversationLen: maxConversationLen,
		maxTimeGap:         maxTimeGap,
	}
}

// IsReset reports whether the whole message body is a reset keyword.
func (p *Policy) IsReset(text string) bool {
	_, ok := p.resetKeywords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Expired reports whether the session has been idle for at least the
// configured gap at time now.
func (p *Policy) Expired(s Session, now time.Time) bool {
	return now.Sub(s.LastActivity) >= p.maxTimeGap
}

// Truncate bounds prior history to the last maxConversationLen entries.
// It runs before the new user message is appended, so the list may
// transiently hold maxConversationLen+1 entries after the append; that
// off-by-one is retained historical behavior.
func (p *Policy) Truncate(msgs []provider.Message) []provider.Message {
	if len(msgs) > p.maxConversationLen {
		return msgs[len(msgs)-p.maxConversationLen:]
	}
	return msgs
}
