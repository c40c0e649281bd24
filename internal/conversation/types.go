package conversation

import (
	"time"

	"github.com/mzhao/synogpt/internal/provider"
)

// Session is the per-user dialogue state. One exists for a user id only
// between its creation (first non-reset message) and its deletion (reset
// keyword or idle expiry).
type Session struct {
	Username     string
	Messages     []provider.Message
	LastActivity time.Time
}

// OutcomeKind tags how an incoming message was resolved.
type OutcomeKind string

const (
	// OutcomeReset: session cleared by a reset keyword, no provider call.
	OutcomeReset OutcomeKind = "reset"
	// OutcomeReply: provider returned a normal completion.
	OutcomeReply OutcomeKind = "reply"
	// OutcomeDegraded: provider finished abnormally (truncated, filtered).
	OutcomeDegraded OutcomeKind = "degraded"
	// OutcomeFailed: the provider call itself failed.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the engine's result for one incoming message. Degraded and
// Failed both carry empty Text and Usage; the tag lets callers and tests
// tell "no reply needed" from "failed to reply".
type Outcome struct {
	Kind  OutcomeKind
	Text  string
	Usage string
}
