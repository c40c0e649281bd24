package conversation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mzhao/synogpt/internal/archive"
	"github.com/mzhao/synogpt/internal/events"
	"github.com/mzhao/synogpt/internal/observability"
	"github.com/mzhao/synogpt/internal/provider"
)

// Engine is the single entry point per incoming chat message. It applies
// session policy, assembles the prompt, calls the completion provider and
// records the exchange. Provider failures degrade to an empty outcome and
// never surface as errors; a chat relay keeps going.
type Engine struct {
	store     Store
	policy    *Policy
	assembler *Assembler
	completer provider.Completer

	model       string
	temperature float32

	archive archive.Store
	hub     *events.Hub
	metrics *observability.Metrics

	locks sync.Map // userID -> *sync.Mutex
}

func NewEngine(
	store Store,
	policy *Policy,
	assembler *Assembler,
	completer provider.Completer,
	model string,
	temperature float32,
	archiveStore archive.Store,
	hub *events.Hub,
	metrics *observability.Metrics,
) *Engine {
	return &Engine{
		store:       store,
		policy:      policy,
		assembler:   assembler,
		completer:   completer,
		model:       model,
		temperature: temperature,
		archive:     archiveStore,
		hub:         hub,
		metrics:     metrics,
	}
}

// HandleMessage resolves one inbound message for a user. Messages from
// the same user are serialized; chat webhooks deliver sequentially, but a
// concurrent redelivery must not lose history updates.
func (e *Engine) HandleMessage(ctx context.Context, userID, username, text string) Outcome {
	mu := e.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now()
	e.publish(events.TypeMessageReceived, userID, "")

	if e.policy.IsReset(text) {
		if _, ok := e.store.Get(userID); ok {
			e.store.Delete(userID)
		}
		e.countSessionEvent("reset")
		e.gaugeSessions()
		e.publish(events.TypeSessionReset, userID, "")
		return Outcome{Kind: OutcomeReset, Text: ResetEcho}
	}

	sess, ok := e.store.Get(userID)
	if ok && e.policy.Expired(sess, now) {
		e.store.Delete(userID)
		ok = false
		e.countSessionEvent("expired")
		e.publish(events.TypeSessionExpired, userID, "")
	}

	if !ok {
		sess = Session{Username: username, LastActivity: now}
		e.countSessionEvent("created")
	} else {
		sess.LastActivity = now
		sess.Messages = e.policy.Truncate(sess.Messages)
	}

	sess.Messages = append(sess.Messages, provider.Message{Role: provider.RoleUser, Content: text})
	e.store.Put(userID, sess)
	e.gaugeSessions()
	e.archiveTurn(ctx, userID, sess.Username, provider.RoleUser, text)

	req := provider.Request{
		Model:       e.model,
		Messages:    e.assembler.Build(sess.Messages),
		Temperature: e.temperature,
	}

	started := time.Now()
	res, err := e.completer.Complete(ctx, req)
	if err != nil {
		// The already-appended user message stays; history is otherwise
		// untouched on a hard call failure.
		log.Printf("completion failed for user %s: %v", userID, err)
		e.countProvider("failed")
		e.publish(events.TypeProviderFailed, userID, err.Error())
		return Outcome{Kind: OutcomeFailed}
	}
	e.observeLatency(time.Since(started))

	if res.FinishReason != provider.FinishStop {
		marker := fmt.Sprintf("error: stop reason - %s", res.FinishReason)
		sess.Messages = append(sess.Messages, provider.Message{Role: provider.RoleAssistant, Content: marker})
		e.store.Put(userID, sess)
		log.Printf("abnormal finish reason %q for user %s", res.FinishReason, userID)
		e.countProvider("degraded")
		e.publish(events.TypeProviderDegraded, userID, res.FinishReason)
		return Outcome{Kind: OutcomeDegraded}
	}

	sess.Messages = append(sess.Messages, provider.Message{Role: provider.RoleAssistant, Content: res.Message.Content})
	e.store.Put(userID, sess)
	e.archiveTurn(ctx, userID, sess.Username, provider.RoleAssistant, res.Message.Content)

	e.countProvider("reply")
	e.countTokens(res.Usage)
	e.publish(events.TypeReplySent, userID, "")

	return Outcome{
		Kind:  OutcomeReply,
		Text:  res.Message.Content,
		Usage: provider.FormatUsage(res.Usage),
	}
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (e *Engine) archiveTurn(ctx context.Context, userID, username, role, content string) {
	if e.archive == nil {
		return
	}
	err := e.archive.SaveTurn(ctx, archive.TurnRecord{
		UserID:   userID,
		Username: username,
		Role:     role,
		Content:  content,
	})
	if err != nil {
		log.Printf("archive turn failed for user %s: %v", userID, err)
	}
}

func (e *Engine) publish(eventType, userID, detail string) {
	if e.hub != nil {
		e.hub.Publish(eventType, userID, detail)
	}
}

func (e *Engine) countSessionEvent(event string) {
	if e.metrics != nil {
		e.metrics.SessionEvents.WithLabelValues(event).Inc()
	}
}

func (e *Engine) countProvider(outcome string) {
	if e.metrics != nil {
		e.metrics.ProviderRequests.WithLabelValues(outcome).Inc()
	}
}

func (e *Engine) countTokens(u provider.Usage) {
	if e.metrics != nil {
		e.metrics.ProviderTokens.WithLabelValues("prompt").Add(float64(u.PromptTokens))
		e.metrics.ProviderTokens.WithLabelValues("completion").Add(float64(u.CompletionTokens))
	}
}

func (e *Engine) gaugeSessions() {
	if e.metrics != nil {
		e.metrics.ActiveSessions.Set(float64(e.store.Len()))
	}
}

func (e *Engine) observeLatency(d time.Duration) {
	if e.metrics != nil {
		e.metrics.ObserveCompletionLatency(d)
	}
}
