package provider

import (
	"context"
	"fmt"
)

// Chat roles as used by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FinishStop is the finish reason reported for a normally completed reply.
// Anything else (length, content_filter, ...) is treated as abnormal.
const FinishStop = "stop"

// Message is a single role-tagged entry in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token consumption for one completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is the normalized payload sent to a completion provider.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
}

// Response is the provider's reply to a completion request.
type Response struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
	Usage        Usage   `json:"usage"`
}

// Completer produces a chat completion for an ordered message sequence.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// FormatUsage renders the token-usage report delivered back to the user.
func FormatUsage(u Usage) string {
	return fmt.Sprintf("---Tokens usage---\n    prompt_tokens: %d,\n    completion_tokens: %d,\n    total_tokens: %d",
		u.PromptTokens, u.CompletionTokens, u.TotalTokens)
}
