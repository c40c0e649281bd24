package provider

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider produces deterministic local replies when no API key is
// configured. Useful for wiring checks and keyless local runs.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Complete(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}

	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			last = strings.TrimSpace(req.Messages[i].Content)
			break
		}
	}
	if last == "" {
		last = "..."
	}

	text := fmt.Sprintf("echo: %s", last)
	return Response{
		Message:      Message{Role: RoleAssistant, Content: text},
		FinishReason: FinishStop,
		Usage: Usage{
			PromptTokens:     len(req.Messages),
			CompletionTokens: 1,
			TotalTokens:      len(req.Messages) + 1,
		},
	}, nil
}
