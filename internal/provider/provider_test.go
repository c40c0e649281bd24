package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFormatUsage(t *testing.T) {
	got := FormatUsage(Usage{PromptTokens: 11, CompletionTokens: 22, TotalTokens: 33})
	want := "---Tokens usage---\n    prompt_tokens: 11,\n    completion_tokens: 22,\n    total_tokens: 33"
	if got != want {
		t.Fatalf("FormatUsage() = %q, want %q", got, want)
	}
}

func TestMockProviderEchoesLastUserMessage(t *testing.T) {
	p := NewMockProvider()
	res, err := p.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleUser, Content: "first"},
			{Role: RoleAssistant, Content: "reply"},
			{Role: RoleUser, Content: "second"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if res.FinishReason != FinishStop {
		t.Fatalf("FinishReason = %q, want %q", res.FinishReason, FinishStop)
	}
	if res.Message.Content != "echo: second" {
		t.Fatalf("Content = %q", res.Message.Content)
	}
}

func TestOpenAIProviderComplete(t *testing.T) {
	var seen struct {
		Model       string    `json:"model"`
		Messages    []Message `json:"messages"`
		Temperature float32   `json:"temperature"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&seen); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 4, "total_tokens": 7}
		}`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider("test-key", ts.URL+"/v1")
	res, err := p.Complete(context.Background(), Request{
		Model:       "gpt-3.5-turbo",
		Messages:    []Message{{Role: RoleUser, Content: "hello"}},
		Temperature: 0.5,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if seen.Model != "gpt-3.5-turbo" {
		t.Fatalf("request model = %q", seen.Model)
	}
	if len(seen.Messages) != 1 || seen.Messages[0].Content != "hello" {
		t.Fatalf("request messages = %+v", seen.Messages)
	}
	if res.Message.Content != "hi there" {
		t.Fatalf("Content = %q", res.Message.Content)
	}
	if res.FinishReason != FinishStop {
		t.Fatalf("FinishReason = %q", res.FinishReason)
	}
	if res.Usage.TotalTokens != 7 {
		t.Fatalf("TotalTokens = %d, want 7", res.Usage.TotalTokens)
	}
}

func TestOpenAIProviderErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded", "type": "insufficient_quota"}}`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider("test-key", ts.URL+"/v1")
	_, err := p.Complete(context.Background(), Request{
		Model:    "gpt-3.5-turbo",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err == nil {
		t.Fatalf("Complete() should fail on a 429 response")
	}
}
