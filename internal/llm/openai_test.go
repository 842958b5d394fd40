package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kanda-lab/chatreport/internal/config"
)

func fakeOpenAIServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func openAITestConfig(baseURL string) config.AI {
	return config.AI{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		BaseURL:  baseURL,
		APIKey:   "sk-test",
		Timeout:  5 * time.Second,
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	srv := fakeOpenAIServer(t, http.StatusOK, map[string]any{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": 1756000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "structured output"},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     120,
			"completion_tokens": 30,
			"total_tokens":      150,
		},
	})
	defer srv.Close()

	c := NewOpenAIClient(openAITestConfig(srv.URL))
	resp, err := c.Complete(context.Background(), &CompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "user"},
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.ID != "chatcmpl-123" {
		t.Errorf("ID = %q", resp.ID)
	}
	if resp.Content != "structured output" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
	if resp.Usage.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := fakeOpenAIServer(t, http.StatusOK, map[string]any{
		"id":      "chatcmpl-456",
		"object":  "chat.completion",
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{},
	})
	defer srv.Close()

	c := NewOpenAIClient(openAITestConfig(srv.URL))
	_, err := c.Complete(context.Background(), &CompletionRequest{Model: "gpt-4o-mini"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestOpenAIClient_UpstreamFailure(t *testing.T) {
	srv := fakeOpenAIServer(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{
			"message": "rate limit exceeded",
			"type":    "rate_limit_error",
		},
	})
	defer srv.Close()

	c := NewOpenAIClient(openAITestConfig(srv.URL))
	_, err := c.Complete(context.Background(), &CompletionRequest{Model: "gpt-4o-mini"})

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if ue.Provider != "openai" {
		t.Errorf("Provider = %q", ue.Provider)
	}
}
