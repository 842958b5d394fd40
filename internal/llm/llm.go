// Package llm wraps the completion service behind a provider-neutral
// gateway used by the two analysis stages.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role identifies the author of a chat completion message. The set is
// closed; anything else is rejected at construction.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole validates a raw role value against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSystem, RoleUser, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unsupported role: %q", s)
	}
}

// Message is one role-tagged message of a completion request.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest represents a request to the completion service.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Usage is the token accounting reported by the completion service.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse represents a response from the completion service.
// Content carries the first choice's message text; the remaining fields are
// available to callers but not required by the orchestration.
type CompletionResponse struct {
	ID           string
	Created      int64
	Model        string
	Content      string
	FinishReason string
	Usage        Usage
}

// Client is the interface for completion providers.
type Client interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// ErrMissingAPIKey indicates the completion service credential is blank;
// no network call is attempted in that case.
var ErrMissingAPIKey = errors.New("completion service API key is not configured")

// ErrEmptyResponse indicates the completion service answered without any
// usable content.
var ErrEmptyResponse = errors.New("completion service returned empty content")

// UpstreamError wraps a transport, timeout, or provider-side failure.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
