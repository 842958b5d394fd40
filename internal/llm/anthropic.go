package llm

import (
	"context"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/kanda-lab/chatreport/internal/config"
)

// AnthropicClient implements Client using the Anthropic Claude API.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a client from the given completion-service
// snapshot. The configured base URL is ignored; the Anthropic SDK talks to
// its own endpoint.
func NewAnthropicClient(cfg config.AI) *AnthropicClient {
	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey),
	}
}

// Complete sends a messages request. System-role messages become the
// request's system parts; user and assistant messages are passed through.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	temperature := float32(req.Temperature)

	var system []anthropic.MessageSystemPart
	var messages []anthropic.Message
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.NewSystemMessagePart(m.Content))
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantTextMessage(m.Content))
		default:
			messages = append(messages, anthropic.NewUserTextMessage(m.Content))
		}
	}

	apiReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   maxTokens,
		Temperature: &temperature,
		Messages:    messages,
	}
	if len(system) > 0 {
		apiReq.MultiSystem = system
	}

	resp, err := c.client.CreateMessages(ctx, apiReq)
	if err != nil {
		return nil, &UpstreamError{Provider: "anthropic", Err: err}
	}

	return &CompletionResponse{
		ID:      resp.ID,
		Model:   string(resp.Model),
		Content: resp.GetFirstContentText(),
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}
