package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kanda-lab/chatreport/internal/config"
)

// Gateway drives the completion service for the two analysis stages. The
// provider, model, credential, and generation parameters come from the
// runtime config snapshot taken at call time, so overrides apply to the
// next call without rebuilding anything.
type Gateway struct {
	runtime *config.Runtime

	// newClient is swapped out in tests.
	newClient func(cfg config.AI) (Client, error)
}

// NewGateway creates a completion gateway on the given runtime config.
func NewGateway(runtime *config.Runtime) *Gateway {
	return &Gateway{
		runtime:   runtime,
		newClient: newProviderClient,
	}
}

func newProviderClient(cfg config.AI) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg), nil
	case "openai":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", cfg.Provider)
	}
}

// Structure runs the first analysis stage: structured JSON extraction from
// a normalized transcript.
func (g *Gateway) Structure(ctx context.Context, chatData string) (string, error) {
	log.Printf("llm: running structuring stage (%d bytes of transcript)", len(chatData))
	return g.Complete(ctx, structurePrompt, chatData)
}

// Narrate runs the second analysis stage: narrative report generation from
// the structured data.
func (g *Gateway) Narrate(ctx context.Context, structuredData string) (string, error) {
	log.Printf("llm: running narrating stage (%d bytes of structured data)", len(structuredData))
	return g.Complete(ctx, reportPrompt, structuredData)
}

// Complete sends a system/user message pair to the completion service and
// returns the trimmed content of the first choice.
//
// It fails with ErrMissingAPIKey before any network call when the
// credential is blank, with an UpstreamError when the call itself fails,
// and with ErrEmptyResponse when the service answers without content.
func (g *Gateway) Complete(ctx context.Context, systemPrompt, userContent string) (string, error) {
	cfg := g.runtime.AI()

	if strings.TrimSpace(cfg.APIKey) == "" {
		return "", ErrMissingAPIKey
	}

	client, err := g.newClient(cfg)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	resp, err := client.Complete(ctx, &CompletionRequest{
		Model: cfg.Model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userContent},
		},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	log.Printf("llm: completion done (model=%s, tokens=%d)", resp.Model, resp.Usage.TotalTokens)
	return content, nil
}
