// Package chatlog is the HTTP client for the chatlog transcript service.
package chatlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/kanda-lab/chatreport/internal/config"
	"github.com/kanda-lab/chatreport/internal/report"
)

// Kind is the closed set of chat message kinds the service reports.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFile  Kind = "file"
	KindVoice Kind = "voice"
	KindVideo Kind = "video"
)

// ErrNotFound indicates that a target does not resolve to a known
// conversation.
var ErrNotFound = errors.New("conversation not found")

// Conversation is a chat session known to the transcript service: a group
// chat or a private chat.
type Conversation struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"nickName"`
	Owner       string   `json:"owner,omitempty"`
	Remark      string   `json:"remark,omitempty"`
	Members     []Member `json:"users,omitempty"`
}

// Member is one participant of a group conversation.
type Member struct {
	UserName    string `json:"userName"`
	DisplayName string `json:"displayName"`
}

// ChatMessage is one raw transcript record. Immutable once fetched; the
// pipeline run that fetched it discards it after normalization.
type ChatMessage struct {
	MessageID  string    `json:"messageId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Kind       Kind      `json:"type"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// Client fetches conversations and messages from the chatlog service. The
// base URL and timeout are read from the runtime config at call time, so
// overrides take effect without rebuilding the client.
type Client struct {
	runtime     *config.Runtime
	rateLimiter *rate.Limiter
	httpClient  *http.Client
}

// NewClient creates a chatlog client. Requests are rate limited to protect
// the local chatlog service from bursts.
func NewClient(runtime *config.Runtime) *Client {
	return &Client{
		runtime:     runtime,
		rateLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		httpClient:  &http.Client{},
	}
}

// ListConversations returns the conversations known to the service,
// optionally filtered by a (possibly partial) name. An empty filter returns
// everything.
func (c *Client) ListConversations(ctx context.Context, nameFilter string) ([]Conversation, error) {
	params := url.Values{"format": {"json"}}
	if nameFilter != "" {
		params.Set("keyword", nameFilter)
	}

	var sessions []Conversation
	if err := c.apiCall(ctx, "/api/v1/chatroom", params, &sessions); err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return sessions, nil
}

// ResolveConversation resolves a target identifier to its conversation.
// The match is exact on the conversation name, display name, or remark.
// Returns ErrNotFound when nothing matches.
func (c *Client) ResolveConversation(ctx context.Context, target string) (*Conversation, error) {
	sessions, err := c.ListConversations(ctx, target)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		s := &sessions[i]
		if s.Name == target || s.DisplayName == target || s.Remark == target {
			return s, nil
		}
	}
	return nil, fmt.Errorf("resolving %q: %w", target, ErrNotFound)
}

// FetchMessages returns the raw messages for the target within the given
// date spec. A single date covers that calendar day; a range covers the
// closed interval [start, end].
func (c *Client) FetchMessages(ctx context.Context, target string, dates report.DateSpec) ([]ChatMessage, error) {
	timeParam := dates.Date
	if dates.IsRange() {
		timeParam = dates.Start + "~" + dates.End
	}

	params := url.Values{
		"format": {"json"},
		"talker": {target},
		"time":   {timeParam},
	}

	var messages []ChatMessage
	if err := c.apiCall(ctx, "/api/v1/chatlog", params, &messages); err != nil {
		return nil, fmt.Errorf("fetching messages for %s (%s): %w", target, dates, err)
	}
	return messages, nil
}

// apiCall makes a GET request against the chatlog service and decodes the
// JSON response into result.
func (c *Client) apiCall(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	cfg := c.runtime.Chatlog()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	apiURL := fmt.Sprintf("%s%s?%s", cfg.BaseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chatlog API call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chatlog API call %s returned HTTP %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("parsing response JSON: %w", err)
	}

	return nil
}
