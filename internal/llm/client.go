// Package llm provides the OpenAI-compatible text-completion client used by
// question extraction, cut-list generation and labor estimation, plus the
// helpers those callers share for turning replies into structured data.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/logger"
)

// ── Wire types ───────────────────────────────────────────────────

const (
	roleSystem = "system"
	roleUser   = "user"
)

type message struct {
	Role    string    `json:"role"`
	Content []content `json:"content"`
}

type content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type payload struct {
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Model       string    `json:"model,omitempty"`
}

type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ── Client ───────────────────────────────────────────────────────

// Compile-time interface check.
var _ domain.Completer = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithModel overrides the default model name.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens sets the response token limit used when a request does not
// ask for one.
func WithMaxTokens(n int) ClientOption {
	return func(c *Client) { c.maxTokens = n }
}

// WithHTTPTimeout sets the HTTP client timeout. Callers also bound each
// call with a context deadline.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithAzureKeyHeader sends the key as "api-key" instead of a bearer token.
func WithAzureKeyHeader() ClientOption {
	return func(c *Client) { c.azure = true }
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	endpoint  string
	apiKey    string
	model     string
	maxTokens int
	azure     bool
	http      *http.Client
	log       *logger.Logger
}

// NewClient creates a chat client for endpoint, the full URL of the
// chat/completions resource.
func NewClient(endpoint, apiKey string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:  endpoint,
		apiKey:    apiKey,
		maxTokens: 2048,
		http:      &http.Client{Timeout: 90 * time.Second},
		log:       log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete sends one prompt and returns the assistant's reply. A client
// with no key fails immediately with domain.ErrNoCompleter.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return "", domain.ErrNoCompleter
	}

	var msgs []message
	if req.System != "" {
		msgs = append(msgs, message{Role: roleSystem, Content: []content{{Type: "text", Text: req.System}}})
	}
	user := message{Role: roleUser, Content: []content{{Type: "text", Text: req.Prompt}}}
	for _, u := range req.ImageURLs {
		user.Content = append(user.Content, content{Type: "image_url", ImageURL: &imageURL{URL: u}})
	}
	msgs = append(msgs, user)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	body := payload{
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
		Model:       c.model,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm: marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.azure {
		httpReq.Header.Set("api-key", c.apiKey)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.Debug("llm: request", "endpoint", c.endpoint, "bytes", len(jsonData))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: API %s: %s", resp.Status, Truncate(string(respBody), 200))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("llm: unmarshal response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response (no choices)")
	}

	reply := result.Choices[0].Message.Content
	c.log.Debug("llm: reply", "chars", len(reply), "preview", Truncate(reply, 120))
	return reply, nil
}

// Truncate shortens s to at most n bytes, marking the cut with "...".
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
