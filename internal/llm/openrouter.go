package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotConfigured is returned before any network call when the provider
// credential is missing.
var ErrNotConfigured = errors.New("openrouter api key not configured")

// fallbackModel is used when a project has no model configured.
const fallbackModel = "openai/gpt-3.5-turbo"

// UpstreamError reports a failed or malformed provider response. Message
// carries the provider's own error text when the payload included one.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("openrouter: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("openrouter: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type Config struct {
	APIKey   string
	BaseURL  string
	Referer  string
	AppTitle string
	Timeout  time.Duration
	RPS      float64
	Burst    int
}

// Client is an OpenRouter (OpenAI-compatible) chat completions client.
// The credential is injected once at construction; there is no retry, a
// failed call surfaces immediately to the caller.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
	}
}

type chatCompletionsRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type errorPayload struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the assembled context to the provider and returns the
// generated text.
func (c *Client) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}
	if model == "" {
		model = fallbackModel
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(chatCompletionsRequest{Model: model, Messages: messages})
	if err != nil {
		return "", err
	}

	endpoint := c.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.AppTitle != "" {
		httpReq.Header.Set("X-Title", c.cfg.AppTitle)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Message: "provider request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload errorPayload
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		msg := payload.Error.Message
		if msg == "" {
			msg = "provider returned an error"
		}
		return "", &UpstreamError{Status: resp.StatusCode, Message: msg}
	}

	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Message: "malformed provider response", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &UpstreamError{Status: resp.StatusCode, Message: "provider returned no choices"}
	}

	return out.Choices[0].Message.Content, nil
}
