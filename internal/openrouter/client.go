// Package openrouter is a minimal client for the OpenRouter
// chat-completions API. It owns the retry/skip boundary for transient
// remote failures: transient kinds are retried with backoff, everything
// else surfaces immediately as a typed *Error.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/signalnine/sycobench/internal/retry"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Kind classifies a terminal remote-call failure.
type Kind string

const (
	KindRateLimited     Kind = "rate_limited"
	KindTimeout         Kind = "timeout"
	KindServerError     Kind = "server_error"
	KindInvalidResponse Kind = "invalid_response"
)

// Error is a typed failure returned after retry exhaustion or on a
// non-retryable response. It never carries a usable completion.
type Error struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("openrouter %s (model %s): %v", e.Kind, e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is a remote failure worth retrying.
// Parse-level problems (KindInvalidResponse) are not transient.
func IsTransient(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindRateLimited, KindTimeout, KindServerError:
			return true
		}
	}
	return false
}

// KindOf extracts the failure kind from an error chain, defaulting to
// KindInvalidResponse for errors that did not originate here.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInvalidResponse
}

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
	policy  retry.Config
}

type Option func(*Client)

// WithTimeout bounds each individual HTTP attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// WithRetryPolicy replaces the default backoff policy.
func WithRetryPolicy(cfg retry.Config) Option {
	return func(c *Client) { c.policy = cfg }
}

// WithRequestsPerSecond paces outbound requests client-side so a high
// orchestrator concurrency cannot burst past the endpoint's own limits.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Inf, 1),
		policy:  retry.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one prompt to the named model and returns its text.
// Transient failures are retried internally; the returned error is
// always a terminal *Error (or a context error).
func (c *Client) Complete(ctx context.Context, model, prompt, systemPrompt string) (string, error) {
	if prompt == "" {
		return "", &Error{Kind: KindInvalidResponse, Model: model, Err: errors.New("empty prompt")}
	}

	var messages []message
	if systemPrompt != "" {
		messages = append(messages, message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, message{Role: "user", Content: prompt})

	body, err := json.Marshal(completionRequest{Model: model, Messages: messages})
	if err != nil {
		return "", &Error{Kind: KindInvalidResponse, Model: model, Err: err}
	}

	return retry.Do(ctx, c.policy, "chat completion", IsTransient, func() (string, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		return c.completeOnce(ctx, model, body)
	})
}

func (c *Client) completeOnce(ctx context.Context, model string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindInvalidResponse, Model: model, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// http.Client timeouts and transport errors look the same from
		// here; both are worth retrying.
		return "", &Error{Kind: KindTimeout, Model: model, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &Error{Kind: KindRateLimited, Model: model, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return "", &Error{Kind: KindServerError, Model: model, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return "", &Error{Kind: KindInvalidResponse, Model: model,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, snippet)}
	}

	var parsed completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &Error{Kind: KindInvalidResponse, Model: model, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if parsed.Error != nil {
		return "", &Error{Kind: KindServerError, Model: model, Err: errors.New(parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Kind: KindInvalidResponse, Model: model, Err: errors.New("no choices in response")}
	}
	return parsed.Choices[0].Message.Content, nil
}
