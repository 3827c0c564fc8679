package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/ports/adapter"
	"evalplanner-jobs/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionAdapter = (*OpenAICompletionAdapter)(nil)

// minPlausibleBody is the raw-byte floor below which a response body is
// treated as truncated regardless of status code.
const minPlausibleBody = 64

// KeyResolver returns the current upstream API key. It is consulted on every
// call: keys rotate, so they are never held longer than one request.
type KeyResolver func(ctx context.Context) (string, error)

// OpenAICompletionAdapter executes one Chat Completions request per call.
// The wall-clock budget is enforced with a per-attempt context deadline; a
// request that exceeds it surfaces domain.ErrUpstreamTimeout, which callers
// must not retry.
type OpenAICompletionAdapter struct {
	base    string // e.g., https://api.openai.com/v1
	timeout time.Duration
	keyFn   KeyResolver
	client  *http.Client
}

func NewOpenAICompletionAdapter(baseURL string, timeout time.Duration, keyFn KeyResolver) (*OpenAICompletionAdapter, error) {
	if keyFn == nil {
		return nil, errors.New("key resolver is required")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &OpenAICompletionAdapter{
		base:    baseURL,
		timeout: timeout,
		keyFn:   keyFn,
		// The budget lives on the request context, not the client.
		client: &http.Client{},
	}, nil
}

func (o *OpenAICompletionAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (string, error) {
	apiKey, err := o.keyFn(ctx)
	if err != nil {
		return "", err
	}

	reqBody := struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		MaxTokens   int               `json:"max_tokens,omitempty"`
		Temperature *float64          `json:"temperature,omitempty"`
	}{Model: req.Model, Messages: req.Messages, MaxTokens: req.MaxTokens, Temperature: req.Temperature}

	b, _ := json.Marshal(reqBody)

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	httpReq, _ := http.NewRequestWithContext(callCtx, http.MethodPost, o.base+"/chat/completions", bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	start := time.Now()
	resp, err := o.client.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		metrics.ObserveUpstreamCall(req.Model, int(latency/time.Millisecond), false)
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return "", domain.ErrUpstreamTimeout
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("completion request: %v: %w", err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	// The raw body is inspected before parsing so a short or garbled payload
	// is classified as truncation rather than a JSON error.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveUpstreamCall(req.Model, int(latency/time.Millisecond), false)
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return "", domain.ErrUpstreamTimeout
		}
		return "", fmt.Errorf("read completion body: %v: %w", err, domain.ErrUpstream)
	}

	if resp.StatusCode >= 300 {
		metrics.ObserveUpstreamCall(req.Model, int(latency/time.Millisecond), false)
		return "", fmt.Errorf("completion http %d: %w", resp.StatusCode, domain.ErrUpstream)
	}
	if len(raw) < minPlausibleBody {
		metrics.ObserveUpstreamCall(req.Model, int(latency/time.Millisecond), false)
		return "", fmt.Errorf("%d byte body: %w", len(raw), domain.ErrTruncatedResponse)
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		metrics.ObserveUpstreamCall(req.Model, int(latency/time.Millisecond), false)
		return "", fmt.Errorf("unparseable body: %w", domain.ErrTruncatedResponse)
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			metrics.ObserveUpstreamCall(req.Model, int(latency/time.Millisecond), true)
			return c.Message.Content, nil
		}
	}
	metrics.ObserveUpstreamCall(req.Model, int(latency/time.Millisecond), false)
	return "", fmt.Errorf("no choice content: %w", domain.ErrTruncatedResponse)
}
