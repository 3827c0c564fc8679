package adapter

import "context"

// Message mirrors the wire shape of a chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is one text-completion request, fully resolved: the
// caller has already decided model and temperature for the job's stage.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// CompletionAdapter executes a single completion request against the
// upstream API. Implementations are stateless per invocation and re-resolve
// credentials on every call, so rotated keys take effect immediately.
//
// Failure modes are the domain sentinels: ErrUpstream (non-success status),
// ErrUpstreamTimeout (wall-clock budget exceeded, never retried) and
// ErrTruncatedResponse (body implausibly short or unparseable).
type CompletionAdapter interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
