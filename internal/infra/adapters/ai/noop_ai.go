package ai

import (
	"context"
	"fmt"

	"evalplanner-jobs/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.CompletionAdapter = (*NoopCompletionAdapter)(nil)

// NoopCompletionAdapter echoes a canned plan. Used in dev mode when no API
// key is configured, so the whole pipeline can run offline.
type NoopCompletionAdapter struct{}

func NewNoopCompletionAdapter() *NoopCompletionAdapter { return &NoopCompletionAdapter{} }

func (n *NoopCompletionAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (string, error) {
	last := ""
	if len(req.Messages) > 0 {
		last = req.Messages[len(req.Messages)-1].Content
	}
	return fmt.Sprintf("# Draft Evaluation Plan\n\nGenerated offline by the noop adapter (model %s).\n\n> %s\n", req.Model, last), nil
}
