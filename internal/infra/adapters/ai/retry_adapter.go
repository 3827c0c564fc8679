package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/ports/adapter"
	"evalplanner-jobs/internal/infra/metrics"
)

// Compile-time check
var _ adapter.CompletionAdapter = (*retryingCompletion)(nil)

type retryingCompletion struct {
	inner     adapter.CompletionAdapter
	attempts  int
	baseDelay time.Duration
	log       *zerolog.Logger
}

// NewRetryingCompletion wraps an adapter with exponential backoff: attempts
// tries in total, delays doubling from baseDelay between them. A timeout is
// surfaced immediately: retrying a call that already consumed the full
// wall-clock budget would hold the job for another budget.
func NewRetryingCompletion(inner adapter.CompletionAdapter, attempts int, baseDelay time.Duration, logger *zerolog.Logger) adapter.CompletionAdapter {
	if attempts <= 1 {
		return inner
	}
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	return &retryingCompletion{inner: inner, attempts: attempts, baseDelay: baseDelay, log: logger}
}

func (r *retryingCompletion) Complete(ctx context.Context, req adapter.CompletionRequest) (string, error) {
	delay := r.baseDelay
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		text, err := r.inner.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, domain.ErrUpstreamTimeout) || ctx.Err() != nil {
			return "", err
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}
		r.log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("completion attempt failed, retrying")
		metrics.IncUpstreamRetry()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return "", lastErr
}
