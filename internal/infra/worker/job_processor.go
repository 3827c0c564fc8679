package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/domain/ports/adapter"
	"evalplanner-jobs/internal/domain/ports/repository"
	"evalplanner-jobs/internal/infra/metrics"
	"evalplanner-jobs/internal/usecase"
)

// JobProcessor drives the job lifecycle: claim one pending job, run the
// completion, finalize, and dispatch the terminal notification for the final
// pipeline stage. Multiple processes may run it against one store; mutual
// exclusion per job comes from the claim's row lock, not from anything held
// in memory.
type JobProcessor struct {
	jobs       repository.JobRepository
	settings   usecase.SettingsUseCase
	completion adapter.CompletionAdapter
	notifier   usecase.NotificationUseCase
	maxTokens  int
	interval   time.Duration
	log        *zerolog.Logger
}

func NewJobProcessor(
	jobs repository.JobRepository,
	settings usecase.SettingsUseCase,
	completion adapter.CompletionAdapter,
	notifier usecase.NotificationUseCase,
	maxTokens int,
	interval time.Duration,
	logger *zerolog.Logger,
) *JobProcessor {
	compLog := logger.With().Str("component", "JobProcessor").Logger()
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &JobProcessor{
		jobs:       jobs,
		settings:   settings,
		completion: completion,
		notifier:   notifier,
		maxTokens:  maxTokens,
		interval:   interval,
		log:        &compLog,
	}
}

// Start runs the polling loop until ctx is cancelled. Each tick submits at
// most one job iteration to the pool; throughput under load is one job per
// tick per process, an accepted tradeoff for low-volume workloads.
// This should be run in a goroutine.
func (p *JobProcessor) Start(ctx context.Context, pool *Pool) {
	p.log.Info().Dur("interval", p.interval).Msg("job processor started")
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("job processor stopping")
			return
		case <-ticker.C:
			_ = pool.Submit(func(ctx context.Context) error {
				p.processOne(ctx)
				return nil
			})
		}
	}
}

// processOne is one loop iteration. Store failures abort the iteration and
// are retried on the next tick; anything that goes wrong after a successful
// claim is recorded on the job as failed and never escapes the iteration.
func (p *JobProcessor) processOne(ctx context.Context) {
	job, err := p.jobs.ClaimNextPending(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			p.log.Error().Err(err).Msg("failed to claim job")
		}
		return // No pending job, or the store is unavailable.
	}

	p.log.Info().Int64("job_id", job.ID).Str("job_type", string(job.Type)).Msg("processing job")
	start := time.Now()

	result, runErr := p.runJob(ctx, job)

	// Finalize with a background context so a cancelled tick cannot leave
	// the job stuck in processing.
	finalCtx := context.Background()
	if runErr != nil {
		job.Status = model.JobStatusFailed
		job.Error = runErr.Error()
		p.log.Error().Err(runErr).Int64("job_id", job.ID).Msg("job failed")
		if err := p.jobs.MarkFailed(finalCtx, repository.NoTX, job.ID, job.Error); err != nil {
			p.log.Error().Err(err).Int64("job_id", job.ID).Msg("could not record job failure")
			return
		}
	} else {
		job.Status = model.JobStatusCompleted
		job.Result = result
		if err := p.jobs.MarkCompleted(finalCtx, repository.NoTX, job.ID, result); err != nil {
			p.log.Error().Err(err).Int64("job_id", job.ID).Msg("could not record job completion")
			return
		}
	}
	now := time.Now()
	job.CompletedAt = &now
	metrics.IncJobProcessed(string(job.Status))

	// Only the final pipeline stage notifies; intermediate stages feed a
	// later step. The single claimant runs this once per job; delivery
	// failures are logged inside and never reopen the job.
	if job.Type == model.JobTypeFinalStage {
		_ = p.notifier.SendResult(finalCtx, job)
	}

	p.log.Info().
		Int64("job_id", job.ID).
		Str("status", string(job.Status)).
		Dur("duration", time.Since(start)).
		Msg("job finished")
}

// runJob resolves stage settings and executes the completion. Panics are
// converted into an error so one bad job cannot take the loop down.
func (p *JobProcessor) runJob(ctx context.Context, job *model.Job) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job processing panicked: %v", r)
		}
	}()

	if len(job.Input.Messages) == 0 {
		return "", errors.New("job has no messages")
	}

	st, err := p.settings.ResolveStage(ctx, job.Type)
	if err != nil {
		return "", fmt.Errorf("resolve stage settings: %w", err)
	}

	msgs := make([]adapter.Message, 0, len(job.Input.Messages))
	for _, m := range job.Input.Messages {
		msgs = append(msgs, adapter.Message{Role: m.Role, Content: m.Content})
	}

	return p.completion.Complete(ctx, adapter.CompletionRequest{
		Model:       st.Model,
		Messages:    msgs,
		MaxTokens:   p.maxTokens,
		Temperature: st.Temperature,
	})
}
