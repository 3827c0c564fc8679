package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/ports/repository"
	"evalplanner-jobs/internal/infra/metrics"
	"evalplanner-jobs/internal/infra/redis"
)

const cleanupLockKey = "jobs:cleanup"

// CleanupWorker deletes terminal jobs older than the retention window. The
// sweep itself is a single DELETE and safe to run from any number of
// processes, but a redis lock elects one sweeper per tick to keep the others
// idle.
type CleanupWorker struct {
	interval  time.Duration
	retention time.Duration
	jobs      repository.JobRepository
	locker    redis.Locker
	log       *zerolog.Logger
}

func NewCleanupWorker(interval, retention time.Duration, jobs repository.JobRepository, locker redis.Locker, logger *zerolog.Logger) *CleanupWorker {
	compLog := logger.With().Str("component", "CleanupWorker").Logger()
	return &CleanupWorker{
		interval:  interval,
		retention: retention,
		jobs:      jobs,
		locker:    locker,
		log:       &compLog,
	}
}

func (w *CleanupWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("retention", w.retention).Msg("starting cleanup worker")
	// Run once on startup, then on every tick
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping cleanup worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, cleanupLockKey, w.interval/2)
		if errors.Is(err, domain.ErrLockNotAcquired) {
			w.log.Debug().Msg("another process holds the cleanup lock, skipping sweep")
			return
		}
		if err != nil {
			// Lock service unavailable. The sweep is idempotent, so run it
			// anyway rather than let retention slip.
			w.log.Warn().Err(err).Msg("cleanup lock unavailable, sweeping without it")
		} else {
			defer func() { _ = w.locker.Unlock(ctx, cleanupLockKey, token) }()
		}
	}

	cutoff := time.Now().Add(-w.retention)
	n, err := w.jobs.DeleteTerminalOlderThan(ctx, repository.NoTX, cutoff)
	if err != nil {
		w.log.Error().Err(err).Msg("cleanup sweep failed")
		return
	}
	if n > 0 {
		metrics.AddJobsDeleted(n)
		w.log.Info().Int64("count", n).Msg("deleted terminal jobs past retention")
	}
}
