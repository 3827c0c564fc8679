package repository

import (
	"context"
	"time"

	"evalplanner-jobs/internal/domain/model"
)

// JobRepository is the single source of truth for job state. All mutations
// are single-row atomic updates; the only multi-statement transaction is the
// claim, which is encapsulated behind ClaimNextPending.
type JobRepository interface {
	// Insert stores a new pending job and assigns its ID and CreatedAt.
	Insert(ctx context.Context, tx Tx, job *model.Job) error

	FindByID(ctx context.Context, tx Tx, id int64) (*model.Job, error)

	// ClaimNextPending atomically selects the oldest pending job, locks its
	// row so concurrent claimants skip it, and marks it processing before
	// the transaction commits. Returns domain.ErrNotFound when no unlocked
	// pending row exists.
	//
	// A worker that dies between claiming and finalizing leaves the job in
	// processing with no automatic requeue; that gap is accepted.
	ClaimNextPending(ctx context.Context) (*model.Job, error)

	// MarkCompleted transitions a processing job to completed, storing the
	// result and stamping completed_at exactly once.
	MarkCompleted(ctx context.Context, tx Tx, id int64, result string) error

	// MarkFailed transitions a processing job to failed, storing the error
	// text and stamping completed_at exactly once.
	MarkFailed(ctx context.Context, tx Tx, id int64, errMsg string) error

	// DeleteTerminalOlderThan removes completed/failed jobs whose
	// completed_at is before cutoff and returns the number deleted.
	DeleteTerminalOlderThan(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
