package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*jobRepo)(nil)

type jobRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewJobRepo(pool *pgxpool.Pool, tm repository.TransactionManager) *jobRepo {
	return &jobRepo{
		pool: pool,
		tm:   tm,
	}
}

const jobColumns = `id, job_type, status, input_data, result_data, error, email, created_at, completed_at`

func (r *jobRepo) Insert(ctx context.Context, tx repository.Tx, job *model.Job) error {
	input, err := json.Marshal(job.Input)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO jobs (job_type, status, input_data, email, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING id, created_at;`

	row, err := pickRow(ctx, r.pool, tx, q, job.Type, job.Status, input, job.Email)
	if err != nil {
		return err
	}
	return row.Scan(&job.ID, &job.CreatedAt)
}

func (r *jobRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

// ClaimNextPending selects the oldest pending job under FOR UPDATE SKIP
// LOCKED and marks it processing before the transaction commits. Concurrent
// claimants never wait on each other: a locked row is skipped, so two racing
// workers claim disjoint jobs or find none.
func (r *jobRepo) ClaimNextPending(ctx context.Context) (*model.Job, error) {
	var job *model.Job

	err := r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		const fetchQuery = `
SELECT ` + jobColumns + `
FROM jobs
WHERE status = 'pending'
ORDER BY created_at
LIMIT 1
FOR UPDATE SKIP LOCKED;`

		row, err := pickRow(ctx, r.pool, tx, fetchQuery)
		if err != nil {
			return err
		}
		claimed, err := scanJob(row)
		if err != nil {
			return err
		}

		// Mark the job as processing so no one else picks it up.
		const markQuery = `UPDATE jobs SET status = $2 WHERE id = $1;`
		if _, err := execSQL(ctx, r.pool, tx, markQuery, claimed.ID, model.JobStatusProcessing); err != nil {
			return err
		}
		claimed.Status = model.JobStatusProcessing

		job = claimed
		return nil
	})

	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

func (r *jobRepo) MarkCompleted(ctx context.Context, tx repository.Tx, id int64, result string) error {
	const q = `
UPDATE jobs
SET status = 'completed', result_data = $2, completed_at = now()
WHERE id = $1 AND status = 'processing' AND completed_at IS NULL;`

	tag, err := execSQL(ctx, r.pool, tx, q, id, result)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) MarkFailed(ctx context.Context, tx repository.Tx, id int64, errMsg string) error {
	const q = `
UPDATE jobs
SET status = 'failed', error = $2, completed_at = now()
WHERE id = $1 AND status = 'processing' AND completed_at IS NULL;`

	tag, err := execSQL(ctx, r.pool, tx, q, id, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) DeleteTerminalOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `
DELETE FROM jobs
WHERE status IN ('completed', 'failed') AND completed_at < $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (*model.Job, error) {
	var (
		job       model.Job
		typeStr   string
		statusStr string
		input     []byte
		result    *string
		errText   *string
	)
	err := row.Scan(&job.ID, &typeStr, &statusStr, &input, &result, &errText, &job.Email, &job.CreatedAt, &job.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound // Translate driver error to our domain error
		}
		return nil, err
	}
	job.Type = model.JobType(typeStr)
	job.Status = model.JobStatus(statusStr)
	if err := json.Unmarshal(input, &job.Input); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	if result != nil {
		job.Result = *result
	}
	if errText != nil {
		job.Error = *errText
	}
	return &job, nil
}
