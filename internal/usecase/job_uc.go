package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/domain/ports/repository"
	"evalplanner-jobs/internal/infra/metrics"
)

// Compile-time check
var _ JobUseCase = (*jobUC)(nil)

type JobUseCase interface {
	// Submit validates and stores a new pending job.
	Submit(ctx context.Context, jobType string, input model.JobInput, email string) (*model.Job, error)

	// Get returns a job projection, gated by the owner email. The email is
	// the only access credential at this boundary: a mismatch is
	// domain.ErrForbidden, a missing job domain.ErrNotFound.
	Get(ctx context.Context, id int64, email string) (*model.Job, error)
}

type jobUC struct {
	jobs repository.JobRepository
}

func NewJobUseCase(jobs repository.JobRepository) *jobUC {
	return &jobUC{jobs: jobs}
}

func (u *jobUC) Submit(ctx context.Context, jobType string, input model.JobInput, email string) (*model.Job, error) {
	if !model.KnownJobType(jobType) {
		return nil, fmt.Errorf("unknown job_type %q: %w", jobType, domain.ErrInvalidArgument)
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("malformed email: %w", domain.ErrInvalidArgument)
	}
	if len(input.Messages) == 0 {
		return nil, fmt.Errorf("input_data.messages must not be empty: %w", domain.ErrInvalidArgument)
	}

	job := &model.Job{
		Type:   model.JobType(jobType),
		Status: model.JobStatusPending,
		Input:  input,
		Email:  email,
	}
	if err := u.jobs.Insert(ctx, repository.NoTX, job); err != nil {
		return nil, err
	}
	metrics.IncJobSubmitted(jobType)
	return job, nil
}

func (u *jobUC) Get(ctx context.Context, id int64, email string) (*model.Job, error) {
	job, err := u.jobs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), job.Email) {
		return nil, domain.ErrForbidden
	}
	return job, nil
}
