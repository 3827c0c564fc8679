// File: internal/usecase/job_uc_test.go
package usecase_test

import (
	"context"
	"errors"
	"testing"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/usecase"
)

func validInput() model.JobInput {
	return model.JobInput{
		Messages: []model.Message{{Role: "user", Content: "Draft an evaluation plan."}},
		Metadata: map[string]string{"program_name": "Food Security"},
	}
}

func TestJobUseCase_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a pending job and assigns an id", func(t *testing.T) {
		// Arrange
		repo := newMemJobRepo()
		uc := usecase.NewJobUseCase(repo)

		// Act
		job, err := uc.Submit(ctx, "stage_a", validInput(), "alice@example.org")

		// Assert
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if job.ID == 0 {
			t.Error("expected a non-zero job id")
		}
		if job.Status != model.JobStatusPending {
			t.Errorf("status = %q, want %q", job.Status, model.JobStatusPending)
		}
		stored, err := repo.FindByID(ctx, nil, job.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if stored.Email != "alice@example.org" {
			t.Errorf("stored email = %q", stored.Email)
		}
	})

	t.Run("rejects an unknown job type", func(t *testing.T) {
		uc := usecase.NewJobUseCase(newMemJobRepo())

		_, err := uc.Submit(ctx, "stage_z", validInput(), "alice@example.org")

		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		uc := usecase.NewJobUseCase(newMemJobRepo())

		_, err := uc.Submit(ctx, "stage_a", validInput(), "not-an-email")

		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("rejects empty messages", func(t *testing.T) {
		uc := usecase.NewJobUseCase(newMemJobRepo())

		_, err := uc.Submit(ctx, "stage_a", model.JobInput{}, "alice@example.org")

		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("propagates repository failures", func(t *testing.T) {
		repo := newMemJobRepo()
		repo.insertErr = errors.New("connection reset")
		uc := usecase.NewJobUseCase(repo)

		_, err := uc.Submit(ctx, "stage_a", validInput(), "alice@example.org")

		if err == nil || errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("error = %v, want raw repository error", err)
		}
	})
}

func TestJobUseCase_Get(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, repo *memJobRepo, email string) *model.Job {
		t.Helper()
		uc := usecase.NewJobUseCase(repo)
		job, err := uc.Submit(ctx, "stage_a", validInput(), email)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		return job
	}

	t.Run("returns the job for the owner email", func(t *testing.T) {
		repo := newMemJobRepo()
		job := submit(t, repo, "alice@example.org")
		uc := usecase.NewJobUseCase(repo)

		got, err := uc.Get(ctx, job.ID, "alice@example.org")

		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.ID != job.ID {
			t.Errorf("id = %d, want %d", got.ID, job.ID)
		}
	})

	t.Run("email comparison is case-insensitive", func(t *testing.T) {
		repo := newMemJobRepo()
		job := submit(t, repo, "Alice@Example.org")
		uc := usecase.NewJobUseCase(repo)

		if _, err := uc.Get(ctx, job.ID, "alice@example.org"); err != nil {
			t.Errorf("Get() error = %v, want nil", err)
		}
	})

	t.Run("mismatched email is forbidden", func(t *testing.T) {
		repo := newMemJobRepo()
		job := submit(t, repo, "alice@example.org")
		uc := usecase.NewJobUseCase(repo)

		_, err := uc.Get(ctx, job.ID, "mallory@example.org")

		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("missing job is not found", func(t *testing.T) {
		uc := usecase.NewJobUseCase(newMemJobRepo())

		_, err := uc.Get(ctx, 42, "alice@example.org")

		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}
