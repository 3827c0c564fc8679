// File: internal/usecase/settings_uc_test.go
package usecase_test

import (
	"context"
	"testing"

	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/domain/ports/repository"
	"evalplanner-jobs/internal/usecase"
)

func TestSettingsUseCase_ResolveStage(t *testing.T) {
	ctx := context.Background()

	t.Run("database value wins over environment and default", func(t *testing.T) {
		// Arrange
		repo := newMemSettingsRepo()
		if err := repo.Set(ctx, repository.NoTX, "model_stage_a", "gpt-4o"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		t.Setenv("MODEL_STAGE_A", "env-model")
		uc := usecase.NewSettingsUseCase(repo, "default-model")

		// Act
		got, err := uc.ResolveStage(ctx, model.JobTypeStageA)

		// Assert
		if err != nil {
			t.Fatalf("ResolveStage() error = %v", err)
		}
		if got.Model != "gpt-4o" {
			t.Errorf("model = %q, want %q", got.Model, "gpt-4o")
		}
	})

	t.Run("falls back to environment variable", func(t *testing.T) {
		repo := newMemSettingsRepo()
		t.Setenv("MODEL_STAGE_B", "env-model")
		uc := usecase.NewSettingsUseCase(repo, "default-model")

		got, err := uc.ResolveStage(ctx, model.JobTypeStageB)

		if err != nil {
			t.Fatalf("ResolveStage() error = %v", err)
		}
		if got.Model != "env-model" {
			t.Errorf("model = %q, want %q", got.Model, "env-model")
		}
	})

	t.Run("falls back to the configured default model", func(t *testing.T) {
		uc := usecase.NewSettingsUseCase(newMemSettingsRepo(), "default-model")

		got, err := uc.ResolveStage(ctx, model.JobTypeFinalStage)

		if err != nil {
			t.Fatalf("ResolveStage() error = %v", err)
		}
		if got.Model != "default-model" {
			t.Errorf("model = %q, want %q", got.Model, "default-model")
		}
	})

	t.Run("temperature from the database overrides the stage default", func(t *testing.T) {
		repo := newMemSettingsRepo()
		if err := repo.Set(ctx, repository.NoTX, "temperature_stage_a", "0.25"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		uc := usecase.NewSettingsUseCase(repo, "default-model")

		got, err := uc.ResolveStage(ctx, model.JobTypeStageA)

		if err != nil {
			t.Fatalf("ResolveStage() error = %v", err)
		}
		if got.Temperature == nil || *got.Temperature != 0.25 {
			t.Errorf("temperature = %v, want 0.25", got.Temperature)
		}
	})

	t.Run("final stage runs cooler by default", func(t *testing.T) {
		uc := usecase.NewSettingsUseCase(newMemSettingsRepo(), "default-model")

		got, err := uc.ResolveStage(ctx, model.JobTypeFinalStage)

		if err != nil {
			t.Fatalf("ResolveStage() error = %v", err)
		}
		if got.Temperature == nil || *got.Temperature != 0.3 {
			t.Errorf("temperature = %v, want 0.3", got.Temperature)
		}
	})

	t.Run("unparseable temperature falls back to the stage default", func(t *testing.T) {
		repo := newMemSettingsRepo()
		if err := repo.Set(ctx, repository.NoTX, "temperature_stage_a", "hot"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		uc := usecase.NewSettingsUseCase(repo, "default-model")

		got, err := uc.ResolveStage(ctx, model.JobTypeStageA)

		if err != nil {
			t.Fatalf("ResolveStage() error = %v", err)
		}
		if got.Temperature == nil || *got.Temperature != 0.7 {
			t.Errorf("temperature = %v, want 0.7", got.Temperature)
		}
	})
}

func TestSettingsUseCase_APIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the key from the database", func(t *testing.T) {
		repo := newMemSettingsRepo()
		if err := repo.Set(ctx, repository.NoTX, "openai_api_key", "sk-db"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		uc := usecase.NewSettingsUseCase(repo, "default-model")

		key, err := uc.APIKey(ctx)

		if err != nil {
			t.Fatalf("APIKey() error = %v", err)
		}
		if key != "sk-db" {
			t.Errorf("key = %q, want %q", key, "sk-db")
		}
	})

	t.Run("falls back to the environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		uc := usecase.NewSettingsUseCase(newMemSettingsRepo(), "default-model")

		key, err := uc.APIKey(ctx)

		if err != nil {
			t.Fatalf("APIKey() error = %v", err)
		}
		if key != "sk-env" {
			t.Errorf("key = %q, want %q", key, "sk-env")
		}
	})

	t.Run("errors when no key is configured anywhere", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		uc := usecase.NewSettingsUseCase(newMemSettingsRepo(), "default-model")

		if _, err := uc.APIKey(ctx); err == nil {
			t.Error("expected an error for a missing api key")
		}
	})
}
