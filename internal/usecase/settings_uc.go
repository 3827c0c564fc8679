package usecase

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"evalplanner-jobs/internal/domain"
	"evalplanner-jobs/internal/domain/model"
	"evalplanner-jobs/internal/domain/ports/repository"
)

// Compile-time check
var _ SettingsUseCase = (*settingsUC)(nil)

// StageSettings holds the completion parameters resolved for one pipeline
// stage.
type StageSettings struct {
	Model       string
	Temperature *float64
}

// SettingsUseCase resolves operator-tunable values in three layers: database
// setting first, environment variable second, hard default last. Nothing is
// cached; the API key in particular may rotate at any time, so every job
// re-reads it.
type SettingsUseCase interface {
	ResolveStage(ctx context.Context, jobType model.JobType) (StageSettings, error)
	APIKey(ctx context.Context) (string, error)
}

type settingsUC struct {
	settings     repository.SettingsRepository
	defaultModel string
}

func NewSettingsUseCase(settings repository.SettingsRepository, defaultModel string) *settingsUC {
	return &settingsUC{settings: settings, defaultModel: defaultModel}
}

// Per-stage temperature defaults: drafting stages run warmer than the final
// plan assembly.
var defaultTemperatures = map[model.JobType]float64{
	model.JobTypeStageA:     0.7,
	model.JobTypeStageB:     0.7,
	model.JobTypeFinalStage: 0.3,
}

func (s *settingsUC) ResolveStage(ctx context.Context, jobType model.JobType) (StageSettings, error) {
	stage := string(jobType)

	mdl, err := s.resolve(ctx, "model_"+stage)
	if err != nil {
		return StageSettings{}, err
	}
	if mdl == "" {
		mdl = s.defaultModel
	}

	out := StageSettings{Model: mdl}

	raw, err := s.resolve(ctx, "temperature_"+stage)
	if err != nil {
		return StageSettings{}, err
	}
	if raw != "" {
		if t, err := strconv.ParseFloat(raw, 64); err == nil {
			out.Temperature = &t
			return out, nil
		}
	}
	if t, ok := defaultTemperatures[jobType]; ok {
		out.Temperature = &t
	}
	return out, nil
}

func (s *settingsUC) APIKey(ctx context.Context) (string, error) {
	key, err := s.resolve(ctx, "openai_api_key")
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.New("openai_api_key is not configured")
	}
	return key, nil
}

// resolve reads the database value for key, falling back to the environment
// variable of the same name uppercased. Returns "" when neither is set.
func (s *settingsUC) resolve(ctx context.Context, key string) (string, error) {
	val, err := s.settings.Get(ctx, repository.NoTX, key)
	if err == nil && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val), nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	return strings.TrimSpace(os.Getenv(strings.ToUpper(key))), nil
}
