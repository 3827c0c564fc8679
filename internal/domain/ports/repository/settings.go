package repository

import "context"

// SettingsRepository reads operator-editable key/value settings. Values in
// the database win over environment variables, which win over hard defaults;
// that layering lives in the use case, not here.
type SettingsRepository interface {
	// Get returns the stored value for key, or domain.ErrNotFound.
	Get(ctx context.Context, tx Tx, key string) (string, error)

	// Set stores or replaces a value. Used by the seed command.
	Set(ctx context.Context, tx Tx, key, value string) error
}
