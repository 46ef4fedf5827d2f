package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository stores submissions.
type Repository interface {
	// Create stores a new submission.
	// Returns shared.ErrAlreadyExists if the ID is taken.
	Create(ctx context.Context, s *Submission) error

	// List returns all submissions, newest first.
	List(ctx context.Context) ([]*Submission, error)

	// Count returns the number of stored submissions.
	Count(ctx context.Context) (int, error)
}

// SettingsRepository stores the single settings document.
type SettingsRepository interface {
	// Get returns the stored settings.
	// Returns shared.ErrNotFound if nothing has been saved yet.
	Get(ctx context.Context) (*Settings, error)

	// Save replaces the stored settings.
	Save(ctx context.Context, s *Settings) error
}

// Current returns the stored settings. When none have been saved it stores
// DefaultSettings(now), so the default deadline is fixed by the first call.
func Current(ctx context.Context, repo SettingsRepository, now time.Time) (Settings, error) {
	s, err := repo.Get(ctx)
	if errors.Is(err, shared.ErrNotFound) {
		defaults := DefaultSettings(now)
		if err := repo.Save(ctx, &defaults); err != nil {
			return Settings{}, fmt.Errorf("save default settings: %w", err)
		}
		return defaults, nil
	}
	if err != nil {
		return Settings{}, err
	}
	return *s, nil
}
