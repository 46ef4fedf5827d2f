package memory

import (
	"context"
	"sync"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
)

// SettingsRepository holds a single settings document.
type SettingsRepository struct {
	mu       sync.RWMutex
	settings *submission.Settings
}

// NewSettingsRepository creates a repository with nothing saved.
func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

// Get implements submission.SettingsRepository.
func (r *SettingsRepository) Get(_ context.Context) (*submission.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return nil, shared.ErrNotFound
	}
	return cloneSettings(r.settings), nil
}

// Save implements submission.SettingsRepository.
func (r *SettingsRepository) Save(_ context.Context, s *submission.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = cloneSettings(s)
	return nil
}

func cloneSettings(s *submission.Settings) *submission.Settings {
	c := *s
	c.ReminderDays = append([]int(nil), s.ReminderDays...)
	c.AllowedFileTypes = append([]string(nil), s.AllowedFileTypes...)
	if c.ReminderDays == nil {
		c.ReminderDays = []int{}
	}
	if c.AllowedFileTypes == nil {
		c.AllowedFileTypes = []string{}
	}
	return &c
}

var _ submission.SettingsRepository = (*SettingsRepository)(nil)
