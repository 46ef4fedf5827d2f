// Package memory provides process-local repositories used when no database
// is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
)

// SubmissionRepository keeps submissions in insertion order.
type SubmissionRepository struct {
	mu    sync.RWMutex
	items []submission.Submission
	ids   map[string]struct{}
}

// NewSubmissionRepository creates an empty repository.
func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{ids: make(map[string]struct{})}
}

// Create implements submission.Repository.
func (r *SubmissionRepository) Create(_ context.Context, s *submission.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[s.ID]; ok {
		return fmt.Errorf("submission %s: %w", s.ID, shared.ErrAlreadyExists)
	}
	r.ids[s.ID] = struct{}{}
	r.items = append(r.items, *s)
	return nil
}

// List implements submission.Repository. Ties on SubmittedAt keep the most
// recently inserted first.
func (r *SubmissionRepository) List(_ context.Context) ([]*submission.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*submission.Submission, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		s := r.items[i]
		out = append(out, &s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// Count implements submission.Repository.
func (r *SubmissionRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

var _ submission.Repository = (*SubmissionRepository)(nil)
