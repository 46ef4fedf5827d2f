package query

import (
	"context"
	"time"

	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
)

// ListSubmissionsHandler returns stored submissions, newest first.
type ListSubmissionsHandler struct {
	repo submission.Repository
}

// NewListSubmissionsHandler creates a new handler.
func NewListSubmissionsHandler(repo submission.Repository) *ListSubmissionsHandler {
	return &ListSubmissionsHandler{repo: repo}
}

// Handle executes the query.
func (h *ListSubmissionsHandler) Handle(ctx context.Context) ([]*submission.Submission, error) {
	subs, err := h.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*submission.Submission{}
	}
	return subs, nil
}

// GetSettingsHandler returns the active submission settings.
type GetSettingsHandler struct {
	repo  submission.SettingsRepository
	clock func() time.Time
}

// NewGetSettingsHandler creates a new handler. clock defaults to time.Now.
func NewGetSettingsHandler(repo submission.SettingsRepository, clock func() time.Time) *GetSettingsHandler {
	if clock == nil {
		clock = time.Now
	}
	return &GetSettingsHandler{repo: repo, clock: clock}
}

// Handle executes the query.
func (h *GetSettingsHandler) Handle(ctx context.Context) (*submission.Settings, error) {
	s, err := submission.Current(ctx, h.repo, h.clock())
	if err != nil {
		return nil, err
	}
	return &s, nil
}
