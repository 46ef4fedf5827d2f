// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
	"github.com/alem-hub/cognitive-insights/pkg/logger"
	"github.com/alem-hub/cognitive-insights/pkg/validate"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT PROJECT COMMAND
// Accepts a project upload, checks it against the active settings and the
// deadline, and stores it as a pending submission.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitProjectCommand contains the upload metadata.
type SubmitProjectCommand struct {
	StudentName string `json:"studentName" validate:"notblank"`
	StudentID   string `json:"studentId" validate:"notblank,max=64"`
	Email       string `json:"email" validate:"required,email"`
	FileName    string `json:"file" validate:"notblank"`
	FileSize    int64  `json:"fileSize" validate:"gte=0"`
	Comments    string `json:"comments" validate:"max=5000"`
}

// Validate validates the command.
func (c SubmitProjectCommand) Validate() error {
	return validate.Struct(c)
}

// SubmitProjectResult is returned on success.
type SubmitProjectResult struct {
	Message      string  `json:"message"`
	SubmissionID string  `json:"submissionId"`
	Late         bool    `json:"late"`
	Penalty      float64 `json:"penalty,omitempty"`
}

// SubmissionObserver is notified of accepted submissions.
type SubmissionObserver interface {
	ObserveSubmission(late bool)
}

// SubmitProjectHandler handles SubmitProjectCommand.
type SubmitProjectHandler struct {
	repo     submission.Repository
	settings submission.SettingsRepository
	location *time.Location
	clock    func() time.Time
	newID    func() string
	observer SubmissionObserver
	logger   *logger.Logger
}

// SubmitProjectOption customizes the handler.
type SubmitProjectOption func(*SubmitProjectHandler)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) SubmitProjectOption {
	return func(h *SubmitProjectHandler) { h.clock = clock }
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(gen func() string) SubmitProjectOption {
	return func(h *SubmitProjectHandler) { h.newID = gen }
}

// WithSubmissionObserver registers an observer.
func WithSubmissionObserver(o SubmissionObserver) SubmitProjectOption {
	return func(h *SubmitProjectHandler) { h.observer = o }
}

// NewSubmitProjectHandler creates a new handler. Deadlines are evaluated in loc.
func NewSubmitProjectHandler(
	repo submission.Repository,
	settings submission.SettingsRepository,
	loc *time.Location,
	log *logger.Logger,
	opts ...SubmitProjectOption,
) *SubmitProjectHandler {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	h := &SubmitProjectHandler{
		repo:     repo,
		settings: settings,
		location: loc,
		clock:    time.Now,
		newID:    uuid.NewString,
		logger:   log.With(logger.Component("submit_project")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle executes the command.
func (h *SubmitProjectHandler) Handle(ctx context.Context, cmd SubmitProjectCommand) (*SubmitProjectResult, error) {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Validate input
	// ─────────────────────────────────────────────────────────────────────────
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.clock().In(h.location)

	settings, err := submission.Current(ctx, h.settings, now)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. File and deadline policy
	// ─────────────────────────────────────────────────────────────────────────
	if err := settings.CheckFile(cmd.FileName, cmd.FileSize); err != nil {
		h.logger.Info("submission rejected", logger.FileName(cmd.FileName), logger.FileSize(cmd.FileSize), logger.Err(err))
		return nil, err
	}

	decision, err := settings.Evaluate(now, h.location)
	if err != nil {
		h.logger.Info("submission rejected", logger.StudentID(cmd.StudentID), logger.Err(err))
		return nil, err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Store
	// ─────────────────────────────────────────────────────────────────────────
	sub, err := submission.New(h.newID(), submission.Draft{
		StudentName: cmd.StudentName,
		StudentID:   cmd.StudentID,
		Email:       cmd.Email,
		FileName:    cmd.FileName,
		FileSize:    cmd.FileSize,
		Comments:    cmd.Comments,
	}, decision, now)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}

	if h.observer != nil {
		h.observer.ObserveSubmission(sub.Late)
	}

	h.logger.Info("submission stored",
		logger.SubmissionID(sub.ID),
		logger.StudentID(sub.StudentID),
		logger.FileName(sub.FileName),
		logger.FileSize(sub.FileSize),
		logger.Bool("late", sub.Late),
	)

	msg := "Submission successful"
	if sub.Late {
		msg = fmt.Sprintf("Submission received after the deadline, a %.0f%% penalty applies", sub.Penalty)
	}

	return &SubmitProjectResult{
		Message:      msg,
		SubmissionID: sub.ID,
		Late:         sub.Late,
		Penalty:      sub.Penalty,
	}, nil
}
