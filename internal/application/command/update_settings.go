package command

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
	"github.com/alem-hub/cognitive-insights/pkg/logger"
	"github.com/alem-hub/cognitive-insights/pkg/validate"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE SETTINGS COMMAND
// Merges a partial settings document into the active one.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateSettingsCommand is the JSON body of a settings update.
// nil scalar values mean "don't change"; list values are always replaced.
type UpdateSettingsCommand struct {
	Deadline              *string  `json:"deadline" validate:"required"`
	DeadlineTime          *string  `json:"deadlineTime" validate:"required"`
	AllowLateSubmissions  *bool    `json:"allowLateSubmissions"`
	LateSubmissionPenalty *float64 `json:"lateSubmissionPenalty" validate:"omitempty,gte=0,lte=100"`
	EmailReminders        *bool    `json:"emailReminders"`
	ReminderDays          []int    `json:"reminderDays" validate:"omitempty,dive,gte=0"`
	Instructions          *string  `json:"instructions" validate:"omitempty,max=5000"`
	MaxFileSize           *int64   `json:"maxFileSize" validate:"omitempty,gt=0"`
	AllowedFileTypes      []string `json:"allowedFileTypes" validate:"omitempty,dive,notblank"`
}

// Validate validates the command.
func (c UpdateSettingsCommand) Validate() error {
	return validate.Struct(c)
}

func (c UpdateSettingsCommand) toUpdate() submission.Update {
	return submission.Update{
		Deadline:              c.Deadline,
		DeadlineTime:          c.DeadlineTime,
		AllowLateSubmissions:  c.AllowLateSubmissions,
		LateSubmissionPenalty: c.LateSubmissionPenalty,
		EmailReminders:        c.EmailReminders,
		ReminderDays:          c.ReminderDays,
		Instructions:          c.Instructions,
		MaxFileSize:           c.MaxFileSize,
		AllowedFileTypes:      c.AllowedFileTypes,
	}
}

// UpdateSettingsHandler handles UpdateSettingsCommand.
type UpdateSettingsHandler struct {
	repo   submission.SettingsRepository
	clock  func() time.Time
	logger *logger.Logger
}

// NewUpdateSettingsHandler creates a new handler. clock defaults to time.Now.
func NewUpdateSettingsHandler(repo submission.SettingsRepository, clock func() time.Time, log *logger.Logger) *UpdateSettingsHandler {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UpdateSettingsHandler{
		repo:   repo,
		clock:  clock,
		logger: log.With(logger.Component("update_settings")),
	}
}

// Handle executes the command and returns the stored settings.
func (h *UpdateSettingsHandler) Handle(ctx context.Context, cmd UpdateSettingsCommand) (*submission.Settings, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	current, err := submission.Current(ctx, h.repo, h.clock())
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	next, err := current.Apply(cmd.toUpdate())
	if err != nil {
		return nil, err
	}

	if err := h.repo.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	h.logger.Info("submission settings updated",
		logger.String("deadline", next.Deadline+" "+next.DeadlineTime),
		logger.Bool("allow_late", next.AllowLateSubmissions),
	)

	return &next, nil
}
