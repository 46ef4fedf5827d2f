package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
	"github.com/alem-hub/cognitive-insights/internal/infrastructure/persistence/memory"
)

type lateCounter struct{ onTime, late int }

func (c *lateCounter) ObserveSubmission(late bool) {
	if late {
		c.late++
	} else {
		c.onTime++
	}
}

func validSubmission() SubmitProjectCommand {
	return SubmitProjectCommand{
		StudentName: "Ada Lovelace",
		StudentID:   "S-1",
		Email:       "ada@example.com",
		FileName:    "engine.zip",
		FileSize:    2048,
	}
}

func strPtr(s string) *string { return &s }

func TestSubmitProject_OnTime(t *testing.T) {
	repo := memory.NewSubmissionRepository()
	counter := &lateCounter{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	h := NewSubmitProjectHandler(repo, memory.NewSettingsRepository(), time.UTC, nil,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "fixed-id" }),
		WithSubmissionObserver(counter),
	)

	res, err := h.Handle(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", res.SubmissionID)
	assert.Equal(t, "Submission successful", res.Message)
	assert.False(t, res.Late)
	assert.Equal(t, 1, counter.onTime)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, submission.StatusPending, list[0].Status)
	assert.Equal(t, now, list[0].SubmittedAt)
}

func TestSubmitProject_GeneratesUUID(t *testing.T) {
	h := NewSubmitProjectHandler(memory.NewSubmissionRepository(), memory.NewSettingsRepository(), nil, nil)

	res, err := h.Handle(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Len(t, res.SubmissionID, 36)
}

func TestSubmitProject_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitProjectCommand)
		want   error
	}{
		{name: "missing name", mutate: func(c *SubmitProjectCommand) { c.StudentName = " " }, want: shared.ErrValidation},
		{name: "id too long", mutate: func(c *SubmitProjectCommand) { c.StudentID = strings.Repeat("7", 65) }, want: shared.ErrValidation},
		{name: "bad email", mutate: func(c *SubmitProjectCommand) { c.Email = "not-an-email" }, want: shared.ErrValidation},
		{name: "missing file", mutate: func(c *SubmitProjectCommand) { c.FileName = "" }, want: shared.ErrValidation},
		{name: "wrong type", mutate: func(c *SubmitProjectCommand) { c.FileName = "engine.exe" }, want: shared.ErrFileTypeNotAllowed},
		{name: "too big", mutate: func(c *SubmitProjectCommand) { c.FileSize = 101 * 1024 * 1024 }, want: shared.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewSubmissionRepository()
			h := NewSubmitProjectHandler(repo, memory.NewSettingsRepository(), time.UTC, nil)

			cmd := validSubmission()
			tt.mutate(&cmd)

			_, err := h.Handle(context.Background(), cmd)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, shared.IsValidation(err))

			n, _ := repo.Count(context.Background())
			assert.Zero(t, n)
		})
	}
}

func TestSubmitProject_AfterDeadline(t *testing.T) {
	settingsRepo := memory.NewSettingsRepository()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	s := submission.DefaultSettings(now)
	s.Deadline = "2026-03-09"
	require.NoError(t, settingsRepo.Save(ctx, &s))

	counter := &lateCounter{}
	repo := memory.NewSubmissionRepository()
	h := NewSubmitProjectHandler(repo, settingsRepo, time.UTC, nil,
		WithClock(func() time.Time { return now }),
		WithSubmissionObserver(counter),
	)

	res, err := h.Handle(ctx, validSubmission())
	require.NoError(t, err)
	assert.True(t, res.Late)
	assert.Equal(t, 10.0, res.Penalty)
	assert.Equal(t, 1, counter.late)

	s.AllowLateSubmissions = false
	require.NoError(t, settingsRepo.Save(ctx, &s))

	_, err = h.Handle(ctx, validSubmission())
	assert.True(t, errors.Is(err, shared.ErrDeadlinePassed))
	assert.True(t, shared.IsExpired(err))

	n, _ := repo.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestSubmitProject_DefaultDeadlineIsFixed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	settingsRepo := memory.NewSettingsRepository()
	h := NewSubmitProjectHandler(memory.NewSubmissionRepository(), settingsRepo, time.UTC, nil,
		WithClock(func() time.Time { return now }),
	)

	res, err := h.Handle(ctx, validSubmission())
	require.NoError(t, err)
	assert.False(t, res.Late)

	stored, err := settingsRepo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-08", stored.Deadline)

	now = now.AddDate(0, 0, 30)

	res, err = h.Handle(ctx, validSubmission())
	require.NoError(t, err)
	assert.True(t, res.Late)
	assert.Equal(t, 10.0, res.Penalty)

	stored, err = settingsRepo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-08", stored.Deadline)
}

func TestUpdateSettings(t *testing.T) {
	repo := memory.NewSettingsRepository()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	h := NewUpdateSettingsHandler(repo, func() time.Time { return now }, nil)

	penalty := 20.0
	got, err := h.Handle(context.Background(), UpdateSettingsCommand{
		Deadline:              strPtr("2026-04-01"),
		DeadlineTime:          strPtr("17:30"),
		LateSubmissionPenalty: &penalty,
		ReminderDays:          []int{2},
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-04-01", got.Deadline)
	assert.Equal(t, 20.0, got.LateSubmissionPenalty)
	assert.Equal(t, []int{2}, got.ReminderDays)
	assert.Equal(t, []string{}, got.AllowedFileTypes)
	assert.Equal(t, submission.DefaultInstructions, got.Instructions)

	stored, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdateSettings_Invalid(t *testing.T) {
	h := NewUpdateSettingsHandler(memory.NewSettingsRepository(), nil, nil)
	over := 150.0

	tests := []struct {
		name string
		cmd  UpdateSettingsCommand
	}{
		{name: "missing deadline", cmd: UpdateSettingsCommand{DeadlineTime: strPtr("10:00")}},
		{name: "penalty out of range", cmd: UpdateSettingsCommand{Deadline: strPtr("2026-04-01"), DeadlineTime: strPtr("10:00"), LateSubmissionPenalty: &over}},
		{name: "negative reminder", cmd: UpdateSettingsCommand{Deadline: strPtr("2026-04-01"), DeadlineTime: strPtr("10:00"), ReminderDays: []int{-1}}},
		{name: "bad date", cmd: UpdateSettingsCommand{Deadline: strPtr("April 1"), DeadlineTime: strPtr("10:00")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tt.cmd)
			assert.True(t, shared.IsValidation(err), "got %v", err)
		})
	}
}
