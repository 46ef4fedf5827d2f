package submission

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
)

// Layouts of the deadline fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Default values for new settings.
const (
	DefaultDeadlineOffset = 7 * 24 * time.Hour
	DefaultDeadlineTime   = "23:59"
	DefaultPenalty        = 10
	DefaultMaxFileSizeMB  = 100
	DefaultInstructions   = "Please submit your complete project as a ZIP file containing all required deliverables."
)

const bytesPerMB = 1024 * 1024

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

// Settings is the submission policy configured by an instructor.
type Settings struct {
	Deadline              string   `json:"deadline"`
	DeadlineTime          string   `json:"deadlineTime"`
	AllowLateSubmissions  bool     `json:"allowLateSubmissions"`
	LateSubmissionPenalty float64  `json:"lateSubmissionPenalty"`
	EmailReminders        bool     `json:"emailReminders"`
	ReminderDays          []int    `json:"reminderDays"`
	Instructions          string   `json:"instructions"`
	MaxFileSize           int64    `json:"maxFileSize"`
	AllowedFileTypes      []string `json:"allowedFileTypes"`
}

// DefaultSettings returns the policy used until an instructor saves one.
// The deadline is one week after now, in now's location.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		Deadline:              now.Add(DefaultDeadlineOffset).Format(DateLayout),
		DeadlineTime:          DefaultDeadlineTime,
		AllowLateSubmissions:  true,
		LateSubmissionPenalty: DefaultPenalty,
		EmailReminders:        true,
		ReminderDays:          []int{7, 3, 1},
		Instructions:          DefaultInstructions,
		MaxFileSize:           DefaultMaxFileSizeMB,
		AllowedFileTypes:      []string{"zip", "tar.gz", "rar"},
	}
}

// Validate checks field formats and ranges.
func (s Settings) Validate() error {
	if _, err := time.Parse(DateLayout, s.Deadline); err != nil {
		return fmt.Errorf("%w: deadline must be YYYY-MM-DD", shared.ErrInvalidSettings)
	}
	if _, err := time.Parse(TimeLayout, s.DeadlineTime); err != nil {
		return fmt.Errorf("%w: deadlineTime must be HH:MM", shared.ErrInvalidSettings)
	}
	if s.LateSubmissionPenalty < 0 || s.LateSubmissionPenalty > 100 {
		return fmt.Errorf("%w: lateSubmissionPenalty must be between 0 and 100", shared.ErrInvalidSettings)
	}
	if s.MaxFileSize <= 0 {
		return fmt.Errorf("%w: maxFileSize must be positive", shared.ErrInvalidSettings)
	}
	for _, d := range s.ReminderDays {
		if d < 0 {
			return fmt.Errorf("%w: reminderDays must not be negative", shared.ErrInvalidSettings)
		}
	}
	return nil
}

// DeadlineAt combines Deadline and DeadlineTime in loc.
func (s Settings) DeadlineAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, s.Deadline+" "+s.DeadlineTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", shared.ErrInvalidSettings, err)
	}
	return t, nil
}

// MaxFileSizeBytes returns the upload limit in bytes.
func (s Settings) MaxFileSizeBytes() int64 {
	return s.MaxFileSize * bytesPerMB
}

// CheckFile verifies the upload against AllowedFileTypes and MaxFileSize.
// An empty AllowedFileTypes list accepts any extension.
func (s Settings) CheckFile(name string, size int64) error {
	if !s.fileTypeAllowed(name) {
		return fmt.Errorf("%w: %q, allowed: %s", shared.ErrFileTypeNotAllowed,
			path.Base(name), strings.Join(s.AllowedFileTypes, ", "))
	}
	if size > s.MaxFileSizeBytes() {
		return fmt.Errorf("%w: %d bytes exceeds %dMB", shared.ErrFileTooLarge, size, s.MaxFileSize)
	}
	return nil
}

func (s Settings) fileTypeAllowed(name string) bool {
	if len(s.AllowedFileTypes) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range s.AllowedFileTypes {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" && strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// DEADLINE POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Decision is the outcome of evaluating a submission time against the deadline.
type Decision struct {
	Late    bool
	Penalty float64
}

// Evaluate decides whether a submission made at now is on time.
// Late submissions are rejected with ErrDeadlinePassed unless allowed.
func (s Settings) Evaluate(now time.Time, loc *time.Location) (Decision, error) {
	deadline, err := s.DeadlineAt(loc)
	if err != nil {
		return Decision{}, err
	}
	if !now.After(deadline) {
		return Decision{}, nil
	}
	if !s.AllowLateSubmissions {
		return Decision{}, fmt.Errorf("%w: deadline was %s", shared.ErrDeadlinePassed, deadline.Format(time.RFC3339))
	}
	return Decision{Late: true, Penalty: s.LateSubmissionPenalty}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE
// ══════════════════════════════════════════════════════════════════════════════

// Update is a partial settings change. Nil scalar fields keep the current
// value; the two list fields are always replaced, nil meaning empty.
type Update struct {
	Deadline              *string
	DeadlineTime          *string
	AllowLateSubmissions  *bool
	LateSubmissionPenalty *float64
	EmailReminders        *bool
	ReminderDays          []int
	Instructions          *string
	MaxFileSize           *int64
	AllowedFileTypes      []string
}

// Apply returns a copy of s with u merged in and validates the result.
func (s Settings) Apply(u Update) (Settings, error) {
	if u.Deadline == nil || u.DeadlineTime == nil {
		return s, fmt.Errorf("%w: deadline and deadlineTime are required", shared.ErrInvalidSettings)
	}

	next := s
	next.Deadline = *u.Deadline
	next.DeadlineTime = *u.DeadlineTime
	if u.AllowLateSubmissions != nil {
		next.AllowLateSubmissions = *u.AllowLateSubmissions
	}
	if u.LateSubmissionPenalty != nil {
		next.LateSubmissionPenalty = *u.LateSubmissionPenalty
	}
	if u.EmailReminders != nil {
		next.EmailReminders = *u.EmailReminders
	}
	if u.Instructions != nil {
		next.Instructions = *u.Instructions
	}
	if u.MaxFileSize != nil {
		next.MaxFileSize = *u.MaxFileSize
	}

	next.ReminderDays = append([]int{}, u.ReminderDays...)
	next.AllowedFileTypes = append([]string{}, u.AllowedFileTypes...)

	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}
