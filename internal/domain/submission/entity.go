// Package submission models project submissions and the deadline policy
// that governs them.
package submission

import (
	"fmt"
	"strings"
	"time"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the review state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusRejected Status = "rejected"
)

// IsValid checks that the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusRejected:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// DRAFT
// ══════════════════════════════════════════════════════════════════════════════

// Draft is the student-supplied part of a submission.
type Draft struct {
	StudentName string
	StudentID   string
	Email       string
	FileName    string
	FileSize    int64
	Comments    string
}

// Validate checks that the required fields are present.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.StudentName) == "" {
		missing = append(missing, "studentName")
	}
	if strings.TrimSpace(d.StudentID) == "" {
		missing = append(missing, "studentId")
	}
	if strings.TrimSpace(d.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(d.FileName) == "" {
		missing = append(missing, "file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", shared.ErrInvalidSubmission, strings.Join(missing, ", "))
	}
	if d.FileSize < 0 {
		return fmt.Errorf("%w: negative file size", shared.ErrInvalidSubmission)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: SUBMISSION
// ══════════════════════════════════════════════════════════════════════════════

// Submission is a stored project upload.
type Submission struct {
	ID          string    `json:"id"`
	StudentName string    `json:"studentName"`
	StudentID   string    `json:"studentId"`
	Email       string    `json:"email"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	Comments    string    `json:"comments"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      Status    `json:"status"`

	// Late is set when the submission arrived after the deadline.
	Late bool `json:"late"`

	// Penalty is the percentage deducted for a late submission.
	Penalty float64 `json:"penalty"`
}

// New creates a pending submission from a validated draft and a deadline decision.
func New(id string, d Draft, decision Decision, submittedAt time.Time) (*Submission, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", shared.ErrInvalidSubmission)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &Submission{
		ID:          id,
		StudentName: strings.TrimSpace(d.StudentName),
		StudentID:   strings.TrimSpace(d.StudentID),
		Email:       strings.TrimSpace(d.Email),
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		Comments:    d.Comments,
		SubmittedAt: submittedAt.UTC(),
		Status:      StatusPending,
		Late:        decision.Late,
		Penalty:     decision.Penalty,
	}, nil
}
