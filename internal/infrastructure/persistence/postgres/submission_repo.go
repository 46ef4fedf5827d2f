package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// SubmissionRepository implements submission.Repository for PostgreSQL.
type SubmissionRepository struct {
	conn *Connection
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(conn *Connection) *SubmissionRepository {
	return &SubmissionRepository{conn: conn}
}

const submissionColumns = `id, student_name, student_id, email, file_name, file_size,
	comments, submitted_at, status, late, penalty`

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, s *submission.Submission) error {
	query := `INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.StudentName,
		s.StudentID,
		s.Email,
		s.FileName,
		s.FileSize,
		s.Comments,
		s.SubmittedAt,
		string(s.Status),
		s.Late,
		s.Penalty,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("submission %s: %w", s.ID, shared.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// List returns all submissions, newest first.
func (r *SubmissionRepository) List(ctx context.Context) ([]*submission.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY submitted_at DESC, id`

	subs, err := Query(ctx, r.conn, query, scanSubmission)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

// Count returns the number of stored submissions.
func (r *SubmissionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.conn.QueryRow(ctx, `SELECT count(*) FROM submissions`, nil, &n); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

func scanSubmission(row pgx.CollectableRow) (*submission.Submission, error) {
	var (
		s      submission.Submission
		status string
	)
	err := row.Scan(
		&s.ID,
		&s.StudentName,
		&s.StudentID,
		&s.Email,
		&s.FileName,
		&s.FileSize,
		&s.Comments,
		&s.SubmittedAt,
		&status,
		&s.Late,
		&s.Penalty,
	)
	if err != nil {
		return nil, err
	}
	s.Status = submission.Status(status)
	s.SubmittedAt = s.SubmittedAt.UTC()
	return &s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// SettingsRepository implements submission.SettingsRepository as a single
// JSONB row.
type SettingsRepository struct {
	conn *Connection
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(conn *Connection) *SettingsRepository {
	return &SettingsRepository{conn: conn}
}

// Get returns the saved settings or shared.ErrNotFound.
func (r *SettingsRepository) Get(ctx context.Context) (*submission.Settings, error) {
	var raw []byte
	err := r.conn.QueryRow(ctx, `SELECT settings FROM submission_settings WHERE id = 1`, nil, &raw)
	if err != nil {
		if IsNoRows(err) {
			return nil, fmt.Errorf("submission settings: %w", shared.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var s submission.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &s, nil
}

// Save replaces the stored settings.
func (r *SettingsRepository) Save(ctx context.Context, s *submission.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = r.conn.Exec(ctx, `
		INSERT INTO submission_settings (id, settings, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = EXCLUDED.updated_at
	`, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
