package query

import (
	"context"
	"errors"
	"strings"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENTS QUERY
// Lists the current population with search, pagination and optional stats.
// ══════════════════════════════════════════════════════════════════════════════

// Pagination limits.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// GetStudentsQuery contains list parameters.
type GetStudentsQuery struct {
	// Page - 1-based page number.
	Page int

	// Limit - page size (default 10, max 100).
	Limit int

	// Search - case-insensitive substring of name or id.
	Search string

	// IncludeStats - attach stats over the whole population.
	IncludeStats bool
}

// Validate normalizes paging values.
func (q *GetStudentsQuery) Validate() error {
	if q.Page < 0 || q.Limit < 0 {
		return errors.New("page and limit cannot be negative")
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	return nil
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// GetStudentsResult is one page of students.
type GetStudentsResult struct {
	Students   []cohort.StudentRecord  `json:"students"`
	Pagination Pagination              `json:"pagination"`
	Stats      *cohort.PopulationStats `json:"stats,omitempty"`
}

// GetStudentsHandler handles GetStudentsQuery.
type GetStudentsHandler struct {
	builder *PopulationBuilder
}

// NewGetStudentsHandler creates a new handler.
func NewGetStudentsHandler(builder *PopulationBuilder) *GetStudentsHandler {
	return &GetStudentsHandler{builder: builder}
}

// Handle executes the query.
func (h *GetStudentsHandler) Handle(ctx context.Context, query GetStudentsQuery) (*GetStudentsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStudents", shared.ErrValidation, err.Error(), err)
	}

	population, err := h.builder.Build(ctx, BuildOptions{WithSubmissions: true})
	if err != nil {
		return nil, err
	}

	filtered := filterStudents(population, query.Search)
	total := len(filtered)

	start := total
	if query.Page-1 < (total+query.Limit-1)/query.Limit {
		start = (query.Page - 1) * query.Limit
	}
	end := min(start+query.Limit, total)

	result := &GetStudentsResult{
		Students: append([]cohort.StudentRecord{}, filtered[start:end]...),
		Pagination: Pagination{
			Page:       query.Page,
			Limit:      query.Limit,
			Total:      total,
			TotalPages: (total + query.Limit - 1) / query.Limit,
		},
	}

	// Stats cover the whole population, not the filtered page.
	if query.IncludeStats && len(population) > 0 {
		stats, err := cohort.Aggregate(population)
		if err != nil {
			return nil, err
		}
		result.Stats = stats
	}

	return result, nil
}

func filterStudents(records []cohort.StudentRecord, search string) []cohort.StudentRecord {
	if search == "" {
		return records
	}
	needle := strings.ToLower(search)

	out := make([]cohort.StudentRecord, 0)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) || strings.Contains(strings.ToLower(r.ID), needle) {
			out = append(out, r)
		}
	}
	return out
}
