package query

import (
	"context"
	"errors"
	"strings"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
	"github.com/alem-hub/cognitive-insights/pkg/validate"
)

// GetStudentQuery looks up one record of the current population.
type GetStudentQuery struct {
	StudentID string
}

// Validate checks the query.
func (q GetStudentQuery) Validate() error {
	if err := validate.Var(strings.TrimSpace(q.StudentID), "required,max=64"); err != nil {
		return errors.New("student id must be 1 to 64 characters")
	}
	return nil
}

// GetStudentHandler handles GetStudentQuery.
type GetStudentHandler struct {
	builder *PopulationBuilder
}

// NewGetStudentHandler creates a new handler.
func NewGetStudentHandler(builder *PopulationBuilder) *GetStudentHandler {
	return &GetStudentHandler{builder: builder}
}

// Handle returns the record or shared.ErrStudentNotFound.
func (h *GetStudentHandler) Handle(ctx context.Context, query GetStudentQuery) (*cohort.StudentRecord, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetStudent", shared.ErrValidation, err.Error(), err)
	}

	population, err := h.builder.Build(ctx, BuildOptions{WithSubmissions: true})
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(query.StudentID)
	for i := range population {
		if strings.EqualFold(population[i].ID, id) {
			r := population[i]
			return &r, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}
