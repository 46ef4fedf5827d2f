package query

import (
	"context"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
	"github.com/alem-hub/cognitive-insights/pkg/validate"
)

// PredictScoreQuery carries the five model features. Pointers distinguish
// missing fields from zero values.
type PredictScoreQuery struct {
	Comprehension  *float64 `json:"comprehension" validate:"required"`
	Attention      *float64 `json:"attention" validate:"required"`
	Focus          *float64 `json:"focus" validate:"required"`
	Retention      *float64 `json:"retention" validate:"required"`
	EngagementTime *float64 `json:"engagement_time" validate:"required"`
}

// Validate checks that every feature is present.
func (q PredictScoreQuery) Validate() error {
	return validate.Struct(q)
}

// PredictScoreHandler runs the mock score predictor.
type PredictScoreHandler struct{}

// NewPredictScoreHandler creates a new handler.
func NewPredictScoreHandler() *PredictScoreHandler {
	return &PredictScoreHandler{}
}

// Handle returns the prediction.
func (h *PredictScoreHandler) Handle(_ context.Context, query PredictScoreQuery) (*cohort.Prediction, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	p := cohort.Predict(cohort.Features{
		Comprehension:  *query.Comprehension,
		Attention:      *query.Attention,
		Focus:          *query.Focus,
		Retention:      *query.Retention,
		EngagementTime: *query.EngagementTime,
	})
	return &p, nil
}
