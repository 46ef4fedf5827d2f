package cohort

import "math"

// ModelType names the scoring model reported with each prediction.
const ModelType = "RandomForestRegressor (Mock)"

// FeatureNames lists the inputs used by the predictor in request order.
var FeatureNames = []string{"comprehension", "attention", "focus", "retention", "engagement_time"}

// Feature weights of the linear approximation.
const (
	weightComprehension = 0.30
	weightAttention     = 0.25
	weightFocus         = 0.25
	weightRetention     = 0.20

	engagementBonus = 5.0
	minConfidence   = 70.0
	maxConfidence   = 95.0
)

// Features are the inputs of a score prediction.
type Features struct {
	Comprehension  float64 `json:"comprehension"`
	Attention      float64 `json:"attention"`
	Focus          float64 `json:"focus"`
	Retention      float64 `json:"retention"`
	EngagementTime float64 `json:"engagement_time"`
}

// ModelInfo describes the model that produced a prediction.
type ModelInfo struct {
	ModelType    string   `json:"model_type"`
	FeaturesUsed []string `json:"features_used"`
}

// Prediction is the result of Predict.
type Prediction struct {
	PredictedAssessmentScore float64   `json:"predicted_assessment_score"`
	Confidence               float64   `json:"confidence"`
	InputFeatures            Features  `json:"input_features"`
	ModelInfo                ModelInfo `json:"model_info"`
}

// Predict estimates an assessment score with a fixed linear model.
//
// The engagement effect is min((t-30)/270, 1) * 5. Confidence drops with the
// variance of the four skills and never goes below 70.
func Predict(f Features) Prediction {
	base := f.Comprehension*weightComprehension +
		f.Attention*weightAttention +
		f.Focus*weightFocus +
		f.Retention*weightRetention

	effect := math.Min((f.EngagementTime-EngagementMin)/(EngagementMax-EngagementMin), 1) * engagementBonus
	score := Clamp(base+effect, SkillMin, SkillMax)

	skills := [4]float64{f.Comprehension, f.Attention, f.Focus, f.Retention}
	var mean float64
	for _, s := range skills {
		mean += s
	}
	mean /= float64(len(skills))

	var variance float64
	for _, s := range skills {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(skills))

	confidence := math.Max(minConfidence, maxConfidence-variance/10)

	used := make([]string, len(FeatureNames))
	copy(used, FeatureNames)

	return Prediction{
		PredictedAssessmentScore: Round1(score),
		Confidence:               Round1(confidence),
		InputFeatures:            f,
		ModelInfo: ModelInfo{
			ModelType:    ModelType,
			FeaturesUsed: used,
		},
	}
}
