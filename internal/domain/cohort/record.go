package cohort

// ══════════════════════════════════════════════════════════════════════════════
// METRIC BOUNDS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// SkillMin and SkillMax bound the four cognitive skills and the assessment score.
	SkillMin = 0.0
	SkillMax = 100.0

	// EngagementMin and EngagementMax bound weekly engagement time, in minutes.
	EngagementMin = 30.0
	EngagementMax = 300.0
)

// Clamp limits v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Metrics holds the raw measurements of a student before clamping.
type Metrics struct {
	Comprehension   float64
	Attention       float64
	Focus           float64
	Retention       float64
	AssessmentScore float64
	EngagementTime  float64
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT RECORD
// ══════════════════════════════════════════════════════════════════════════════

// StudentRecord is an immutable snapshot of one student's cognitive metrics.
// All metric fields are clamped at construction time; consumers never
// re-validate ranges.
type StudentRecord struct {
	// ID is stable for the lifetime of the record (e.g. "STU0001").
	ID string `json:"id"`

	// Name is a display name.
	Name string `json:"name"`

	// CohortClass is the class the student belongs to ("A", "B", "C", "Submitted").
	CohortClass string `json:"cohortClass"`

	// Cognitive skills, each in [0, 100].
	Comprehension float64 `json:"comprehension"`
	Attention     float64 `json:"attention"`
	Focus         float64 `json:"focus"`
	Retention     float64 `json:"retention"`

	// AssessmentScore is the dependent variable, in [0, 100].
	AssessmentScore float64 `json:"assessmentScore"`

	// EngagementTime is weekly time on task in minutes, in [30, 300].
	EngagementTime float64 `json:"engagementTime"`

	// Persona is empty until the record has been classified.
	Persona Persona `json:"persona,omitempty"`
}

// NewRecord builds a record and clamps every metric to its documented range.
func NewRecord(id, name, cohortClass string, m Metrics) StudentRecord {
	return StudentRecord{
		ID:              id,
		Name:            name,
		CohortClass:     cohortClass,
		Comprehension:   Clamp(m.Comprehension, SkillMin, SkillMax),
		Attention:       Clamp(m.Attention, SkillMin, SkillMax),
		Focus:           Clamp(m.Focus, SkillMin, SkillMax),
		Retention:       Clamp(m.Retention, SkillMin, SkillMax),
		AssessmentScore: Clamp(m.AssessmentScore, SkillMin, SkillMax),
		EngagementTime:  Clamp(m.EngagementTime, EngagementMin, EngagementMax),
	}
}

// AvgCognitive returns the unweighted mean of the four cognitive skills.
func (r StudentRecord) AvgCognitive() float64 {
	return (r.Comprehension + r.Attention + r.Focus + r.Retention) / 4
}

// Skills returns the four cognitive skills in canonical order.
func (r StudentRecord) Skills() [4]float64 {
	return [4]float64{r.Comprehension, r.Attention, r.Focus, r.Retention}
}

// IsClassified reports whether a persona has been assigned.
func (r StudentRecord) IsClassified() bool {
	return r.Persona != ""
}

// WithPersona returns a copy of the record with the persona assigned.
func (r StudentRecord) WithPersona(p Persona) StudentRecord {
	r.Persona = p
	return r
}

// IsHighPerformer reports whether the assessment score reaches HighPerformerThreshold.
func (r StudentRecord) IsHighPerformer() bool {
	return r.AssessmentScore >= HighPerformerThreshold
}
