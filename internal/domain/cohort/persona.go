package cohort

// ══════════════════════════════════════════════════════════════════════════════
// PERSONA
// ══════════════════════════════════════════════════════════════════════════════

// Persona is a behavioral archetype assigned to a student record.
type Persona string

const (
	// PersonaHighAchiever - strong scores, strong skills and high engagement.
	PersonaHighAchiever Persona = "High Achiever"
	// PersonaStrugglingLearner - low scores, low skills and low engagement.
	PersonaStrugglingLearner Persona = "Struggling Learner"
	// PersonaFocusedSpecialist - one standout skill on an otherwise moderate profile.
	PersonaFocusedSpecialist Persona = "Focused Specialist"
	// PersonaAveragePerformer - everyone else.
	PersonaAveragePerformer Persona = "Average Performer"
)

// AllPersonas lists the personas in rule precedence order.
var AllPersonas = []Persona{
	PersonaHighAchiever,
	PersonaStrugglingLearner,
	PersonaFocusedSpecialist,
	PersonaAveragePerformer,
}

// IsValid checks that the persona is one of the four known labels.
func (p Persona) IsValid() bool {
	switch p {
	case PersonaHighAchiever, PersonaStrugglingLearner, PersonaFocusedSpecialist, PersonaAveragePerformer:
		return true
	default:
		return false
	}
}

// String returns the display label.
func (p Persona) String() string {
	return string(p)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFICATION RULES
// ══════════════════════════════════════════════════════════════════════════════

// Thresholds used by the classification rules.
const (
	HighAchieverMinAssessment = 85.0
	HighAchieverMinCognitive  = 80.0
	HighAchieverMinEngagement = 180.0

	StrugglingMaxAssessment = 65.0
	StrugglingMaxCognitive  = 70.0
	StrugglingMaxEngagement = 120.0

	SpecialistMinSkill        = 85.0
	SpecialistCognitiveCutoff = 80.0 // exclusive

	// HighPerformerThreshold is the assessment score counted as a high performer.
	HighPerformerThreshold = 85.0
)

// Rule pairs a predicate with the persona it assigns.
type Rule struct {
	Persona Persona
	Matches func(r StudentRecord) bool
}

// rules are evaluated in order; the first match wins.
// The last rule always matches, which makes Classify total.
var rules = []Rule{
	{
		Persona: PersonaHighAchiever,
		Matches: func(r StudentRecord) bool {
			return r.AssessmentScore >= HighAchieverMinAssessment &&
				r.AvgCognitive() >= HighAchieverMinCognitive &&
				r.EngagementTime >= HighAchieverMinEngagement
		},
	},
	{
		Persona: PersonaStrugglingLearner,
		Matches: func(r StudentRecord) bool {
			return r.AssessmentScore <= StrugglingMaxAssessment &&
				r.AvgCognitive() <= StrugglingMaxCognitive &&
				r.EngagementTime <= StrugglingMaxEngagement
		},
	},
	{
		Persona: PersonaFocusedSpecialist,
		Matches: func(r StudentRecord) bool {
			return hasStandoutSkill(r) && r.AvgCognitive() < SpecialistCognitiveCutoff
		},
	},
	{
		Persona: PersonaAveragePerformer,
		Matches: func(StudentRecord) bool { return true },
	},
}

// Rules returns a copy of the classification rules in precedence order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func hasStandoutSkill(r StudentRecord) bool {
	for _, s := range r.Skills() {
		if s >= SpecialistMinSkill {
			return true
		}
	}
	return false
}

// Classify returns the persona of a record. It is pure and deterministic.
func Classify(r StudentRecord) Persona {
	for _, rule := range rules {
		if rule.Matches(r) {
			return rule.Persona
		}
	}
	// unreachable: the fallback rule always matches
	return PersonaAveragePerformer
}

// ClassifyAll returns a new slice where every record carries its persona.
// The input slice is left untouched.
func ClassifyAll(records []StudentRecord) []StudentRecord {
	out := make([]StudentRecord, len(records))
	for i, r := range records {
		out[i] = r.WithPersona(Classify(r))
	}
	return out
}

// personaOf returns the assigned persona, classifying on the fly when absent.
func personaOf(r StudentRecord) Persona {
	if r.IsClassified() {
		return r.Persona
	}
	return Classify(r)
}
