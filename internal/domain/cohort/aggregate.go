package cohort

import (
	"math"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
)

// ScatterSampleSize is the number of leading records plotted as attention vs assessment.
const ScatterSampleSize = 20

// Skill labels in canonical order.
var skillLabels = [4]string{"Comprehension", "Attention", "Focus", "Retention"}

// engagementBands are checked in order; a record falls into the first band
// whose inclusive upper bound it does not exceed.
var engagementBands = []struct {
	label string
	upper float64
}{
	{"30-60 min", 60},
	{"61-120 min", 120},
	{"121-180 min", 180},
	{"181+ min", math.Inf(1)},
}

// ══════════════════════════════════════════════════════════════════════════════
// PROJECTIONS
// ══════════════════════════════════════════════════════════════════════════════

// SkillAverage is one bar of the skills comparison chart.
type SkillAverage struct {
	Skill    string  `json:"skill"`
	AvgScore float64 `json:"avgScore"`
}

// ScatterPoint is one point of the attention vs assessment chart.
type ScatterPoint struct {
	Attention  float64 `json:"attention"`
	Assessment float64 `json:"assessment"`
}

// PersonaShare is one slice of the persona distribution.
type PersonaShare struct {
	Persona    Persona `json:"persona"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// EngagementBucket groups records by weekly engagement time.
type EngagementBucket struct {
	Range    string  `json:"range"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avgScore"`
}

// PopulationStats is a summary of one population. Every call to Aggregate
// produces a fresh value.
type PopulationStats struct {
	TotalStudents int `json:"totalStudents"`

	AvgComprehension   float64 `json:"avgComprehension"`
	AvgAttention       float64 `json:"avgAttention"`
	AvgFocus           float64 `json:"avgFocus"`
	AvgRetention       float64 `json:"avgRetention"`
	AvgAssessmentScore float64 `json:"avgAssessmentScore"`
	AvgEngagementTime  float64 `json:"avgEngagementTime"`

	HighPerformerCount int `json:"highPerformerCount"`

	PersonaDistribution []PersonaShare     `json:"personaDistribution"`
	EngagementTrends    []EngagementBucket `json:"engagementTrends"`
	SkillsComparison    []SkillAverage     `json:"skillsComparison"`
	ScatterSample       []ScatterPoint     `json:"scatterSample"`
}

// ChartData is the projection consumed by the dashboard charts.
type ChartData struct {
	SkillsComparison      []SkillAverage     `json:"skillsComparison"`
	AttentionVsAssessment []ScatterPoint     `json:"attentionVsAssessment"`
	PersonaDistribution   []PersonaShare     `json:"personaDistribution"`
	EngagementTrends      []EngagementBucket `json:"engagementTrends"`
}

// Charts projects the stats onto ChartData.
func (s *PopulationStats) Charts() ChartData {
	return ChartData{
		SkillsComparison:      s.SkillsComparison,
		AttentionVsAssessment: s.ScatterSample,
		PersonaDistribution:   s.PersonaDistribution,
		EngagementTrends:      s.EngagementTrends,
	}
}

// PersonaCount returns the number of records with persona p.
func (s *PopulationStats) PersonaCount(p Persona) int {
	for _, share := range s.PersonaDistribution {
		if share.Persona == p {
			return share.Count
		}
	}
	return 0
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE
// ══════════════════════════════════════════════════════════════════════════════

// Round1 rounds to one decimal place, halves away from zero. The half is
// judged on the float64 product x*10, not on the decimal literal, so an
// input stored just below a tie can round down.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Aggregate computes PopulationStats over the population. Records without a
// persona are classified on the fly; the input is never modified.
func Aggregate(population []StudentRecord) (*PopulationStats, error) {
	n := len(population)
	if n == 0 {
		return nil, shared.ErrEmptyPopulation
	}

	var (
		skillSums     [4]float64
		assessmentSum float64
		engagementSum float64
		highCount     int
		personaOrder  []Persona
		personaCounts = make(map[Persona]int, len(AllPersonas))
		bandCounts    = make([]int, len(engagementBands))
		bandScores    = make([]float64, len(engagementBands))
	)

	for _, r := range population {
		for i, v := range r.Skills() {
			skillSums[i] += v
		}
		assessmentSum += r.AssessmentScore
		engagementSum += r.EngagementTime
		if r.IsHighPerformer() {
			highCount++
		}

		p := personaOf(r)
		if _, seen := personaCounts[p]; !seen {
			personaOrder = append(personaOrder, p)
		}
		personaCounts[p]++

		b := bandIndex(r.EngagementTime)
		bandCounts[b]++
		bandScores[b] += r.AssessmentScore
	}

	fn := float64(n)
	stats := &PopulationStats{
		TotalStudents:      n,
		AvgComprehension:   Round1(skillSums[0] / fn),
		AvgAttention:       Round1(skillSums[1] / fn),
		AvgFocus:           Round1(skillSums[2] / fn),
		AvgRetention:       Round1(skillSums[3] / fn),
		AvgAssessmentScore: Round1(assessmentSum / fn),
		AvgEngagementTime:  Round1(engagementSum / fn),
		HighPerformerCount: highCount,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Skills comparison
	// ─────────────────────────────────────────────────────────────────────────
	stats.SkillsComparison = make([]SkillAverage, len(skillLabels))
	for i, label := range skillLabels {
		stats.SkillsComparison[i] = SkillAverage{Skill: label, AvgScore: Round1(skillSums[i] / fn)}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Persona distribution, first-observed order
	// ─────────────────────────────────────────────────────────────────────────
	stats.PersonaDistribution = make([]PersonaShare, 0, len(personaOrder))
	for _, p := range personaOrder {
		c := personaCounts[p]
		stats.PersonaDistribution = append(stats.PersonaDistribution, PersonaShare{
			Persona:    p,
			Count:      c,
			Percentage: Round1(float64(c) / fn * 100),
		})
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Engagement trends
	// ─────────────────────────────────────────────────────────────────────────
	stats.EngagementTrends = make([]EngagementBucket, len(engagementBands))
	for i, band := range engagementBands {
		bucket := EngagementBucket{Range: band.label, Count: bandCounts[i]}
		if bandCounts[i] > 0 {
			bucket.AvgScore = Round1(bandScores[i] / float64(bandCounts[i]))
		}
		stats.EngagementTrends[i] = bucket
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Scatter sample
	// ─────────────────────────────────────────────────────────────────────────
	sample := min(ScatterSampleSize, n)
	stats.ScatterSample = make([]ScatterPoint, sample)
	for i := 0; i < sample; i++ {
		stats.ScatterSample[i] = ScatterPoint{
			Attention:  Round1(population[i].Attention),
			Assessment: Round1(population[i].AssessmentScore),
		}
	}

	return stats, nil
}

func bandIndex(minutes float64) int {
	for i, band := range engagementBands {
		if minutes <= band.upper {
			return i
		}
	}
	return len(engagementBands) - 1
}
