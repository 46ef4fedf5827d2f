package cohort

import (
	"fmt"
	"math/rand/v2"

	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
)

// MaxPopulation caps a single synthesis request.
const MaxPopulation = 10000

// SubmittedClass is the cohort class of records derived from project submissions.
const SubmittedClass = "Submitted"

var (
	firstNames = []string{"Alex", "Jordan", "Taylor", "Casey", "Morgan", "Riley", "Avery", "Quinn", "Blake", "Cameron"}
	lastNames  = []string{"Johnson", "Smith", "Brown", "Wilson", "Davis", "Miller", "Garcia", "Martinez", "Anderson", "Taylor"}
	classes    = []string{"A", "B", "C"}
)

// ══════════════════════════════════════════════════════════════════════════════
// RANDOM SOURCE
// ══════════════════════════════════════════════════════════════════════════════

// RandomSource supplies the randomness consumed by the synthesizer.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform value in [0, n).
	IntN(n int) int
}

// NewRandomSource returns a deterministic PCG generator for the given seed.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewUnseededSource returns a generator seeded from the runtime's entropy.
func NewUnseededSource() RandomSource {
	return NewRandomSource(rand.Uint64())
}

// ══════════════════════════════════════════════════════════════════════════════
// SYNTHESIS PROFILES
// ══════════════════════════════════════════════════════════════════════════════

// SynthesisProfile describes how a record is drawn from one latent base ability.
type SynthesisProfile struct {
	BaseMin  float64 // base = BaseMin + BaseSpan*u
	BaseSpan float64
	SkillVar float64 // skill = base + (u-0.5)*SkillVar
	ScoreVar float64 // assessment = base + (u-0.5)*ScoreVar
	EngBase  float64 // engagement = EngBase + EngSlope*(base-EngPivot) + (u-0.5)*EngVar
	EngSlope float64
	EngPivot float64
	EngVar   float64
	EngMin   float64 // profile engagement floor, applied before NewRecord
	EngMax   float64 // profile engagement ceiling, applied before NewRecord
}

// DefaultProfile is used for synthesized cohorts.
var DefaultProfile = SynthesisProfile{
	BaseMin:  40,
	BaseSpan: 50,
	SkillVar: 15,
	ScoreVar: 10,
	EngBase:  90,
	EngSlope: 2,
	EngPivot: 65,
	EngVar:   60,
	EngMin:   EngagementMin,
	EngMax:   EngagementMax,
}

// SubmittedProfile is used for students who submitted a project.
var SubmittedProfile = SynthesisProfile{
	BaseMin:  60,
	BaseSpan: 30,
	SkillVar: 10,
	ScoreVar: 8,
	EngBase:  120,
	EngSlope: 1.5,
	EngPivot: 75,
	EngVar:   40,
	EngMin:   60,
	EngMax:   240,
}

func (p SynthesisProfile) draw(src RandomSource, base float64) Metrics {
	skill := func() float64 { return base + (src.Float64()-0.5)*p.SkillVar }

	m := Metrics{}
	m.Comprehension = skill()
	m.Attention = skill()
	m.Focus = skill()
	m.Retention = skill()
	m.AssessmentScore = base + (src.Float64()-0.5)*p.ScoreVar
	m.EngagementTime = Clamp(
		p.EngBase+p.EngSlope*(base-p.EngPivot)+(src.Float64()-0.5)*p.EngVar,
		p.EngMin, p.EngMax,
	)
	return m
}

func (p SynthesisProfile) base(src RandomSource) float64 {
	return p.BaseMin + p.BaseSpan*src.Float64()
}

// ══════════════════════════════════════════════════════════════════════════════
// SYNTHESIZE
// ══════════════════════════════════════════════════════════════════════════════

// Synthesize produces count unclassified records with the default profile.
// The same seeded source always yields the same records.
func Synthesize(count int, src RandomSource) ([]StudentRecord, error) {
	if count < 0 || count > MaxPopulation {
		return nil, invalidArgf("count %d outside [0, %d]", count, MaxPopulation)
	}
	if src == nil {
		return nil, invalidArgf("random source is required")
	}

	records := make([]StudentRecord, 0, count)
	for i := 0; i < count; i++ {
		base := DefaultProfile.base(src)
		first := firstNames[src.IntN(len(firstNames))]
		last := lastNames[src.IntN(len(lastNames))]
		class := classes[src.IntN(len(classes))]
		m := DefaultProfile.draw(src, base)

		records = append(records, NewRecord(fmt.Sprintf("STU%04d", i+1), first+" "+last, class, m))
	}
	return records, nil
}

// SubmittedStudent identifies a student derived from a project submission.
type SubmittedStudent struct {
	ID   string
	Name string
}

// SynthesizeSubmitted produces one record per entry using SubmittedProfile.
// Records keep the entry's ID and name and belong to SubmittedClass.
func SynthesizeSubmitted(entries []SubmittedStudent, src RandomSource) ([]StudentRecord, error) {
	if len(entries) > MaxPopulation {
		return nil, invalidArgf("%d submitted students exceed %d", len(entries), MaxPopulation)
	}
	if src == nil {
		return nil, invalidArgf("random source is required")
	}

	records := make([]StudentRecord, 0, len(entries))
	for _, e := range entries {
		base := SubmittedProfile.base(src)
		m := SubmittedProfile.draw(src, base)
		records = append(records, NewRecord(e.ID, e.Name, SubmittedClass, m))
	}
	return records, nil
}

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", shared.ErrInvalidArgument, fmt.Sprintf(format, args...))
}
