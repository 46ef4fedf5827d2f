// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
	"github.com/alem-hub/cognitive-insights/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// POPULATION BUILDER
// Assembles the classified population every read query works on.
// A population is never stored: each call builds a fresh one.
// ══════════════════════════════════════════════════════════════════════════════

// PopulationConfig controls how populations are assembled.
type PopulationConfig struct {
	// Size - number of synthesized records.
	Size int

	// Seed - fixed seed for reproducible populations, 0 for fresh randomness.
	Seed uint64

	// DatasetPath - CSV file replacing synthesis when set.
	DatasetPath string

	// IncludeSubmissions - prepend records derived from submissions.
	IncludeSubmissions bool
}

// PopulationObserver receives every built population.
type PopulationObserver interface {
	ObservePopulation(records []cohort.StudentRecord)
}

// BuildOptions tune a single Build call.
type BuildOptions struct {
	// WithSubmissions - include submitted students when the builder allows it.
	WithSubmissions bool
}

// PopulationBuilder builds classified populations.
type PopulationBuilder struct {
	cfg         PopulationConfig
	submissions submission.Repository
	observer    PopulationObserver
	logger      *logger.Logger
}

// NewPopulationBuilder creates a builder. submissions and observer may be nil.
func NewPopulationBuilder(
	cfg PopulationConfig,
	submissions submission.Repository,
	observer PopulationObserver,
	log *logger.Logger,
) *PopulationBuilder {
	if log == nil {
		log = logger.Nop()
	}
	return &PopulationBuilder{
		cfg:         cfg,
		submissions: submissions,
		observer:    observer,
		logger:      log.With(logger.Component("population")),
	}
}

// Config returns the builder configuration.
func (b *PopulationBuilder) Config() PopulationConfig {
	return b.cfg
}

// Reproducible reports whether two builds without submissions yield the same records.
func (b *PopulationBuilder) Reproducible() bool {
	return b.cfg.Seed != 0 && b.cfg.DatasetPath == ""
}

// Build returns a classified population.
func (b *PopulationBuilder) Build(ctx context.Context, opts BuildOptions) ([]cohort.StudentRecord, error) {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. Base records from dataset or synthesizer
	// ─────────────────────────────────────────────────────────────────────────
	base, err := b.baseRecords()
	if err != nil {
		return nil, err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. Submitted students go first
	// ─────────────────────────────────────────────────────────────────────────
	records := base
	if opts.WithSubmissions && b.cfg.IncludeSubmissions && b.submissions != nil {
		submitted, err := b.submittedRecords(ctx)
		if err != nil {
			return nil, err
		}
		if len(submitted) > 0 {
			records = append(submitted, base...)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. Classify
	// ─────────────────────────────────────────────────────────────────────────
	records = cohort.ClassifyAll(records)

	if b.observer != nil {
		b.observer.ObservePopulation(records)
	}

	b.logger.Debug("population built",
		logger.PopulationSize(len(records)),
		logger.Seed(b.cfg.Seed),
		logger.Bool("with_submissions", opts.WithSubmissions),
	)

	return records, nil
}

func (b *PopulationBuilder) baseRecords() ([]cohort.StudentRecord, error) {
	if b.cfg.DatasetPath != "" {
		f, err := os.Open(b.cfg.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()

		records, err := cohort.ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", b.cfg.DatasetPath, err)
		}
		return records, nil
	}

	return cohort.Synthesize(b.cfg.Size, b.source(0))
}

// submittedRecords converts stored submissions, oldest first, into records.
func (b *PopulationBuilder) submittedRecords(ctx context.Context) ([]cohort.StudentRecord, error) {
	subs, err := b.submissions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if len(subs) == 0 {
		return nil, nil
	}

	entries := make([]cohort.SubmittedStudent, 0, len(subs))
	for _, s := range subs {
		entries = append(entries, cohort.SubmittedStudent{ID: s.StudentID, Name: s.StudentName})
	}
	slices.Reverse(entries)

	return cohort.SynthesizeSubmitted(entries, b.source(1))
}

// source returns the random source for one stream of a build. Streams are
// seeded independently so that adding submissions never shifts the
// synthesized cohort.
func (b *PopulationBuilder) source(stream uint64) cohort.RandomSource {
	if b.cfg.Seed == 0 {
		return cohort.NewUnseededSource()
	}
	return cohort.NewRandomSource(b.cfg.Seed + stream)
}
