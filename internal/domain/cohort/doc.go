// Package cohort contains the student cohort model of Cognitive Insights.
//
// This is the analytical core of the system. The package defines:
//
//   - Entities: StudentRecord
//   - Value Objects: Persona, Metrics, PopulationStats, ChartData
//   - Pure operations: Synthesize, Classify, ClassifyAll, Aggregate, Predict
//   - Cache interface: ChartCache (implemented in infrastructure)
//
// # Architectural principles
//
//  1. No external dependencies - standard library only
//  2. Every operation is a pure function over its input population
//  3. Statistics are recomputed per call and never cached in place
//
// # Data flow
//
// A population flows one way: Synthesizer -> Classifier -> Aggregator.
//
//	src := cohort.NewRandomSource(42)
//	records, err := cohort.Synthesize(100, src)
//	if err != nil {
//	    return err
//	}
//
//	records = cohort.ClassifyAll(records)
//
//	stats, err := cohort.Aggregate(records)
//	if err != nil {
//	    return err
//	}
//	charts := stats.Charts()
//
// # Personas
//
// Classification walks an ordered rule list and the first matching rule
// wins. New personas are added by inserting a rule at the right
// precedence, never by adding independent branches.
//
// # Rounding
//
// Every reported statistic is rounded to one decimal place with
// round-half-away-from-zero (Round1). Banker's rounding must not be used
// because exact decimal output is part of the API contract.
package cohort
