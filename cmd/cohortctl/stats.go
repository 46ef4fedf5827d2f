package main

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
)

func newStatsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a cohort.",
		Long: `Compute averages, persona distribution, engagement bands and skill
comparison for a synthesized cohort or a CSV dataset given with --input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := v.GetString("format")
			if err := checkFormat(format, formatTable, formatJSON); err != nil {
				return err
			}

			records, err := loadPopulation(v, v.GetString("input"))
			if err != nil {
				return err
			}

			stats, err := cohort.Aggregate(records)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format == formatJSON {
				return writeJSON(w, stats)
			}
			return writeStatsTables(w, stats)
		},
	}

	cmd.Flags().StringP("input", "i", "", "CSV dataset to summarize instead of synthesizing")
	cmd.Flags().String("format", formatTable, "output format: table|json")
	return cmd
}

func writeStatsTables(w io.Writer, s *cohort.PopulationStats) error {
	// 1. Summary
	summary := tablewriter.NewWriter(w)
	summary.Header([]string{"Metric", "Value"})
	if err := summary.Bulk([][]string{
		{"Students", strconv.Itoa(s.TotalStudents)},
		{"High performers", strconv.Itoa(s.HighPerformerCount)},
		{"Avg comprehension", fmtScore(s.AvgComprehension)},
		{"Avg attention", fmtScore(s.AvgAttention)},
		{"Avg focus", fmtScore(s.AvgFocus)},
		{"Avg retention", fmtScore(s.AvgRetention)},
		{"Avg assessment", fmtScore(s.AvgAssessmentScore)},
		{"Avg engagement (min)", fmtScore(s.AvgEngagementTime)},
	}); err != nil {
		return err
	}
	if err := summary.Render(); err != nil {
		return err
	}

	// 2. Personas
	personas := tablewriter.NewWriter(w)
	personas.Header([]string{"Persona", "Count", "Share"})
	personas.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	rows := make([][]string, 0, len(s.PersonaDistribution))
	for _, p := range s.PersonaDistribution {
		rows = append(rows, []string{p.Persona.String(), strconv.Itoa(p.Count), fmtPercent(p.Percentage)})
	}
	if err := personas.Bulk(rows); err != nil {
		return err
	}
	if err := personas.Render(); err != nil {
		return err
	}

	// 3. Engagement bands
	bands := tablewriter.NewWriter(w)
	bands.Header([]string{"Engagement", "Students", "Avg score"})
	rows = make([][]string, 0, len(s.EngagementTrends))
	for _, b := range s.EngagementTrends {
		rows = append(rows, []string{b.Range, strconv.Itoa(b.Count), fmtScore(b.AvgScore)})
	}
	if err := bands.Bulk(rows); err != nil {
		return err
	}
	return bands.Render()
}
