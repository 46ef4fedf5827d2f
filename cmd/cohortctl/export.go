package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alem-hub/cognitive-insights/internal/infrastructure/export/parquet"
)

func newExportCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a classified cohort to Parquet.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := v.GetString("output")
			if out == "" {
				return errors.New("--output is required")
			}
			if !strings.EqualFold(filepath.Ext(out), ".parquet") {
				out += ".parquet"
			}

			records, err := loadPopulation(v, v.GetString("input"))
			if err != nil {
				return err
			}

			if err := parquet.WriteRecords(out, records); err != nil {
				return err
			}
			cmd.PrintErrf("Wrote %d records to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "CSV dataset to export instead of synthesizing")
	cmd.Flags().StringP("output", "o", "", "Parquet file to write")
	return cmd
}
