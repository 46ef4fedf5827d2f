package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
)

// Linker flags set at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Output formats.
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

const defaultCount = 100

// newRootCmd builds the command tree around its own viper instance, so
// every invocation resolves flags, COHORTCTL_* variables and the optional
// .cohortctl.yaml independently.
func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "cohortctl",
		Short:         "Synthesize and summarize student cohorts.",
		Long:          `cohortctl generates synthetic learning records, classifies them into personas and reports cohort statistics.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, v)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .cohortctl.yaml in . or $HOME)")
	pf.Int("count", defaultCount, "number of records to synthesize")
	pf.Uint64("seed", 0, "random seed (0 draws fresh randomness)")

	root.AddCommand(
		newSynthCmd(v),
		newStatsCmd(v),
		newExportCmd(v),
		newVersionCmd(),
	)
	return root
}

// initConfig binds the flags of the executing command and reads the config
// file. Flags win over the environment, which wins over the file.
func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	v.SetEnvPrefix("COHORTCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".cohortctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// loadPopulation reads the CSV dataset at input when set and synthesizes
// count records otherwise. The result is classified.
func loadPopulation(v *viper.Viper, input string) ([]cohort.StudentRecord, error) {
	if input != "" {
		f, err := os.Open(input)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		records, err := cohort.ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", input, err)
		}
		return cohort.ClassifyAll(records), nil
	}

	src := cohort.NewUnseededSource()
	if seed := v.GetUint64("seed"); seed != 0 {
		src = cohort.NewRandomSource(seed)
	}

	records, err := cohort.Synthesize(v.GetInt("count"), src)
	if err != nil {
		return nil, err
	}
	return cohort.ClassifyAll(records), nil
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (want %s)", format, strings.Join(allowed, "|"))
}
