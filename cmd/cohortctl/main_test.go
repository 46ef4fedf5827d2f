package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
	"github.com/alem-hub/cognitive-insights/internal/infrastructure/export/parquet"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSynth_JSONIsReproducible(t *testing.T) {
	out1, _, err := execute(t, "synth", "--count", "12", "--seed", "7", "--format", "json")
	require.NoError(t, err)
	out2, _, err := execute(t, "synth", "--count", "12", "--seed", "7", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, out1, out2)

	var records []cohort.StudentRecord
	require.NoError(t, json.Unmarshal([]byte(out1), &records))
	require.Len(t, records, 12)
	for _, r := range records {
		assert.True(t, r.Persona.IsValid(), r.ID)
	}
}

func TestSynth_CSVFeedsStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.csv")

	_, stderr, err := execute(t, "synth", "--count", "30", "--seed", "3", "--format", "csv", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, path)

	out, _, err := execute(t, "stats", "--input", path, "--format", "json")
	require.NoError(t, err)

	var stats cohort.PopulationStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 30, stats.TotalStudents)

	total := 0
	for _, p := range stats.PersonaDistribution {
		total += p.Count
	}
	assert.Equal(t, 30, total)
}

func TestSynth_Table(t *testing.T) {
	out, _, err := execute(t, "synth", "--count", "3", "--seed", "1")
	require.NoError(t, err)

	assert.Contains(t, strings.ToUpper(out), "PERSONA")
	assert.Contains(t, out, "STU0001")
	assert.Contains(t, out, "STU0003")
}

func TestStats_Table(t *testing.T) {
	out, _, err := execute(t, "stats", "--count", "40", "--seed", "9")
	require.NoError(t, err)

	assert.Contains(t, out, "Students")
	assert.Contains(t, out, "40")
	assert.Contains(t, out, "30-60 min")
}

func TestStats_EmptyPopulation(t *testing.T) {
	_, _, err := execute(t, "stats", "--count", "0", "--seed", "1")
	require.Error(t, err)
}

func TestUnsupportedFormat(t *testing.T) {
	_, _, err := execute(t, "synth", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")

	_, _, err = execute(t, "stats", "--format", "csv")
	require.Error(t, err)
}

func TestCountOutOfRange(t *testing.T) {
	_, _, err := execute(t, "synth", "--count", "10001", "--format", "json")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, "export", "--count", "25", "--seed", "5", "--output", filepath.Join(dir, "cohort"))
	require.NoError(t, err)

	rows, err := parquet.ReadRecords(filepath.Join(dir, "cohort.parquet"))
	require.NoError(t, err)
	require.Len(t, rows, 25)
	assert.Equal(t, "STU0001", rows[0].StudentID)
	require.NotNil(t, rows[0].Persona)

	_, _, err = execute(t, "export", "--count", "5")
	require.Error(t, err)
}

func TestEnvironmentOverridesDefault(t *testing.T) {
	t.Setenv("COHORTCTL_COUNT", "4")

	out, _, err := execute(t, "synth", "--seed", "2", "--format", "json")
	require.NoError(t, err)

	var records []cohort.StudentRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 4)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohortctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: 6\nseed: 11\nformat: json\n"), 0o600))

	out, _, err := execute(t, "synth", "--config", path)
	require.NoError(t, err)

	var records []cohort.StudentRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 6)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cohortctl")
	assert.Contains(t, out, "Version: dev")
}
