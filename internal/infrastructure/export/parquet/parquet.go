// Package parquet exports classified cohorts to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
)

// StudentRow is the Parquet schema of one student record.
type StudentRow struct {
	StudentID       string  `parquet:"student_id,snappy"`
	Name            string  `parquet:"name,snappy"`
	Class           string  `parquet:"class,snappy,dict"`
	Comprehension   float64 `parquet:"comprehension,snappy"`
	Attention       float64 `parquet:"attention,snappy"`
	Focus           float64 `parquet:"focus,snappy"`
	Retention       float64 `parquet:"retention,snappy"`
	AssessmentScore float64 `parquet:"assessment_score,snappy"`
	EngagementTime  float64 `parquet:"engagement_time,snappy"`

	// Persona is empty for records that were never classified
	Persona *string `parquet:"persona,optional,snappy,dict"`
}

// FromRecord converts a domain record to a row.
func FromRecord(r cohort.StudentRecord) StudentRow {
	row := StudentRow{
		StudentID:       r.ID,
		Name:            r.Name,
		Class:           r.CohortClass,
		Comprehension:   r.Comprehension,
		Attention:       r.Attention,
		Focus:           r.Focus,
		Retention:       r.Retention,
		AssessmentScore: r.AssessmentScore,
		EngagementTime:  r.EngagementTime,
	}
	if r.IsClassified() {
		p := r.Persona.String()
		row.Persona = &p
	}
	return row
}

// Encode writes records to w as a single Parquet file.
func Encode(w io.Writer, records []cohort.StudentRecord) (err error) {
	rows := make([]StudentRow, len(records))
	for i, r := range records {
		rows[i] = FromRecord(r)
	}

	writer := parquet.NewGenericWriter[StudentRow](w)
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to finalize parquet file: %w", cerr))
		}
	}()

	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// WriteRecords writes records to a Parquet file at outputPath.
func WriteRecords(outputPath string, records []cohort.StudentRecord) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return Encode(file, records)
}

// ReadRecords reads rows previously written by WriteRecords.
func ReadRecords(path string) ([]StudentRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[StudentRow](file)
	defer func() { _ = reader.Close() }()

	rows := make([]StudentRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}
