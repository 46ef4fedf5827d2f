package cohort

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DatasetHeader is the column layout of cohort CSV files.
var DatasetHeader = []string{
	"student_id", "name", "class",
	"comprehension", "attention", "focus", "retention",
	"assessment_score", "engagement_time",
}

// ReadCSV parses a cohort dataset. The first row must be DatasetHeader;
// an extra trailing persona column is accepted and ignored so that files
// produced by WriteCSV can be read back. Every value goes through NewRecord.
func ReadCSV(r io.Reader) ([]StudentRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, invalidArgf("dataset is empty")
	}
	if err != nil {
		return nil, invalidArgf("read header: %v", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var records []StudentRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalidArgf("%v", err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row)
		if err != nil {
			return nil, invalidArgf("line %d: %v", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func checkHeader(header []string) error {
	if len(header) < len(DatasetHeader) {
		return invalidArgf("header has %d columns, want %d", len(header), len(DatasetHeader))
	}
	for i, want := range DatasetHeader {
		got := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
		if got != want {
			return invalidArgf("header column %d is %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

func parseRow(row []string) (StudentRecord, error) {
	if len(row) < len(DatasetHeader) {
		return StudentRecord{}, fmt.Errorf("expected %d fields, got %d", len(DatasetHeader), len(row))
	}

	id := strings.TrimSpace(row[0])
	if id == "" {
		return StudentRecord{}, errors.New("student_id is empty")
	}

	var vals [6]float64
	for i := range vals {
		col := 3 + i
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return StudentRecord{}, fmt.Errorf("%s: %w", DatasetHeader[col], err)
		}
		vals[i] = v
	}

	return NewRecord(id, strings.TrimSpace(row[1]), strings.TrimSpace(row[2]), Metrics{
		Comprehension:   vals[0],
		Attention:       vals[1],
		Focus:           vals[2],
		Retention:       vals[3],
		AssessmentScore: vals[4],
		EngagementTime:  vals[5],
	}), nil
}

// WriteCSV writes records with DatasetHeader plus a persona column.
func WriteCSV(w io.Writer, records []StudentRecord) error {
	cw := csv.NewWriter(w)

	header := append(append([]string{}, DatasetHeader...), "persona")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.ID, r.Name, r.CohortClass,
			formatFloat(r.Comprehension),
			formatFloat(r.Attention),
			formatFloat(r.Focus),
			formatFloat(r.Retention),
			formatFloat(r.AssessmentScore),
			formatFloat(r.EngagementTime),
			string(r.Persona),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
