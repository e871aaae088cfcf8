// Package loader parses employee rows: name, department, role, email[, currency].
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"dundie-rewards/internal/store"
)

// RowError reports a malformed row. Line is 1-based.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Record is one parsed row.
type Record struct {
	Line   int
	Fields store.Fields
}

// Parse reads every row of r. Malformed rows are reported as *RowError and
// skipped; parsing continues with the next row. Values are trimmed.
func Parse(r io.Reader) ([]Record, []error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var (
		records []Record
		errs    []error
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				errs = append(errs, &RowError{Line: perr.Line, Reason: perr.Err.Error()})
				continue
			}
			errs = append(errs, fmt.Errorf("read rows: %w", err))
			break
		}

		line, _ := reader.FieldPos(0)
		rec, rowErr := toRecord(line, row)
		if rowErr != nil {
			errs = append(errs, rowErr)
			continue
		}
		records = append(records, rec)
	}
	return records, errs
}

func toRecord(line int, row []string) (Record, error) {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
	if len(row) != 4 && len(row) != 5 {
		return Record{}, &RowError{Line: line, Reason: fmt.Sprintf("expected 4 or 5 columns, got %d", len(row))}
	}

	fields := store.Fields{
		Name:       row[0],
		Department: row[1],
		Role:       row[2],
		Email:      row[3],
	}
	if len(row) == 5 {
		fields.Currency = row[4]
	}
	return Record{Line: line, Fields: fields}, nil
}

// ReadFile parses the file at path. A missing file is returned as an error.
func ReadFile(path string) ([]Record, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, errs := Parse(f)
	return records, errs, nil
}
