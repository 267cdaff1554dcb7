// Package subload reads substitution-record lists for batch runs. The
// records themselves are produced by external iterator workflows; this
// package only consumes their tabular interchange form: a CSV whose header
// row names the template fields.
package subload

import (
	"encoding/csv"
	"fmt"
	"os"

	"voxreport/domain/report"
	"voxreport/internal/pathtemplate"
)

// LoadCSV reads one substitution record per data row. Header cells become
// field names; empty cells leave the field out of the record entirely, so
// best-effort metadata lookup sees the key as absent.
func LoadCSV(path string) ([]report.SubstitutionRecord, error) {
	expanded, err := pathtemplate.Expand(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to open substitutions file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read substitutions file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("substitutions file %s needs a header row and at least one record", expanded)
	}

	header := rows[0]
	records := make([]report.SubstitutionRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(report.SubstitutionRecord, len(header))
		for i, field := range header {
			if i < len(row) && row[i] != "" {
				rec[field] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
