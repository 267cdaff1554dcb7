package table

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"voxreport/domain/core"
)

// acceptedExtensions lists the output formats Save understands.
var acceptedExtensions = []string{".csv", ".xlsx"}

// Table is a row-ordered result table: one row per processed unit (or per
// unit timepoint), columns in insertion order. Cells are stored rendered so
// a table can be persisted or diffed without reformatting.
type Table struct {
	columns []string
	rows    [][]string
}

// New creates an empty table with the given column set.
func New(columns ...string) *Table {
	return &Table{columns: append([]string(nil), columns...)}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// AppendRow adds one row; the cell count must match the column count.
func (t *Table) AppendRow(cells ...string) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	t.rows = append(t.rows, append([]string(nil), cells...))
	return nil
}

// AddColumn appends a column populated with one value per existing row.
func (t *Table) AddColumn(name string, values []string) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], values[i])
	}
	return nil
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []string {
	return append([]string(nil), t.rows[i]...)
}

// Cell returns the value at (row, column) and whether the column exists.
func (t *Table) Cell(row int, column string) (string, bool) {
	for i, c := range t.columns {
		if c == column {
			return t.rows[row][i], true
		}
	}
	return "", false
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.columns {
		if c == column {
			return true
		}
	}
	return false
}

// FormatFloat renders a statistic cell. NaN renders as "NaN", the
// unavailable-unit sentinel.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseFloat parses a statistic cell written by FormatFloat.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// Save persists the table to a delimited or spreadsheet file. The path is
// home-expanded and made absolute first; an unrecognized extension fails
// with core.ErrUnsupportedFormat before anything is written.
func (t *Table) Save(path string) error {
	path, err := expandPath(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return t.saveCSV(path)
	case ".xlsx":
		return t.saveXLSX(path)
	default:
		return core.NewUnsupportedFormatError(path, acceptedExtensions)
	}
}

func (t *Table) saveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range t.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (t *Table) saveXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(t.columns))
	for i, c := range t.columns {
		header[i] = c
	}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return fmt.Errorf("failed to write sheet header: %w", err)
	}
	for i, row := range t.rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			// Preserve numeric typing in the workbook where possible.
			// NaN sentinels stay textual; xlsx has no NaN cell value.
			if x, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(x) {
				cells[j] = x
			} else {
				cells[j] = v
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute sheet coordinates: %w", err)
		}
		if err := f.SetSheetRow("Sheet1", axis, &cells); err != nil {
			return fmt.Errorf("failed to write sheet row: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// expandPath performs user-home expansion and absolutization.
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to absolutize path: %w", err)
	}
	return abs, nil
}
