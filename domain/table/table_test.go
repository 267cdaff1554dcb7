package table

import (
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"voxreport/domain/core"
)

func buildTable(t *testing.T) *Table {
	t.Helper()
	tbl := New("Mean", "Median")
	rows := [][]string{
		{FormatFloat(2.5), FormatFloat(2)},
		{FormatFloat(math.NaN()), FormatFloat(math.NaN())},
		{FormatFloat(0.25), FormatFloat(0.5)},
	}
	for _, r := range rows {
		if err := tbl.AppendRow(r...); err != nil {
			t.Fatalf("AppendRow failed: %v", err)
		}
	}
	if err := tbl.AddColumn("subject", []string{"5691", "5689", ""}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	return tbl
}

func TestSave_CSVRowCount(t *testing.T) {
	tbl := buildTable(t)
	path := filepath.Join(t.TempDir(), "summary.csv")

	if err := tbl.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open saved file: %v", err)
	}
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if len(lines) != tbl.NumRows()+1 {
		t.Errorf("saved file has %d lines, want %d rows + header", len(lines), tbl.NumRows())
	}
	if lines[0][0] != "Mean" || lines[0][2] != "subject" {
		t.Errorf("unexpected header: %v", lines[0])
	}
	if lines[2][0] != "NaN" {
		t.Errorf("NaN sentinel cell = %q, want \"NaN\"", lines[2][0])
	}
}

func TestSave_UnsupportedExtensionWritesNothing(t *testing.T) {
	tbl := buildTable(t)
	path := filepath.Join(t.TempDir(), "summary.txt")

	err := tbl.Save(path)
	if !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("file was written despite unsupported format")
	}
}

func TestSave_XLSXRoundTrip(t *testing.T) {
	tbl := buildTable(t)
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	if err := tbl.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("workbook missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("workbook is empty")
	}
}

func TestAddColumn_LengthMismatch(t *testing.T) {
	tbl := New("Mean")
	if err := tbl.AppendRow("1"); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}
	if err := tbl.AddColumn("subject", []string{"a", "b"}); err == nil {
		t.Error("expected length-mismatch error")
	}
}

func TestCellLookup(t *testing.T) {
	tbl := buildTable(t)
	if v, ok := tbl.Cell(0, "subject"); !ok || v != "5691" {
		t.Errorf("Cell(0, subject) = %q, %v", v, ok)
	}
	if _, ok := tbl.Cell(0, "session"); ok {
		t.Error("Cell should miss for absent column")
	}
	if !tbl.HasColumn("Median") || tbl.HasColumn("Mode") {
		t.Error("HasColumn misreported columns")
	}
}
