package subload

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "substitutions.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFixture(t, "subject,session,task\n5691,ofM,CogB\n5689,ofMaF,\n")

	records, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["subject"] != "5691" || records[0]["task"] != "CogB" {
		t.Errorf("record 0 = %v", records[0])
	}
	// Empty cells leave the key absent so metadata lookup sees a miss.
	if _, ok := records[1].Lookup("task"); ok {
		t.Errorf("empty cell should omit the field, got %v", records[1])
	}
}

func TestLoadCSV_HeaderOnly(t *testing.T) {
	path := writeFixture(t, "subject,session\n")
	if _, err := LoadCSV(path); err == nil {
		t.Error("expected error for header-only file")
	}
}

func TestLoadCSV_Missing(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
