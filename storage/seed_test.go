package storage

import (
	"os"
	"path/filepath"
	"testing"

	"thesis-management-api/models"
)

func TestLoadSeedFile(t *testing.T) {
	yamlSeed := `
- id: fx-1
  title: Fixture Thesis
  abstract: From a YAML fixture.
  author_id: "77"
  author_name: Fixture Author
  department: Chemistry
  year: 2026
  file_url: https://files.example.edu/fx-1.pdf
  status: PENDING
  submission_date: 2026-01-15T09:00:00Z
  reviews: []
  versions:
    - id: fx-1-v1
      date: 2026-01-15T09:00:00Z
      title: Fixture Thesis
      file_url: https://files.example.edu/fx-1.pdf
`
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(yamlSeed), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load seed file: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.ID != "fx-1" || rec.Status != models.StatusPending || rec.Year != 2026 {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Versions) != 1 || rec.Versions[0].FileURL != rec.FileURL {
		t.Errorf("versions = %+v", rec.Versions)
	}
	if rec.SubmissionDate.IsZero() {
		t.Error("submission_date should parse from the fixture")
	}
}

func TestLoadSeedFileErrors(t *testing.T) {
	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte(":\t- not yaml"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadSeedFile(bad); err == nil {
		t.Error("malformed file should error")
	}
}
