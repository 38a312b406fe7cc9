package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"thesis-management-api/models"
)

// SeedTheses returns the fixed collection the store is initialized with when
// no (or unreadable) data exists at the theses key.
func SeedTheses() []models.ThesisRecord {
	submitted := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	published := time.Date(2025, time.May, 2, 14, 30, 0, 0, time.UTC)
	return []models.ThesisRecord{
		{
			ID:             "seed-thesis-1",
			Title:          "Adaptive Load Shedding in Campus Microgrids",
			Abstract:       "Evaluates demand-side load shedding strategies for university microgrids under renewable supply variance.",
			AuthorID:       "seed-student-1",
			AuthorName:     "Nalin Srisuwan",
			Supervisor:     "Dr. Kanya Phromsuk",
			Department:     "Electrical Engineering",
			Year:           2025,
			FileURL:        "https://archive.example.edu/theses/seed-thesis-1.pdf",
			FileName:       "load-shedding-final.pdf",
			Status:         models.StatusPublished,
			SubmissionDate: submitted,
			PublishedDate:  &published,
			Reviews: []models.Review{
				{
					ID:             "seed-review-1",
					ReviewerID:     "seed-reviewer-1",
					ReviewerName:   "Dr. Wichai Boonmee",
					Comment:        "Methodology is sound and results reproduce.",
					Date:           "2025-04-12",
					Recommendation: models.RecommendApprove,
				},
				{
					ID:             "seed-review-2",
					ReviewerID:     "seed-admin-1",
					ReviewerName:   "Graduate Office",
					Comment:        "Approved for publication.",
					Date:           "2025-05-02",
					Recommendation: models.RecommendApprove,
				},
			},
			Versions: []models.Version{
				{
					ID:       "seed-version-1",
					Date:     submitted,
					Title:    "Adaptive Load Shedding in Campus Microgrids",
					Abstract: "Evaluates demand-side load shedding strategies for university microgrids under renewable supply variance.",
					FileName: "load-shedding-final.pdf",
					FileURL:  "https://archive.example.edu/theses/seed-thesis-1.pdf",
				},
			},
			Keywords: []string{"microgrid", "load shedding", "renewables"},
		},
		{
			ID:             "seed-thesis-2",
			Title:          "Sentiment Drift in Long-Running Online Communities",
			Abstract:       "Longitudinal study of sentiment drift across a decade of forum archives.",
			AuthorID:       "seed-student-2",
			AuthorName:     "Praew Chaiyasit",
			Supervisor:     "Dr. Anong Rattanakul",
			Department:     models.DefaultDepartment,
			Year:           2025,
			FileURL:        "https://archive.example.edu/theses/seed-thesis-2.pdf",
			FileName:       "sentiment-drift-draft.pdf",
			Status:         models.StatusPending,
			SubmissionDate: time.Date(2025, time.June, 18, 11, 15, 0, 0, time.UTC),
			Reviews:        []models.Review{},
			Versions: []models.Version{
				{
					ID:       "seed-version-2",
					Date:     time.Date(2025, time.June, 18, 11, 15, 0, 0, time.UTC),
					Title:    "Sentiment Drift in Long-Running Online Communities",
					Abstract: "Longitudinal study of sentiment drift across a decade of forum archives.",
					FileName: "sentiment-drift-draft.pdf",
					FileURL:  "https://archive.example.edu/theses/seed-thesis-2.pdf",
				},
			},
			Keywords: []string{"sentiment analysis", "longitudinal"},
		},
	}
}

// LoadSeedFile reads an alternative seed collection from a YAML file. Used by
// the thesisctl seed command so deployments can ship their own fixtures.
// Field names in the file match the persisted JSON layout, so the YAML is
// decoded generically and re-read through the JSON tags.
func LoadSeedFile(path string) ([]models.ThesisRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var generic []map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	buf, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("convert seed file %s: %w", path, err)
	}
	var records []models.ThesisRecord
	if err := json.Unmarshal(buf, &records); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return records, nil
}
