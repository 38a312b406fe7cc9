package services

import (
	"errors"
	"testing"
	"time"

	"thesis-management-api/models"
	"thesis-management-api/storage"
)

var (
	student  = Actor{ID: "10", Name: "Somsak Student", RoleID: models.RoleStudent}
	reviewer = Actor{ID: "20", Name: "Dr. Reviewer", RoleID: models.RoleReviewer}
	admin    = Actor{ID: "30", Name: "Graduate Office", RoleID: models.RoleAdmin}
)

func newFixture(t *testing.T) (*LifecycleService, *storage.Store) {
	t.Helper()
	store, err := storage.Open(storage.Config{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewLifecycleService(store), store
}

// putRecord force-saves a record so tests can start from any status.
func putRecord(t *testing.T, store *storage.Store, rec models.ThesisRecord) {
	t.Helper()
	records, rev := store.LoadTheses()
	replaced := false
	for i := range records {
		if records[i].ID == rec.ID {
			records[i] = rec
			replaced = true
		}
	}
	if !replaced {
		records = append(records, rec)
	}
	if _, err := store.SaveTheses(records, rev); err != nil {
		t.Fatalf("put record: %v", err)
	}
}

func baseRecord(status models.ThesisStatus) models.ThesisRecord {
	sub := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	return models.ThesisRecord{
		ID:             "rec-1",
		Title:          "Graph Sparsification at Scale",
		Abstract:       "We study sparsifiers.",
		AuthorID:       student.ID,
		AuthorName:     student.Name,
		Department:     models.DefaultDepartment,
		Year:           2025,
		FileURL:        "https://files.example.edu/rec-1.pdf",
		FileName:       "rec-1.pdf",
		Status:         status,
		SubmissionDate: sub,
		Reviews:        []models.Review{},
		Versions: []models.Version{{
			ID:      "rec-1-v1",
			Date:    sub,
			Title:   "Graph Sparsification at Scale",
			FileURL: "https://files.example.edu/rec-1.pdf",
		}},
	}
}

func mustGet(t *testing.T, svc *LifecycleService, id string) models.ThesisRecord {
	t.Helper()
	rec, err := svc.Get(id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return *rec
}

func TestSubmitCreatesPendingRecord(t *testing.T) {
	svc, _ := newFixture(t)

	rec, err := svc.Submit(student, SubmitThesisInput{
		Title:    "A New Thesis",
		Abstract: "Abstract text.",
		FileURL:  "data:application/pdf;base64,AAAA",
		FileName: "draft.pdf",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if rec.Status != models.StatusPending {
		t.Errorf("status = %s, want PENDING", rec.Status)
	}
	if rec.Department != models.DefaultDepartment {
		t.Errorf("department = %q, want fallback %q", rec.Department, models.DefaultDepartment)
	}
	if len(rec.Versions) != 1 {
		t.Fatalf("versions = %d, want initial snapshot", len(rec.Versions))
	}
	if rec.Versions[0].FileURL != rec.FileURL {
		t.Error("initial version artifact must match the record's current artifact")
	}
	if rec.SubmissionDate.IsZero() {
		t.Error("submissionDate must be set at creation")
	}
	if rec.PublishedDate != nil {
		t.Error("publishedDate must not be set at creation")
	}

	// Persisted, not just returned.
	saved := mustGet(t, svc, rec.ID)
	if saved.Title != "A New Thesis" {
		t.Error("submitted record was not persisted")
	}
}

func TestSubmitRejectsNonStudents(t *testing.T) {
	svc, _ := newFixture(t)
	for _, actor := range []Actor{reviewer, admin} {
		if _, err := svc.Submit(actor, SubmitThesisInput{Title: "X"}); !isValidation(err) {
			t.Errorf("role %d: expected ValidationError, got %v", actor.RoleID, err)
		}
	}
}

func TestUpdateEditsContentUntilPublished(t *testing.T) {
	svc, store := newFixture(t)
	putRecord(t, store, baseRecord(models.StatusPending))

	title := "Graph Sparsification, Revisited"
	year := 2026
	rec, err := svc.Update(student, "rec-1", UpdateThesisInput{
		Title:    &title,
		Year:     &year,
		Keywords: []string{"graphs", "sparsification"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec.Title != title || rec.Year != year {
		t.Errorf("update not applied: title=%q year=%d", rec.Title, rec.Year)
	}
	if saved := mustGet(t, svc, "rec-1"); saved.Title != title {
		t.Error("updated record was not persisted")
	}
}

func TestUpdateRejected(t *testing.T) {
	title := "New Title"
	cases := []struct {
		name   string
		status models.ThesisStatus
		actor  Actor
		in     UpdateThesisInput
	}{
		{"published record", models.StatusPublished, student, UpdateThesisInput{Title: &title}},
		{"non-author student", models.StatusPending, Actor{ID: "99", Name: "Other", RoleID: models.RoleStudent}, UpdateThesisInput{Title: &title}},
		{"reviewer", models.StatusPending, reviewer, UpdateThesisInput{Title: &title}},
		{"blank title", models.StatusPending, student, UpdateThesisInput{Title: new(string)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newFixture(t)
			putRecord(t, store, baseRecord(tc.status))

			if _, err := svc.Update(tc.actor, "rec-1", tc.in); !isValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if saved := mustGet(t, svc, "rec-1"); saved.Title != baseRecord(tc.status).Title {
				t.Error("rejected update must not mutate the record")
			}
		})
	}
}

func TestPeerReviewTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    models.ThesisStatus
		rec     models.Recommendation
		comment string
		want    models.ThesisStatus
	}{
		{"approve from pending", models.StatusPending, models.RecommendApprove, "Solid methodology", models.StatusReviewed},
		{"approve from under review", models.StatusUnderReview, models.RecommendApprove, "Solid methodology", models.StatusReviewed},
		{"revise from under review", models.StatusUnderReview, models.RecommendRevise, "Expand literature review", models.StatusRevisionRequired},
		{"reject from pending", models.StatusPending, models.RecommendReject, "Out of scope", models.StatusRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newFixture(t)
			putRecord(t, store, baseRecord(tc.from))

			got, err := svc.PeerReview(reviewer, "rec-1", tc.comment, tc.rec)
			if err != nil {
				t.Fatalf("peer review: %v", err)
			}
			if got.Status != tc.want {
				t.Errorf("status = %s, want %s", got.Status, tc.want)
			}
			if len(got.Reviews) != 1 {
				t.Fatalf("reviews = %d, want exactly one appended", len(got.Reviews))
			}
			r := got.Reviews[0]
			if r.Recommendation != tc.rec || r.Comment != tc.comment || r.ReviewerID != reviewer.ID {
				t.Errorf("appended review = %+v", r)
			}
		})
	}
}

func TestPeerReviewValidation(t *testing.T) {
	cases := []struct {
		name    string
		rec     models.ThesisRecord
		actor   Actor
		comment string
	}{
		{"blank comment", baseRecord(models.StatusPending), reviewer, "   "},
		{"wrong status", baseRecord(models.StatusReviewed), reviewer, "fine work"},
		{"terminal status", baseRecord(models.StatusPublished), reviewer, "fine work"},
		{"wrong role", baseRecord(models.StatusPending), student, "fine work"},
		{"no artifact", func() models.ThesisRecord {
			r := baseRecord(models.StatusPending)
			r.FileURL = ""
			return r
		}(), reviewer, "fine work"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newFixture(t)
			putRecord(t, store, tc.rec)

			_, err := svc.PeerReview(tc.actor, "rec-1", tc.comment, models.RecommendApprove)
			if !isValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			// Nothing may be written: status and reviews unchanged in the store.
			after := mustGet(t, svc, "rec-1")
			if after.Status != tc.rec.Status || len(after.Reviews) != len(tc.rec.Reviews) {
				t.Error("failed validation must not mutate the persisted record")
			}
		})
	}
}

func reviewedWithPeerApproval() models.ThesisRecord {
	rec := baseRecord(models.StatusReviewed)
	rec.Reviews = []models.Review{{
		ID:             "r1",
		ReviewerID:     reviewer.ID,
		ReviewerName:   reviewer.Name,
		Comment:        "Solid methodology",
		Date:           "2025-06-10",
		Recommendation: models.RecommendApprove,
	}}
	return rec
}

func TestAdminApprovePublishes(t *testing.T) {
	svc, store := newFixture(t)
	putRecord(t, store, reviewedWithPeerApproval())

	got, err := svc.AdminDecision(admin, "rec-1", "", models.RecommendApprove)
	if err != nil {
		t.Fatalf("admin approve: %v", err)
	}
	if got.Status != models.StatusPublished {
		t.Errorf("status = %s, want PUBLISHED", got.Status)
	}
	if got.PublishedDate == nil {
		t.Error("publishedDate must be set on first publication")
	}
	if len(got.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(got.Reviews))
	}
	if got.Reviews[1].Comment != adminApproveRemark {
		t.Errorf("blank admin remarks should fall back to the canned remark, got %q", got.Reviews[1].Comment)
	}
}

func TestAdminApproveKeepsExistingPublishedDate(t *testing.T) {
	svc, store := newFixture(t)
	rec := reviewedWithPeerApproval()
	already := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	rec.PublishedDate = &already
	putRecord(t, store, rec)

	got, err := svc.AdminDecision(admin, "rec-1", "republish", models.RecommendApprove)
	if err != nil {
		t.Fatalf("admin approve: %v", err)
	}
	if got.PublishedDate == nil || !got.PublishedDate.Equal(already) {
		t.Error("publishedDate must be set exactly once and kept thereafter")
	}
}

func TestAdminApproveRequiresPeerApproval(t *testing.T) {
	svc, store := newFixture(t)
	rec := baseRecord(models.StatusReviewed) // no peer APPROVE on file
	putRecord(t, store, rec)

	if _, err := svc.AdminDecision(admin, "rec-1", "", models.RecommendApprove); !isValidation(err) {
		t.Fatalf("expected ValidationError without a peer approval, got %v", err)
	}
}

func TestAdminReviseAndRejectRequireRemarks(t *testing.T) {
	for _, rec := range []models.Recommendation{models.RecommendRevise, models.RecommendReject} {
		t.Run(string(rec), func(t *testing.T) {
			svc, store := newFixture(t)
			putRecord(t, store, reviewedWithPeerApproval())

			if _, err := svc.AdminDecision(admin, "rec-1", "  ", rec); !isValidation(err) {
				t.Fatalf("expected ValidationError for blank remarks, got %v", err)
			}
			after := mustGet(t, svc, "rec-1")
			if after.Status != models.StatusReviewed || len(after.Reviews) != 1 {
				t.Error("failed validation must not mutate the persisted record")
			}

			got, err := svc.AdminDecision(admin, "rec-1", "Needs work on chapter 3", rec)
			if err != nil {
				t.Fatalf("admin decision: %v", err)
			}
			want := models.StatusRevisionRequired
			if rec == models.RecommendReject {
				want = models.StatusRejected
			}
			if got.Status != want {
				t.Errorf("status = %s, want %s", got.Status, want)
			}
		})
	}
}

func TestAdminDecisionRequiresReviewedStatus(t *testing.T) {
	svc, store := newFixture(t)
	putRecord(t, store, baseRecord(models.StatusPending))

	if _, err := svc.AdminDecision(admin, "rec-1", "remarks", models.RecommendReject); !isValidation(err) {
		t.Fatalf("expected ValidationError outside REVIEWED, got %v", err)
	}
}

func TestResubmitReentersPeerReview(t *testing.T) {
	svc, store := newFixture(t)
	rec := baseRecord(models.StatusRevisionRequired)
	rec.Reviews = []models.Review{{ID: "r1", Recommendation: models.RecommendRevise, Comment: "Expand literature review"}}
	putRecord(t, store, rec)

	newFile := "https://files.example.edu/rec-1-v2.pdf"
	got, err := svc.Resubmit(student, "rec-1", newFile, "rec-1-v2.pdf", "Added missing citations")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	if got.Status != models.StatusUnderReview {
		t.Errorf("status = %s, want UNDER_REVIEW", got.Status)
	}
	if len(got.Versions) != 2 {
		t.Fatalf("versions = %d, want 2", len(got.Versions))
	}
	latest := got.Versions[len(got.Versions)-1]
	if latest.FileURL != newFile || got.FileURL != newFile {
		t.Error("current artifact must equal the newest version's artifact")
	}
	if latest.Note != "Added missing citations" {
		t.Errorf("change note = %q", latest.Note)
	}
	if got.Versions[0].ID != "rec-1-v1" || got.Versions[0].Title != rec.Versions[0].Title {
		t.Error("earlier version metadata must be unchanged")
	}
	if len(got.Reviews) != 1 {
		t.Error("prior reviews must be retained across resubmission")
	}
}

func TestResubmitValidation(t *testing.T) {
	cases := []struct {
		name  string
		from  models.ThesisStatus
		actor Actor
		file  string
		note  string
	}{
		{"missing file", models.StatusRevisionRequired, student, "", "fixed"},
		{"missing note", models.StatusRevisionRequired, student, "data:x", "  "},
		{"wrong status", models.StatusPending, student, "data:x", "fixed"},
		{"not the author", models.StatusRevisionRequired, Actor{ID: "99", RoleID: models.RoleStudent}, "data:x", "fixed"},
		{"wrong role", models.StatusRevisionRequired, reviewer, "data:x", "fixed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newFixture(t)
			putRecord(t, store, baseRecord(tc.from))

			if _, err := svc.Resubmit(tc.actor, "rec-1", tc.file, "f.pdf", tc.note); !isValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			after := mustGet(t, svc, "rec-1")
			if len(after.Versions) != 1 || after.Status != tc.from {
				t.Error("failed validation must not mutate the persisted record")
			}
		})
	}
}

func TestDoubleApprovalAppendsTwoReviews(t *testing.T) {
	// The engine provides no deduplication; a double-submit appends twice.
	svc, store := newFixture(t)
	putRecord(t, store, baseRecord(models.StatusUnderReview))

	if _, err := svc.PeerReview(reviewer, "rec-1", "ok", models.RecommendApprove); err != nil {
		t.Fatalf("first review: %v", err)
	}
	// REVIEWED no longer accepts peer review, so replay from UNDER_REVIEW.
	rec := mustGet(t, svc, "rec-1")
	rec.Status = models.StatusUnderReview
	putRecord(t, store, rec)

	if _, err := svc.PeerReview(reviewer, "rec-1", "ok", models.RecommendApprove); err != nil {
		t.Fatalf("second review: %v", err)
	}
	if got := mustGet(t, svc, "rec-1"); len(got.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2 appended entries", len(got.Reviews))
	}
}

func isValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
