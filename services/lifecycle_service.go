package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"thesis-management-api/models"
	"thesis-management-api/storage"
)

// ValidationError rejects a transition before any store write. The Reason is
// safe to show to the user.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErr(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Actor is the authenticated identity performing a transition. It comes from
// the auth middleware, never from the request body.
type Actor struct {
	ID     string
	Name   string
	RoleID int
}

// adminApproveRemark is recorded when the graduate office approves without
// writing its own remarks.
const adminApproveRemark = "Approved for publication by the graduate office."

// conflictRetries bounds re-application of a transition when a concurrent
// writer bumped the collection revision between load and save.
const conflictRetries = 3

// LifecycleService applies status transitions to thesis records. Every
// mutation is load-collection, apply-one-transition, save-collection; the
// store's revision check turns concurrent-writer races into retries here.
type LifecycleService struct {
	store *storage.Store
}

func NewLifecycleService(store *storage.Store) *LifecycleService {
	return &LifecycleService{store: store}
}

// SubmitThesisInput is the student-provided content of a new submission.
type SubmitThesisInput struct {
	Title         string
	Abstract      string
	Supervisor    string
	CoResearchers []string
	Department    string
	Year          int
	FileURL       string
	FileName      string
	Keywords      []string
}

// Submit creates a new record in PENDING with its initial version snapshot.
func (s *LifecycleService) Submit(actor Actor, in SubmitThesisInput) (*models.ThesisRecord, error) {
	if actor.RoleID != models.RoleStudent {
		return nil, validationErr("only students can submit a thesis")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, validationErr("title is required")
	}
	dept := strings.TrimSpace(in.Department)
	if dept == "" {
		dept = models.DefaultDepartment
	}

	now := time.Now().UTC()
	rec := models.ThesisRecord{
		ID:             uuid.NewString(),
		Title:          in.Title,
		Abstract:       in.Abstract,
		AuthorID:       actor.ID,
		AuthorName:     actor.Name,
		Supervisor:     in.Supervisor,
		CoResearchers:  in.CoResearchers,
		Department:     dept,
		Year:           in.Year,
		FileURL:        in.FileURL,
		FileName:       in.FileName,
		Status:         models.StatusPending,
		SubmissionDate: now,
		Reviews:        []models.Review{},
		Versions: []models.Version{
			{
				ID:       uuid.NewString(),
				Date:     now,
				Title:    in.Title,
				Abstract: in.Abstract,
				FileName: in.FileName,
				FileURL:  in.FileURL,
			},
		},
		Keywords: in.Keywords,
	}
	if err := s.store.SubmitNewThesis(rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateThesisInput carries the editable content fields. Nil means "leave
// unchanged".
type UpdateThesisInput struct {
	Title      *string
	Abstract   *string
	Department *string
	Year       *int
	Keywords   []string
}

// Update edits a record's content fields. Content is mutable up to the point
// of publication; authorship and submission date never change.
func (s *LifecycleService) Update(actor Actor, thesisID string, in UpdateThesisInput) (*models.ThesisRecord, error) {
	if actor.RoleID != models.RoleStudent {
		return nil, validationErr("only the author can edit a thesis")
	}
	return s.apply(thesisID, func(t *models.ThesisRecord) error {
		if t.AuthorID != actor.ID {
			return validationErr("only the author can edit this thesis")
		}
		if t.Status == models.StatusPublished {
			return validationErr("a published thesis can no longer be edited")
		}
		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return validationErr("title is required")
			}
			t.Title = *in.Title
		}
		if in.Abstract != nil {
			t.Abstract = *in.Abstract
		}
		if in.Department != nil {
			dept := strings.TrimSpace(*in.Department)
			if dept == "" {
				dept = models.DefaultDepartment
			}
			t.Department = dept
		}
		if in.Year != nil {
			t.Year = *in.Year
		}
		if in.Keywords != nil {
			t.Keywords = in.Keywords
		}
		return nil
	})
}

// PeerReview appends a peer review and moves the record out of the
// peer-review stage according to the recommendation.
func (s *LifecycleService) PeerReview(actor Actor, thesisID, comment string, rec models.Recommendation) (*models.ThesisRecord, error) {
	if actor.RoleID != models.RoleReviewer {
		return nil, validationErr("only reviewers can submit a peer review")
	}
	return s.apply(thesisID, func(t *models.ThesisRecord) error {
		return applyPeerReview(t, actor, comment, rec)
	})
}

// AdminDecision appends an institutional-office review to a record that has
// cleared peer review and either publishes it or sends it back.
func (s *LifecycleService) AdminDecision(actor Actor, thesisID, remarks string, rec models.Recommendation) (*models.ThesisRecord, error) {
	if actor.RoleID != models.RoleAdmin {
		return nil, validationErr("only administrators can grant publication sanction")
	}
	return s.apply(thesisID, func(t *models.ThesisRecord) error {
		return applyAdminDecision(t, actor, remarks, rec)
	})
}

// Resubmit records a revised manuscript on a record in REVISION_REQUIRED and
// returns it to the peer-review stage. Prior reviews are retained.
func (s *LifecycleService) Resubmit(actor Actor, thesisID, fileURL, fileName, note string) (*models.ThesisRecord, error) {
	if actor.RoleID != models.RoleStudent {
		return nil, validationErr("only the author can resubmit a thesis")
	}
	return s.apply(thesisID, func(t *models.ThesisRecord) error {
		if t.AuthorID != actor.ID {
			return validationErr("only the author can resubmit this thesis")
		}
		return applyResubmission(t, fileURL, fileName, note)
	})
}

// Get returns one record by ID.
func (s *LifecycleService) Get(thesisID string) (*models.ThesisRecord, error) {
	records, _ := s.store.LoadTheses()
	for i := range records {
		if records[i].ID == thesisID {
			return &records[i], nil
		}
	}
	return nil, validationErr("thesis %s not found", thesisID)
}

// List returns the full collection.
func (s *LifecycleService) List() []models.ThesisRecord {
	records, _ := s.store.LoadTheses()
	return records
}

// apply loads the collection, runs mutate against the record with the given
// ID, and saves. A revision conflict re-loads and re-applies; validation
// failures abort before any write.
func (s *LifecycleService) apply(thesisID string, mutate func(*models.ThesisRecord) error) (*models.ThesisRecord, error) {
	for attempt := 0; attempt < conflictRetries; attempt++ {
		records, rev := s.store.LoadTheses()
		idx := -1
		for i := range records {
			if records[i].ID == thesisID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, validationErr("thesis %s not found", thesisID)
		}
		if err := mutate(&records[idx]); err != nil {
			return nil, err
		}
		if _, err := s.store.SaveTheses(records, rev); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				continue
			}
			return nil, err
		}
		out := records[idx]
		return &out, nil
	}
	return nil, storage.ErrConflict
}

// applyPeerReview is the first-stage transition. Valid from PENDING and
// UNDER_REVIEW only; a non-empty comment and a current artifact are required
// for every recommendation.
func applyPeerReview(t *models.ThesisRecord, actor Actor, comment string, rec models.Recommendation) error {
	if t.Status != models.StatusPending && t.Status != models.StatusUnderReview {
		return validationErr("thesis in status %s is not awaiting peer review", t.Status)
	}
	if strings.TrimSpace(comment) == "" {
		return validationErr("review comments are required")
	}
	if t.FileURL == "" {
		return validationErr("thesis has no manuscript on file and cannot be reviewed")
	}
	next, err := outcomeStatus(rec)
	if err != nil {
		return err
	}
	t.Reviews = append(t.Reviews, models.Review{
		ID:             uuid.NewString(),
		ReviewerID:     actor.ID,
		ReviewerName:   actor.Name,
		Comment:        comment,
		Date:           time.Now().UTC().Format("2006-01-02"),
		Recommendation: rec,
	})
	t.Status = next
	return nil
}

// applyAdminDecision is the second-stage transition. Valid from REVIEWED
// only. APPROVE requires a prior peer APPROVE and publishes the record,
// stamping PublishedDate the first time only; REVISE and REJECT require
// remarks.
func applyAdminDecision(t *models.ThesisRecord, actor Actor, remarks string, rec models.Recommendation) error {
	if t.Status != models.StatusReviewed {
		return validationErr("thesis in status %s is not awaiting publication sanction", t.Status)
	}
	if t.FileURL == "" {
		return validationErr("thesis has no manuscript on file and cannot be sanctioned")
	}
	remarks = strings.TrimSpace(remarks)
	switch rec {
	case models.RecommendApprove:
		if !t.HasPeerApproval() {
			return validationErr("publication requires an approving peer review")
		}
		if remarks == "" {
			remarks = adminApproveRemark
		}
	case models.RecommendRevise, models.RecommendReject:
		if remarks == "" {
			return validationErr("remarks are required when requesting revision or rejecting")
		}
	default:
		return validationErr("unknown recommendation %q", rec)
	}

	t.Reviews = append(t.Reviews, models.Review{
		ID:             uuid.NewString(),
		ReviewerID:     actor.ID,
		ReviewerName:   actor.Name,
		Comment:        remarks,
		Date:           time.Now().UTC().Format("2006-01-02"),
		Recommendation: rec,
	})
	switch rec {
	case models.RecommendApprove:
		t.Status = models.StatusPublished
		if t.PublishedDate == nil {
			now := time.Now().UTC()
			t.PublishedDate = &now
		}
	case models.RecommendRevise:
		t.Status = models.StatusRevisionRequired
	case models.RecommendReject:
		t.Status = models.StatusRejected
	}
	return nil
}

// applyResubmission appends a new version snapshot, makes its artifact the
// record's current manuscript, and re-enters the peer-review stage.
// PublishedDate, if ever set, is kept as publication history.
func applyResubmission(t *models.ThesisRecord, fileURL, fileName, note string) error {
	if t.Status != models.StatusRevisionRequired {
		return validationErr("thesis in status %s does not accept a resubmission", t.Status)
	}
	if strings.TrimSpace(fileURL) == "" {
		return validationErr("a revised manuscript file is required")
	}
	if strings.TrimSpace(note) == "" {
		return validationErr("a change note describing the revision is required")
	}
	t.Versions = append(t.Versions, models.Version{
		ID:       uuid.NewString(),
		Date:     time.Now().UTC(),
		Title:    t.Title,
		Abstract: t.Abstract,
		FileName: fileName,
		FileURL:  fileURL,
		Note:     note,
	})
	t.FileURL = fileURL
	t.FileName = fileName
	t.Status = models.StatusUnderReview
	return nil
}

func outcomeStatus(rec models.Recommendation) (models.ThesisStatus, error) {
	switch rec {
	case models.RecommendApprove:
		return models.StatusReviewed, nil
	case models.RecommendRevise:
		return models.StatusRevisionRequired, nil
	case models.RecommendReject:
		return models.StatusRejected, nil
	default:
		return "", validationErr("unknown recommendation %q", rec)
	}
}
