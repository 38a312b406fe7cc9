package models

import "time"

// ThesisStatus is the lifecycle state of a thesis record.
type ThesisStatus string

const (
	StatusPending          ThesisStatus = "PENDING"
	StatusUnderReview      ThesisStatus = "UNDER_REVIEW"
	StatusReviewed         ThesisStatus = "REVIEWED"
	StatusPublished        ThesisStatus = "PUBLISHED"
	StatusRevisionRequired ThesisStatus = "REVISION_REQUIRED"
	StatusRejected         ThesisStatus = "REJECTED"
)

// Recommendation is the outcome a reviewer or admin attaches to a review.
type Recommendation string

const (
	RecommendApprove Recommendation = "APPROVE"
	RecommendRevise  Recommendation = "REVISE"
	RecommendReject  Recommendation = "REJECT"
)

// DefaultDepartment is used when a submission does not name a department.
const DefaultDepartment = "General Academic"

// ThesisRecord is the unit of work tracked by the lifecycle: one submitted
// manuscript together with its full review and version history. The whole
// collection is persisted as a single JSON value in the record store.
type ThesisRecord struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Abstract       string       `json:"abstract"`
	AuthorID       string       `json:"author_id"`
	AuthorName     string       `json:"author_name"`
	Supervisor     string       `json:"supervisor,omitempty"`
	CoResearchers  []string     `json:"co_researchers,omitempty"`
	Department     string       `json:"department"`
	Year           int          `json:"year"`
	FileURL        string       `json:"file_url,omitempty"`
	FileName       string       `json:"file_name,omitempty"`
	Status         ThesisStatus `json:"status"`
	SubmissionDate time.Time    `json:"submission_date"`
	PublishedDate  *time.Time   `json:"published_date,omitempty"`
	Reviews        []Review     `json:"reviews"`
	Versions       []Version    `json:"versions"`
	Keywords       []string     `json:"keywords,omitempty"`
	Milestones     []Milestone  `json:"milestones,omitempty"`
}

// CurrentVersion returns the most recently appended version, or nil when the
// record has never been submitted with one.
func (t *ThesisRecord) CurrentVersion() *Version {
	if len(t.Versions) == 0 {
		return nil
	}
	return &t.Versions[len(t.Versions)-1]
}

// HasPeerApproval reports whether at least one APPROVE review has been
// appended. The admin grant action is gated on this.
func (t *ThesisRecord) HasPeerApproval() bool {
	for _, r := range t.Reviews {
		if r.Recommendation == RecommendApprove {
			return true
		}
	}
	return false
}

// Review is an immutable recommendation-plus-comment fact appended by a peer
// reviewer or by the institutional office. Reviews are never reordered or
// removed; insertion order is chronological order.
type Review struct {
	ID             string         `json:"id"`
	ReviewerID     string         `json:"reviewer_id"`
	ReviewerName   string         `json:"reviewer_name"`
	Comment        string         `json:"comment"`
	Date           string         `json:"date"`
	Recommendation Recommendation `json:"recommendation"`
}

// Version is an immutable snapshot taken at initial submission and at each
// later revision. FileURL on superseded versions may be cleared by storage
// pruning; all other fields are retained.
type Version struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Title    string    `json:"title"`
	Abstract string    `json:"abstract"`
	FileName string    `json:"file_name,omitempty"`
	FileURL  string    `json:"file_url,omitempty"`
	Note     string    `json:"note,omitempty"`
}

// Milestone is auxiliary planning data attached to a record. The lifecycle
// engine does not read it.
type Milestone struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Due   *time.Time `json:"due,omitempty"`
	Done  bool       `json:"done"`
}
