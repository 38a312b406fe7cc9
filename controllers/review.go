package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thesis-management-api/models"
)

// GetReviewQueue lists records awaiting peer review.
func (a *API) GetReviewQueue(c *gin.Context) {
	var out []models.ThesisRecord
	for _, rec := range a.Lifecycle.List() {
		if rec.Status == models.StatusPending || rec.Status == models.StatusUnderReview {
			out = append(out, rec)
		}
	}
	c.JSON(http.StatusOK, gin.H{"theses": out, "total": len(out)})
}

type ReviewRequest struct {
	Comment        string                `json:"comment"`
	Recommendation models.Recommendation `json:"recommendation" binding:"required"`
}

// SubmitPeerReview appends a peer review and advances the record according
// to the recommendation.
func (a *API) SubmitPeerReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.Lifecycle.PeerReview(currentActor(c), c.Param("id"), req.Comment, req.Recommendation)
	if err != nil {
		respondError(c, err)
		return
	}

	a.Notifier.NotifyStatusChange(*rec)
	c.JSON(http.StatusOK, gin.H{"thesis": rec, "message": "Review recorded"})
}
