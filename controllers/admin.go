package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thesis-management-api/models"
	"thesis-management-api/storage"
)

// ===================== INSTITUTIONAL SANCTION =====================

// GetSanctionQueue lists records that cleared peer review and await the
// graduate office's decision.
func (a *API) GetSanctionQueue(c *gin.Context) {
	var out []models.ThesisRecord
	for _, rec := range a.Lifecycle.List() {
		if rec.Status == models.StatusReviewed {
			out = append(out, rec)
		}
	}
	c.JSON(http.StatusOK, gin.H{"theses": out, "total": len(out)})
}

type SanctionRequest struct {
	Remarks        string                `json:"remarks"`
	Recommendation models.Recommendation `json:"recommendation" binding:"required"`
}

// SubmitSanctionDecision records the graduate office's decision. APPROVE
// publishes the record; REVISE and REJECT send it back with remarks.
func (a *API) SubmitSanctionDecision(c *gin.Context) {
	var req SanctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.Lifecycle.AdminDecision(currentActor(c), c.Param("id"), req.Remarks, req.Recommendation)
	if err != nil {
		respondError(c, err)
		return
	}

	a.Notifier.NotifyStatusChange(*rec)
	c.JSON(http.StatusOK, gin.H{"thesis": rec, "message": "Decision recorded"})
}

// ===================== STORAGE ADMINISTRATION =====================

// GetStorageUsage reports the total persisted footprint. Display only.
func (a *API) GetStorageUsage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"usage_bytes": a.Store.UsageBytes()})
}

// PruneStorage clears artifact references on superseded versions on demand,
// without waiting for a quota failure.
func (a *API) PruneStorage(c *gin.Context) {
	records, rev := a.Store.LoadTheses()
	if _, err := a.Store.SaveTheses(storage.PruneVersions(records), rev); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Superseded version artifacts pruned"})
}

// ClearAppData removes the thesis and message collections only.
func (a *API) ClearAppData(c *gin.Context) {
	if err := a.Store.ClearAppData(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application data cleared"})
}

// ResetStorage wipes everything in the store. The two-step confirmation
// lives in the client; the operation itself runs immediately.
func (a *API) ResetStorage(c *gin.Context) {
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pass confirm=true to wipe all storage"})
		return
	}
	if err := a.Store.ResetAll(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All storage reset"})
}
