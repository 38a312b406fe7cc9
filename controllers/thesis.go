// controllers/thesis.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"thesis-management-api/models"
	"thesis-management-api/services"
)

// ===================== THESIS MANAGEMENT =====================

// GetTheses returns the thesis collection, filtered by query parameters.
// Students only ever see their own records; reviewers and admins see all.
func (a *API) GetTheses(c *gin.Context) {
	actor := currentActor(c)

	status := c.Query("status")
	department := c.Query("department")
	year := c.Query("year")
	mine := c.Query("mine") == "true"

	var out []models.ThesisRecord
	for _, rec := range a.Lifecycle.List() {
		if actor.RoleID == models.RoleStudent || mine {
			if rec.AuthorID != actor.ID {
				continue
			}
		}
		if status != "" && string(rec.Status) != status {
			continue
		}
		if department != "" && rec.Department != department {
			continue
		}
		if year != "" {
			if y, err := strconv.Atoi(year); err != nil || rec.Year != y {
				continue
			}
		}
		out = append(out, rec)
	}

	c.JSON(http.StatusOK, gin.H{"theses": out, "total": len(out)})
}

// GetThesis returns a single record by ID.
func (a *API) GetThesis(c *gin.Context) {
	actor := currentActor(c)

	rec, err := a.Lifecycle.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thesis not found"})
		return
	}
	if actor.RoleID == models.RoleStudent && rec.AuthorID != actor.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own theses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"thesis": rec})
}

type SubmitThesisRequest struct {
	Title         string   `json:"title" binding:"required"`
	Abstract      string   `json:"abstract"`
	Supervisor    string   `json:"supervisor"`
	CoResearchers []string `json:"co_researchers"`
	Department    string   `json:"department"`
	Year          int      `json:"year"`
	FileURL       string   `json:"file_url"`
	FileName      string   `json:"file_name"`
	Keywords      []string `json:"keywords"`
}

// SubmitThesis creates a new record in PENDING with its initial version.
func (a *API) SubmitThesis(c *gin.Context) {
	var req SubmitThesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.Lifecycle.Submit(currentActor(c), services.SubmitThesisInput{
		Title:         req.Title,
		Abstract:      req.Abstract,
		Supervisor:    req.Supervisor,
		CoResearchers: req.CoResearchers,
		Department:    req.Department,
		Year:          req.Year,
		FileURL:       req.FileURL,
		FileName:      req.FileName,
		Keywords:      req.Keywords,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"thesis": rec, "message": "Thesis submitted"})
}

type UpdateThesisRequest struct {
	Title      *string  `json:"title"`
	Abstract   *string  `json:"abstract"`
	Department *string  `json:"department"`
	Year       *int     `json:"year"`
	Keywords   []string `json:"keywords"`
}

// UpdateThesis edits content fields on an unpublished record.
func (a *API) UpdateThesis(c *gin.Context) {
	var req UpdateThesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.Lifecycle.Update(currentActor(c), c.Param("id"), services.UpdateThesisInput{
		Title:      req.Title,
		Abstract:   req.Abstract,
		Department: req.Department,
		Year:       req.Year,
		Keywords:   req.Keywords,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"thesis": rec, "message": "Thesis updated"})
}

type ResubmitRequest struct {
	FileURL  string `json:"file_url" binding:"required"`
	FileName string `json:"file_name"`
	Note     string `json:"note" binding:"required"`
}

// ResubmitThesis records a revised manuscript on a record awaiting revision
// and returns it to peer review.
func (a *API) ResubmitThesis(c *gin.Context) {
	var req ResubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.Lifecycle.Resubmit(currentActor(c), c.Param("id"), req.FileURL, req.FileName, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	a.Notifier.NotifyStatusChange(*rec)
	c.JSON(http.StatusOK, gin.H{"thesis": rec, "message": "Revision submitted"})
}
