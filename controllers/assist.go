package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AI assist endpoints. Everything here is advisory display text: the
// lifecycle engine never consumes it, and upstream failures come back as
// neutral fallbacks rather than errors.

type SummarizeRequest struct {
	Title    string `json:"title" binding:"required"`
	Abstract string `json:"abstract"`
}

// Summarize returns a short generated summary of a title and abstract.
func (a *API) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": a.Assist.Summarize(c.Request.Context(), req.Title, req.Abstract),
	})
}

type SuggestTitlesRequest struct {
	Title string `json:"title" binding:"required"`
}

// SuggestTitles returns alternative titles; empty when the service has
// nothing usable.
func (a *API) SuggestTitles(c *gin.Context) {
	var req SuggestTitlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"titles": a.Assist.SuggestTitles(c.Request.Context(), req.Title),
	})
}

// GetFeedback returns generated feedback for one thesis record.
func (a *API) GetFeedback(c *gin.Context) {
	rec, err := a.Lifecycle.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Thesis not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"feedback": a.Assist.Feedback(c.Request.Context(), *rec),
	})
}
