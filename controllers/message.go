package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thesis-management-api/utils"
)

// GetConversation returns the chat between the current user and another,
// oldest first.
func (a *API) GetConversation(c *gin.Context) {
	actor := currentActor(c)
	msgs := a.Messages.Conversation(actor.ID, c.Param("userId"))
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "total": len(msgs)})
}

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

// SendMessage appends one chat message.
func (a *API) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := a.Messages.Send(currentActor(c).ID, req.ReceiverID, utils.SanitizeInput(req.Text))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sent": msg})
}

// MarkConversationRead flags everything the other user sent as read.
func (a *API) MarkConversationRead(c *gin.Context) {
	if err := a.Messages.MarkRead(currentActor(c).ID, c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation marked read"})
}

// GetUnreadCount returns the unread badge number for the current user.
func (a *API) GetUnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"unread": a.Messages.UnreadCount(currentActor(c).ID)})
}
