package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"thesis-management-api/services"
	"thesis-management-api/storage"
)

// API bundles the handlers' dependencies. The record store is injected here
// rather than held as a package global so handlers depend on a capability.
type API struct {
	Store     *storage.Store
	Lifecycle *services.LifecycleService
	Messages  *services.MessageService
	Assist    *services.AIService
	Notifier  *services.NotificationService
}

func NewAPI(store *storage.Store, notifier *services.NotificationService) *API {
	return &API{
		Store:     store,
		Lifecycle: services.NewLifecycleService(store),
		Messages:  services.NewMessageService(store),
		Assist:    services.NewAIService(nil),
		Notifier:  notifier,
	}
}

// currentActor builds the authenticated actor from what AuthMiddleware put
// in the context.
func currentActor(c *gin.Context) services.Actor {
	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")
	name, _ := c.Get("userName")
	actor := services.Actor{}
	if id, ok := userID.(int); ok {
		actor.ID = strconv.Itoa(id)
	}
	if r, ok := roleID.(int); ok {
		actor.RoleID = r
	}
	if n, ok := name.(string); ok {
		actor.Name = n
	}
	return actor
}

// respondError maps service and storage failures onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason})
	case errors.Is(err, storage.ErrStorageExhausted):
		c.JSON(http.StatusInsufficientStorage, gin.H{
			"error": "Storage is full. Older manuscript versions were already trimmed; delete data or raise the capacity ceiling and try again.",
		})
	case errors.Is(err, storage.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "The record changed while you were editing. Reload and try again."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
