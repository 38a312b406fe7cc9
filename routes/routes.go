package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thesis-management-api/controllers"
	"thesis-management-api/middleware"
	"thesis-management-api/models"
)

func SetupRoutes(router *gin.Engine, api *controllers.API) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Thesis Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Theses
			theses := protected.Group("/theses")
			{
				theses.GET("", api.GetTheses)
				theses.GET("/:id", api.GetThesis)

				// Students submit and resubmit their own work
				theses.POST("", middleware.RequireRole(models.RoleStudent), api.SubmitThesis)
				theses.PUT("/:id", middleware.RequireRole(models.RoleStudent), api.UpdateThesis)
				theses.POST("/:id/resubmit", middleware.RequireRole(models.RoleStudent), api.ResubmitThesis)

				// Peer review stage
				theses.POST("/:id/review", middleware.RequireRole(models.RoleReviewer), api.SubmitPeerReview)

				// Institutional sanction stage
				theses.POST("/:id/sanction", middleware.RequireRole(models.RoleAdmin), api.SubmitSanctionDecision)

				// Advisory AI feedback on one record
				theses.GET("/:id/feedback", api.GetFeedback)
			}

			// Review and sanction queues
			protected.GET("/review-queue", middleware.RequireRole(models.RoleReviewer, models.RoleAdmin), api.GetReviewQueue)
			protected.GET("/sanction-queue", middleware.RequireRole(models.RoleAdmin), api.GetSanctionQueue)

			// Chat
			messages := protected.Group("/messages")
			{
				messages.GET("/unread", api.GetUnreadCount)
				messages.GET("/:userId", api.GetConversation)
				messages.POST("", api.SendMessage)
				messages.PUT("/:userId/read", api.MarkConversationRead)
			}

			// AI assist
			assist := protected.Group("/assist")
			{
				assist.POST("/summarize", api.Summarize)
				assist.POST("/titles", api.SuggestTitles)
			}

			// Storage administration (admin only)
			admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/storage/usage", api.GetStorageUsage)
				admin.POST("/storage/prune", api.PruneStorage)
				admin.DELETE("/storage/app-data", api.ClearAppData)
				admin.DELETE("/storage", api.ResetStorage)
			}
		}
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 404 catch-all
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
