package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"thesis-management-api/config"
	"thesis-management-api/controllers"
	"thesis-management-api/middleware"
	"thesis-management-api/routes"
	"thesis-management-api/services"
	"thesis-management-api/storage"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	// Initialize the user directory
	config.InitDB()

	// Open the record store
	store, err := storage.Open(config.StorageConfig())
	if err != nil {
		log.Fatal("❌ Failed to open record store:", err)
	}
	defer store.Close()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Register /logs route early (before 404 catch-all in SetupRoutes)
	router.GET("/logs", func(c *gin.Context) {
		accessToken := os.Getenv("LOG_ACCESS_TOKEN")
		if accessToken == "" || c.Query("token") != accessToken {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}

		c.Data(200, "text/plain; charset=utf-8", logData)
	})

	// Wire controllers and routes
	api := controllers.NewAPI(store, services.NewNotificationService(config.DB))
	routes.SetupRoutes(router, api)

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server starting on port %s", port)
	log.Printf("🎓 Record store open at %s", config.StorageConfig().Path)
	log.Printf("🔒 Security middlewares enabled")

	if ginMode == "release" {
		log.Printf("🏭 Running in production mode")
	} else {
		log.Printf("🔧 Running in development mode")
	}

	if err := router.Run(":" + port); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
