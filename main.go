package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/zemenplay/bingo-backend/config"
	"github.com/zemenplay/bingo-backend/routes"
	"github.com/zemenplay/bingo-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// setupRouter initializes Gin routes and middleware
func setupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup REST routes
	routes.SetupRoutes(r)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket room endpoint
	r.GET("/ws/:room_id", services.HandleWebSocket)

	return r
}

func main() {
	// Load env variables
	config.LoadEnv()

	// Connect to database
	db := config.SetupDatabase()

	// Start the in-memory game rooms
	services.InitRoomService(db)

	router := setupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("🚀 Bingo Backend server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
