package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/zemenplay/bingo-backend/controllers"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ----------------------
	// User routes
	// ----------------------
	api.POST("/users", controllers.RegisterUser)
	api.GET("/users/:telegram_id", controllers.GetUser)
	api.PATCH("/users/:telegram_id/phone", controllers.UpdatePhone)

	// ----------------------
	// Game routes
	// ----------------------
	api.GET("/games", controllers.ListGames)
	api.GET("/games/:id", controllers.GetGame)
	api.GET("/rooms", controllers.ListRooms)
	api.GET("/rooms/:room_id", controllers.RoomStatus)

	// ----------------------
	// Wallet routes
	// ----------------------
	api.POST("/deposit", controllers.Deposit)
	api.POST("/withdraw", controllers.Withdraw)
	api.GET("/transactions/:telegram_id", controllers.ListTransactions)
}
