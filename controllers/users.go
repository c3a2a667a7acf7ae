package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zemenplay/bingo-backend/config"
	"github.com/zemenplay/bingo-backend/models"
	"github.com/zemenplay/bingo-backend/services"
	"gorm.io/gorm"
)

type registerRequest struct {
	TelegramID int64  `json:"telegramId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
}

// userByParam resolves the :telegram_id route param through the wallet
// service, writing the error response itself on failure.
func userByParam(c *gin.Context) (*models.User, bool) {
	tid, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telegram_id"})
		return nil, false
	}
	user, err := services.Wallet.UserByTelegramID(tid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return nil, false
	}
	return user, true
}

// RegisterUser creates a wallet-backed account for a Telegram identity
func RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := services.Wallet.UserByTelegramID(req.TelegramID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	user := models.User{
		TelegramID: req.TelegramID,
		Name:       req.Name,
		Phone:      req.Phone,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser returns the account plus, when the player is locked into a
// live room, where they are playing
func GetUser(c *gin.Context) {
	user, ok := userByParam(c)
	if !ok {
		return
	}

	resp := gin.H{"user": user}
	playerID := strconv.FormatInt(user.TelegramID, 10)
	if st, err := services.Tracker.CheckActive(playerID); err == nil && st.Active {
		resp["activeRoom"] = st.RoomID
		resp["activeMode"] = st.Mode
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePhone updates a user's phone number
func UpdatePhone(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, ok := userByParam(c)
	if !ok {
		return
	}

	if err := config.DB.Model(user).Update("phone", req.Phone).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update phone"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"telegram_id": user.TelegramID,
		"phone":       req.Phone,
	})
}
