package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zemenplay/bingo-backend/config"
	"github.com/zemenplay/bingo-backend/models"
)

type walletRequest struct {
	TelegramID int64   `json:"telegramId" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
}

// Deposit handles adding funds to user wallet
func Deposit(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("telegram_id = ?", req.TelegramID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	user.Balance += req.Amount
	if err := tx.Save(&user).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
		return
	}

	record := models.Transaction{
		UserID:       user.ID,
		Type:         models.DepositTransaction,
		Amount:       req.Amount,
		BalanceAfter: user.Balance,
		Reference:    uuid.NewString(),
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
		return
	}

	tx.Commit()
	c.JSON(http.StatusCreated, record)
}

// Withdraw handles user withdrawal
func Withdraw(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("telegram_id = ?", req.TelegramID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Balance < req.Amount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	user.Balance -= req.Amount
	if err := tx.Save(&user).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
		return
	}

	record := models.Transaction{
		UserID:       user.ID,
		Type:         models.WithdrawTransaction,
		Amount:       req.Amount,
		BalanceAfter: user.Balance,
		Reference:    uuid.NewString(),
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
		return
	}

	tx.Commit()
	c.JSON(http.StatusCreated, record)
}

// ListTransactions returns the ledger rows for one user
func ListTransactions(c *gin.Context) {
	tidStr := c.Param("telegram_id")

	var user models.User
	if err := config.DB.Where("telegram_id = ?", tidStr).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var records []models.Transaction
	if err := config.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, records)
}
