package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zemenplay/bingo-backend/game"
	"github.com/zemenplay/bingo-backend/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Settlement is the gorm-backed ledger the rooms settle against.
// Player ids on the wire are telegram ids rendered as strings.
type Settlement struct {
	db *gorm.DB
}

var _ game.SettlementGateway = (*Settlement)(nil)

func NewSettlement(db *gorm.DB) *Settlement {
	return &Settlement{db: db}
}

func (s *Settlement) user(playerID string) (*models.User, error) {
	tid, err := strconv.ParseInt(playerID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid player id %q: %w", playerID, err)
	}
	var user models.User
	if err := s.db.Where("telegram_id = ?", tid).First(&user).Error; err != nil {
		return nil, fmt.Errorf("player %s: %w", playerID, err)
	}
	return &user, nil
}

// UserByTelegramID fetches the account backing a wallet.
func (s *Settlement) UserByTelegramID(tid int64) (*models.User, error) {
	return s.user(strconv.FormatInt(tid, 10))
}

func (s *Settlement) PlayerBalance(playerID string) (float64, error) {
	user, err := s.user(playerID)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// Debit removes amount from the player's wallet and records the
// transaction, atomically. Fails without side effects if the balance
// does not cover the amount.
func (s *Settlement) Debit(playerID string, amount float64, gameID uint) (game.Balance, error) {
	return s.mutate(playerID, -amount, models.EntryFeeTransaction, gameID)
}

// Credit adds amount to the player's wallet and records the transaction.
func (s *Settlement) Credit(playerID string, amount float64, gameID uint) (game.Balance, error) {
	return s.mutate(playerID, amount, models.PrizeTransaction, gameID)
}

func (s *Settlement) mutate(playerID string, change float64, txType models.TransactionType, gameID uint) (game.Balance, error) {
	var bal game.Balance
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tid, err := strconv.ParseInt(playerID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid player id %q: %w", playerID, err)
		}
		var user models.User
		if err := tx.Where("telegram_id = ?", tid).First(&user).Error; err != nil {
			return fmt.Errorf("player %s: %w", playerID, err)
		}
		bal.Before = user.Balance
		after := user.Balance + change
		if after < 0 {
			return fmt.Errorf("player %s: insufficient balance (%.2f < %.2f)", playerID, user.Balance, -change)
		}
		user.Balance = after
		bal.After = after
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		amount := change
		if amount < 0 {
			amount = -amount
		}
		record := models.Transaction{
			UserID:       user.ID,
			Type:         txType,
			Amount:       amount,
			BalanceAfter: after,
			Reference:    uuid.NewString(),
			GameID:       gameID,
		}
		return tx.Create(&record).Error
	})
	return bal, err
}

// RecordTransaction writes a standalone ledger row, used by the REST
// wallet endpoints.
func (s *Settlement) RecordTransaction(userID uint, txType models.TransactionType, amount, balanceAfter float64) error {
	record := models.Transaction{
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Reference:    uuid.NewString(),
	}
	return s.db.Create(&record).Error
}

// OpenGameRecord persists the start of a round and returns its id.
func (s *Settlement) OpenGameRecord(roomID string, mode game.Mode, entryFee int) (uint, error) {
	record := models.Game{
		RoomID:      roomID,
		Mode:        string(mode),
		Stake:       entryFee,
		Status:      "in_progress",
		StartTime:   time.Now(),
		NumbersJSON: datatypes.JSON([]byte("[]")),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

// CloseGameRecord finalizes a round's record with its outcome and the
// full called-number history.
func (s *Settlement) CloseGameRecord(gameID uint, status string, numbers []int, winners []string) error {
	if gameID == 0 {
		return fmt.Errorf("no game record open")
	}
	numbersJSON, err := json.Marshal(numbers)
	if err != nil {
		return err
	}
	winnersJSON, err := json.Marshal(winners)
	if err != nil {
		return err
	}
	return s.db.Model(&models.Game{}).Where("id = ?", gameID).Updates(map[string]any{
		"status":       status,
		"end_time":     time.Now(),
		"numbers_json": datatypes.JSON(numbersJSON),
		"winners_json": datatypes.JSON(winnersJSON),
	}).Error
}
