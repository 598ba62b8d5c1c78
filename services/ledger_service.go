package services

import (
	"github.com/codewithedgar/bothost/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger is the balance-mutation contract. Every successful call changes the
// coin balance and appends exactly one LedgerEvent in the same transaction,
// so the sum of a user's events always equals their balance.
type Ledger interface {
	Credit(userID uuid.UUID, amount int64, kind models.LedgerKind, description string) (int64, error)
	Debit(userID uuid.UUID, amount int64, kind models.LedgerKind, description string) (int64, error)
	Balance(userID uuid.UUID) (int64, error)
}

type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

func (s *LedgerService) Credit(userID uuid.UUID, amount int64, kind models.LedgerKind, description string) (int64, error) {
	var balance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = CreditTx(tx, userID, amount, kind, description)
		return err
	})
	return balance, err
}

func (s *LedgerService) Debit(userID uuid.UUID, amount int64, kind models.LedgerKind, description string) (int64, error) {
	var balance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = DebitTx(tx, userID, amount, kind, description)
		return err
	})
	return balance, err
}

func (s *LedgerService) Balance(userID uuid.UUID) (int64, error) {
	var user models.User
	if err := s.DB.Select("coins").First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return user.Coins, nil
}

// CreditTx applies a credit inside an existing transaction. The balance
// update is a single conditional statement, so concurrent mutations of the
// same account serialize at the row and can never lose an increment.
func CreditTx(tx *gorm.DB, userID uuid.UUID, amount int64, kind models.LedgerKind, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("coins", gorm.Expr("coins + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrAccountNotFound
	}

	return appendEvent(tx, userID, amount, kind, description)
}

// DebitTx applies a debit inside an existing transaction. The balance check
// is part of the UPDATE itself: a stale read can never drive the balance
// negative, the statement simply matches no row and the debit is rejected.
func DebitTx(tx *gorm.DB, userID uuid.UUID, amount int64, kind models.LedgerKind, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND coins >= ?", userID, amount).
		UpdateColumn("coins", gorm.Expr("coins - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, ErrAccountNotFound
		}
		return 0, ErrInsufficientBalance
	}

	return appendEvent(tx, userID, -amount, kind, description)
}

func appendEvent(tx *gorm.DB, userID uuid.UUID, amount int64, kind models.LedgerKind, description string) (int64, error) {
	event := models.LedgerEvent{
		UserID:      userID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
	}
	if err := tx.Create(&event).Error; err != nil {
		return 0, err
	}

	var user models.User
	if err := tx.Select("coins").First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	return user.Coins, nil
}
