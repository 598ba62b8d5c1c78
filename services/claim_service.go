package services

import (
	"time"

	"github.com/codewithedgar/bothost/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DailyClaimAmount = 10

type ClaimService struct {
	DB *gorm.DB

	// Now is swappable so tests can move the calendar forward.
	Now func() time.Time
}

func NewClaimService(db *gorm.DB) *ClaimService {
	return &ClaimService{DB: db, Now: time.Now}
}

// ClaimDaily grants the daily reward at most once per calendar day. The date
// check and the credit are a single conditional UPDATE keyed on the stored
// last_claim_date, so two same-day claims racing each other resolve to
// exactly one credit no matter how they interleave.
func (s *ClaimService) ClaimDaily(userID uuid.UUID) (int64, error) {
	today := truncateToDay(s.Now().UTC())

	var balance int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND (last_claim_date IS NULL OR last_claim_date < ?)", userID, today).
			Updates(map[string]interface{}{
				"last_claim_date": today,
				"coins":           gorm.Expr("coins + ?", DailyClaimAmount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrAccountNotFound
			}
			return ErrAlreadyClaimedToday
		}

		var err error
		balance, err = appendEvent(tx, userID, DailyClaimAmount, models.KindDailyClaim, "daily coin claim")
		return err
	})
	return balance, err
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
