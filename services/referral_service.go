package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/codewithedgar/bothost/models"
	"gorm.io/gorm"
)

const (
	ReferrerBonusAmount = 100
	ReferredBonusAmount = 50
)

// ApplyReferralTx links the new user to the owner of the referral code and
// pays out both bonuses, all inside the caller's transaction. An unknown or
// empty code is a silent no-op so bad codes never block registration. The
// unique constraint on referrals.referred_user_id makes a retry fail closed
// instead of paying twice.
func ApplyReferralTx(tx *gorm.DB, newUser *models.User, code string) error {
	if code == "" {
		return nil
	}

	var referrer models.User
	if err := tx.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Unknown referral code used at registration: %s", code)
			return nil
		}
		return err
	}
	if referrer.ID == newUser.ID {
		return nil
	}

	referral := models.Referral{
		ReferrerID:     referrer.ID,
		ReferredUserID: newUser.ID,
		BonusGiven:     true,
	}
	if err := tx.Create(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrReferralAlreadyApplied
		}
		return err
	}

	if _, err := CreditTx(tx, referrer.ID, ReferrerBonusAmount, models.KindReferralBonus,
		fmt.Sprintf("referral bonus for inviting %s", newUser.Username)); err != nil {
		return err
	}
	if _, err := CreditTx(tx, newUser.ID, ReferredBonusAmount, models.KindReferralBonus,
		fmt.Sprintf("welcome bonus for joining via %s", referrer.Username)); err != nil {
		return err
	}

	return nil
}
