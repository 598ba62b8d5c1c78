package utils

import (
	"math/rand"
	"strings"

	"github.com/codewithedgar/bothost/models"
	"gorm.io/gorm"
)

const suffixLength = 4
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferralCode builds a code from the first letters of the username
// plus a random suffix, retrying on collision. The unique constraint on
// users.referral_code is still the final arbiter.
func GenerateReferralCode(tx *gorm.DB, username string) (string, error) {
	prefix := strings.ToUpper(username)
	prefix = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, prefix)
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}

	for {
		b := make([]byte, suffixLength)
		for i := range b {
			b[i] = letterBytes[rand.Intn(len(letterBytes))]
		}
		code := prefix + string(b)

		var count int64
		if err := tx.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
}
