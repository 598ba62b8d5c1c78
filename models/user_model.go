package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username string    `gorm:"size:32;not null;unique" json:"username"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`

	ReferralCode   string  `gorm:"size:16;not null;unique" json:"referral_code"`
	ReferredByCode *string `gorm:"size:16" json:"referred_by_code,omitempty"`

	// Coins is a materialized view of the ledger: it must always equal the
	// sum of this user's LedgerEvent amounts. Mutated only through
	// conditional updates in the services package.
	Coins int64 `gorm:"not null;default:0;check:coins >= 0" json:"coins"`

	Verified          bool       `gorm:"not null;default:false" json:"verified"`
	VerificationToken *string    `gorm:"size:255;unique" json:"-"`
	LastClaimDate     *time.Time `gorm:"type:date" json:"last_claim_date,omitempty"`
	IsAdmin           bool       `gorm:"not null;default:false" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
