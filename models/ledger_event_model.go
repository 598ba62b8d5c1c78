package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerKind string

const (
	KindDailyClaim      LedgerKind = "daily_claim"
	KindReferralBonus   LedgerKind = "referral_bonus"
	KindDeploymentDebit LedgerKind = "deployment_debit"
	KindAdminGrant      LedgerKind = "admin_grant"
)

// LedgerEvent is append-only. Rows are never updated or deleted; the balance
// on User is derived from them.
type LedgerEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID  `gorm:"not null;index" json:"user_id"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Kind        LedgerKind `gorm:"size:32;not null" json:"kind"`
	Description string     `gorm:"size:255" json:"description"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
