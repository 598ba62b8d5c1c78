package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Referral struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ReferrerID     uuid.UUID `gorm:"not null;index"`
	ReferredUserID uuid.UUID `gorm:"not null;unique"`
	BonusGiven     bool      `gorm:"not null;default:false"`

	Referrer     User `gorm:"foreignkey:ReferrerID"`
	ReferredUser User `gorm:"foreignkey:ReferredUserID"`

	CreatedAt time.Time
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
