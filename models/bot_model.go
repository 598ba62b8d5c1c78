package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BotStatus string

const (
	BotStatusPending   BotStatus = "pending"
	BotStatusDeploying BotStatus = "deploying"
	BotStatusDeployed  BotStatus = "deployed"
	BotStatusFailed    BotStatus = "failed"
	BotStatusStopped   BotStatus = "stopped"
)

var botTransitions = map[BotStatus][]BotStatus{
	BotStatusPending:   {BotStatusDeploying, BotStatusFailed},
	BotStatusDeploying: {BotStatusDeployed, BotStatusFailed},
	BotStatusDeployed:  {BotStatusStopped, BotStatusFailed},
}

// CanTransitionTo reports whether the status change is allowed by the
// deployment state machine. Terminal states (failed, stopped) have no exits.
func (s BotStatus) CanTransitionTo(next BotStatus) bool {
	for _, allowed := range botTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BotStatus) Valid() bool {
	switch s {
	case BotStatusPending, BotStatusDeploying, BotStatusDeployed, BotStatusFailed, BotStatusStopped:
		return true
	}
	return false
}

type Bot struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"not null;index" json:"user_id"`
	Name   string    `gorm:"size:64;not null" json:"name"`
	Env    string    `gorm:"type:text" json:"env"`
	Status BotStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Bot) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
