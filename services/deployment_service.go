package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/provisioning"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DeploymentCost = 50

type DeploymentService struct {
	DB          *gorm.DB
	Provisioner provisioning.Provisioner
}

func NewDeploymentService(db *gorm.DB, p provisioning.Provisioner) *DeploymentService {
	return &DeploymentService{DB: db, Provisioner: p}
}

// RequestDeployment debits the deployment cost and records the bot as one
// transaction. A bot row without its debit, or a debit without its bot, can
// never commit. The actual provisioning request happens after commit and its
// outcome does not touch the ledger: a provisioning failure is reported
// through the status callback, not refunded.
func (s *DeploymentService) RequestDeployment(userID uuid.UUID, name, env string) (*models.Bot, error) {
	var bot models.Bot
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := DebitTx(tx, userID, DeploymentCost, models.KindDeploymentDebit,
			fmt.Sprintf("deployment of bot %s", name)); err != nil {
			return err
		}

		bot = models.Bot{
			UserID: userID,
			Name:   name,
			Env:    env,
			Status: models.BotStatusPending,
		}
		return tx.Create(&bot).Error
	})
	if err != nil {
		return nil, err
	}

	go s.Dispatch(bot)

	return &bot, nil
}

// Dispatch hands a pending bot to the provisioning collaborator and, if the
// request was accepted, moves it to deploying. The bot stays pending on
// failure so the retry job can pick it up.
func (s *DeploymentService) Dispatch(bot models.Bot) {
	if s.Provisioner == nil {
		log.Printf("No provisioner configured, bot %s stays pending", bot.ID)
		return
	}

	err := s.Provisioner.RequestProvision(provisioning.ProvisionRequest{
		BotID: bot.ID.String(),
		Name:  bot.Name,
		Env:   bot.Env,
	})
	if err != nil {
		log.Printf("🔥 Provisioning request for bot %s failed: %v", bot.ID, err)
		return
	}

	if err := s.UpdateStatus(bot.ID, models.BotStatusDeploying); err != nil {
		log.Printf("🔥 Failed to mark bot %s as deploying: %v", bot.ID, err)
	}
}

// UpdateStatus applies one transition of the deployment state machine. The
// old status is part of the WHERE clause so a concurrent transition cannot
// be overwritten.
func (s *DeploymentService) UpdateStatus(botID uuid.UUID, next models.BotStatus) error {
	var bot models.Bot
	if err := s.DB.First(&bot, "id = ?", botID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBotNotFound
		}
		return err
	}

	if !bot.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, bot.Status, next)
	}

	res := s.DB.Model(&models.Bot{}).
		Where("id = ? AND status = ?", botID, bot.Status).
		Update("status", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
	}
	return nil
}
