package jobs

import (
	"log"
	"time"

	"github.com/codewithedgar/bothost/models"
	"github.com/codewithedgar/bothost/services"
	"gorm.io/gorm"
)

const stuckThreshold = 5 * time.Minute

// RetryStuckDeployments re-dispatches bots whose provisioning request never
// left pending. The debit already happened at request time; this only nudges
// the collaborator again.
func RetryStuckDeployments(db *gorm.DB, deployments *services.DeploymentService) {
	log.Println("Running job: RetryStuckDeployments...")

	cutoff := time.Now().Add(-stuckThreshold)

	var stuck []models.Bot
	if err := db.Where("status = ? AND updated_at < ?", models.BotStatusPending, cutoff).Find(&stuck).Error; err != nil {
		log.Printf("🔥 Failed to query stuck deployments: %v", err)
		return
	}

	for _, bot := range stuck {
		log.Printf("Re-dispatching stuck bot %s (%s)", bot.ID, bot.Name)
		deployments.Dispatch(bot)
	}
}
