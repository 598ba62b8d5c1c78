package jobs

import (
	"log"

	"github.com/codewithedgar/bothost/models"
	"gorm.io/gorm"
)

// AuditLedger recomputes every balance from the event history and logs any
// account whose materialized balance drifted. Drift is never corrected here,
// it is a defect to be investigated.
func AuditLedger(db *gorm.DB) {
	log.Println("Running job: AuditLedger...")

	type row struct {
		ID    string
		Coins int64
		Total int64
	}
	var rows []row
	err := db.Model(&models.User{}).
		Select("users.id, users.coins, COALESCE(SUM(ledger_events.amount), 0) as total").
		Joins("LEFT JOIN ledger_events ON ledger_events.user_id = users.id").
		Group("users.id, users.coins").
		Scan(&rows).Error
	if err != nil {
		log.Printf("🔥 Ledger audit query failed: %v", err)
		return
	}

	drifted := 0
	for _, r := range rows {
		if r.Coins != r.Total {
			drifted++
			log.Printf("🔥 Ledger drift for user %s: balance=%d, sum(events)=%d", r.ID, r.Coins, r.Total)
		}
	}
	if drifted == 0 {
		log.Printf("Ledger audit clean across %d accounts", len(rows))
	}
}
