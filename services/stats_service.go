package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/codewithedgar/bothost/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const statsCacheKey = "admin:platform_stats"
const statsCacheTTL = 30 * time.Second

type PlatformStats struct {
	TotalUsers     int64            `json:"total_users"`
	VerifiedUsers  int64            `json:"verified_users"`
	TotalBots      int64            `json:"total_bots"`
	BotsByStatus   map[string]int64 `json:"bots_by_status"`
	CoinsInFlight  int64            `json:"coins_in_circulation"`
	TotalMessages  int64            `json:"total_messages"`
	TotalReferrals int64            `json:"total_referrals"`
}

type StatsService struct {
	DB    *gorm.DB
	Redis *redis.Client // optional, nil disables caching
}

func NewStatsService(db *gorm.DB, rdb *redis.Client) *StatsService {
	return &StatsService{DB: db, Redis: rdb}
}

func (s *StatsService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var stats PlatformStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			log.Printf("Stats cache read failed: %v", err)
		}
	}

	stats := &PlatformStats{BotsByStatus: make(map[string]int64)}

	if err := s.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	s.DB.Model(&models.User{}).Where("verified = ?", true).Count(&stats.VerifiedUsers)
	s.DB.Model(&models.Bot{}).Count(&stats.TotalBots)
	s.DB.Model(&models.Message{}).Count(&stats.TotalMessages)
	s.DB.Model(&models.Referral{}).Count(&stats.TotalReferrals)

	var coins int64
	s.DB.Model(&models.User{}).Select("COALESCE(SUM(coins), 0)").Scan(&coins)
	stats.CoinsInFlight = coins

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	s.DB.Model(&models.Bot{}).Select("status, COUNT(*) as count").Group("status").Scan(&rows)
	for _, row := range rows {
		stats.BotsByStatus[row.Status] = row.Count
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.Redis.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
				log.Printf("Stats cache write failed: %v", err)
			}
		}
	}

	return stats, nil
}
