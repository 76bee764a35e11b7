package models

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityRegistration   ActivityType = "registration"
	ActivityCreateMarket   ActivityType = "create_market"
	ActivityPlaceBet       ActivityType = "place_bet"
	ActivityWinBet         ActivityType = "win_bet"
	ActivityLoseBet        ActivityType = "lose_bet"
	ActivityMarketResolved ActivityType = "market_resolved"
	ActivityDailyLogin     ActivityType = "daily_login"
	ActivityWeeklyStreak   ActivityType = "weekly_streak"
	ActivityMonthlyActive  ActivityType = "monthly_active"
	ActivityComment        ActivityType = "comment"
)

// Activity is one row of the append-only audit trail. Rows are inserted by
// the points ledger and never updated or deleted.
type Activity struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserAddress  string       `gorm:"size:64;not null;index" json:"user_address"`
	ActivityType ActivityType `gorm:"size:50;not null;index" json:"activity_type"`
	PointsEarned int64        `gorm:"not null" json:"points_earned"`
	Details      JSONB        `gorm:"type:jsonb" json:"details,omitempty"`
	MarketID     *uint64      `gorm:"index" json:"market_id,omitempty"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Activity model
func (Activity) TableName() string {
	return "activities"
}
