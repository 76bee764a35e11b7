package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserStats is the running aggregate for a single wallet address.
// One row per address, created on first activity via upsert and mutated only
// by the points ledger. Values only grow, except the current win streak which
// resets to zero on a recorded loss.
type UserStats struct {
	WalletAddress       string          `gorm:"primaryKey;size:64" json:"wallet_address"`
	Points              int64           `gorm:"not null;default:0;index" json:"points"`
	TotalStaked         decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_staked"`
	TotalWinnings       decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_winnings"`
	TotalLosses         decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_losses"`
	CurrentStreak       int             `gorm:"not null;default:0" json:"current_streak"`
	LongestWinStreak    int             `gorm:"not null;default:0" json:"longest_win_streak"`
	MarketsParticipated int             `gorm:"not null;default:0" json:"markets_participated"`
	AverageBetSize      decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"average_bet_size"`
	ROI                 decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"roi"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// TableName specifies the table name for UserStats model
func (UserStats) TableName() string {
	return "user_stats"
}
