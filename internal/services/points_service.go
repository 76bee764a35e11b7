package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"pulse-markets/internal/models"
	"pulse-markets/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Point values per activity type. This is the single canonical table — every
// award path goes through it, including the leaderboard's window subtotals.
var activityPoints = map[models.ActivityType]int64{
	models.ActivityRegistration:   100,
	models.ActivityCreateMarket:   100,
	models.ActivityPlaceBet:       40,
	models.ActivityWinBet:         50,
	models.ActivityLoseBet:        0,
	models.ActivityMarketResolved: 25,
	models.ActivityDailyLogin:     10,
	models.ActivityWeeklyStreak:   50,
	models.ActivityMonthlyActive:  100,
	models.ActivityComment:        5,
}

// PointsForActivity returns the point value of an activity type
func PointsForActivity(activityType models.ActivityType) int64 {
	return activityPoints[activityType]
}

// ActivityDetails carries the optional payload of an award
type ActivityDetails struct {
	MarketID  *uint64
	BetAmount decimal.Decimal
	Winnings  decimal.Decimal
	Losses    decimal.Decimal
	Extra     map[string]interface{}
}

// PointsService is the ledger that turns user activity into points, aggregate
// stats and an append-only activity trail
type PointsService struct {
	db   *gorm.DB
	repo *repository.Repository
}

// NewPointsService creates a new PointsService
func NewPointsService(db *gorm.DB) *PointsService {
	return &PointsService{
		db:   db,
		repo: repository.NewRepository(db),
	}
}

// AwardPoints applies one activity: the aggregate stats upsert and the
// activity-log insert run inside a single transaction, so the caller never
// observes a stats update without its audit row or vice versa.
func (s *PointsService) AwardPoints(ctx context.Context, address string, activityType models.ActivityType, details ActivityDetails) (*models.Activity, error) {
	points, ok := activityPoints[activityType]
	if !ok {
		return nil, fmt.Errorf("unknown activity type: %s", activityType)
	}

	delta := repository.StatsDelta{Points: points}

	switch activityType {
	case models.ActivityPlaceBet:
		if details.BetAmount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("place_bet requires a positive bet amount")
		}
		delta.StakeAdd = details.BetAmount
		delta.ParticipationAdd = 1
	case models.ActivityWinBet:
		delta.WinningsAdd = details.Winnings
		delta.Streak = repository.StreakExtend
	case models.ActivityLoseBet:
		delta.LossesAdd = details.Losses
		delta.Streak = repository.StreakReset
	}

	activity := &models.Activity{
		UserAddress:  address,
		ActivityType: activityType,
		PointsEarned: points,
		MarketID:     details.MarketID,
		Details:      buildDetails(details),
		CreatedAt:    time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if err := txRepo.ApplyStatsDelta(ctx, address, delta); err != nil {
			return fmt.Errorf("failed to update stats: %w", err)
		}
		if err := txRepo.CreateActivity(ctx, activity); err != nil {
			return fmt.Errorf("failed to log activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Awarded %d points to %s for %s", points, address, activityType)
	return activity, nil
}

// AwardDailyLogin grants the daily login bonus at most once per UTC calendar
// day. A second call on the same day is a no-op and returns nil.
func (s *PointsService) AwardDailyLogin(ctx context.Context, address string) (*models.Activity, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	claimed, err := s.repo.HasActivityInWindow(ctx, address, models.ActivityDailyLogin, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily login: %w", err)
	}
	if claimed {
		return nil, nil
	}

	return s.AwardPoints(ctx, address, models.ActivityDailyLogin, ActivityDetails{})
}

// GetStats returns the aggregate row for an address, or a zeroed row when the
// user has no recorded activity yet
func (s *PointsService) GetStats(ctx context.Context, address string) (*models.UserStats, error) {
	stats, err := s.repo.GetUserStats(ctx, address)
	if err == gorm.ErrRecordNotFound {
		return &models.UserStats{
			WalletAddress:  address,
			TotalStaked:    decimal.Zero,
			TotalWinnings:  decimal.Zero,
			TotalLosses:    decimal.Zero,
			AverageBetSize: decimal.Zero,
			ROI:            decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// GetActivities returns a user's activity feed, newest first
func (s *PointsService) GetActivities(ctx context.Context, address string, limit, offset int) ([]models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListActivities(ctx, address, limit, offset)
}

func buildDetails(details ActivityDetails) models.JSONB {
	blob := models.JSONB{}
	for key, value := range details.Extra {
		blob[key] = value
	}
	if !details.BetAmount.IsZero() {
		blob["bet_amount"] = details.BetAmount.String()
	}
	if !details.Winnings.IsZero() {
		blob["winnings"] = details.Winnings.String()
	}
	if !details.Losses.IsZero() {
		blob["losses"] = details.Losses.String()
	}
	if len(blob) == 0 {
		return nil
	}
	return blob
}
