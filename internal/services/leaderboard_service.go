package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pulse-markets/internal/models"
	"pulse-markets/internal/repository"

	"gorm.io/gorm"
)

type LeaderboardTimeframe string

const (
	TimeframeAll     LeaderboardTimeframe = "all"
	TimeframeWeekly  LeaderboardTimeframe = "weekly"
	TimeframeMonthly LeaderboardTimeframe = "monthly"
)

type LeaderboardCategory string

const (
	CategoryPoints          LeaderboardCategory = "points"
	CategoryMarketsCreated  LeaderboardCategory = "markets_created"
	CategoryBetsPlaced      LeaderboardCategory = "bets_placed"
	CategoryMarketsResolved LeaderboardCategory = "markets_resolved"
)

// Badge thresholds
const (
	badgeHighRollerPoints  = 10000
	badgeBigWinnerPoints   = 5000
	badgeStreakKingStreak  = 10
	badgeOnFireStreak      = 5
	badgeMarketMakerCount  = 10
	badgeActiveTraderCount = 50
)

// LeaderboardEntry is one ranked row with profile metadata, activity counts,
// windowed point subtotals and earned badges
type LeaderboardEntry struct {
	Rank            int      `json:"rank"`
	WalletAddress   string   `json:"wallet_address"`
	Username        string   `json:"username"`
	DisplayName     string   `json:"display_name"`
	ProfileImageURL string   `json:"profile_image_url"`
	Points          int64    `json:"points"`
	WeeklyPoints    int64    `json:"weekly_points"`
	MonthlyPoints   int64    `json:"monthly_points"`
	MarketsCreated  int      `json:"markets_created"`
	BetsPlaced      int      `json:"bets_placed"`
	MarketsResolved int      `json:"markets_resolved"`
	LongestStreak   int      `json:"longest_streak"`
	Badges          []string `json:"badges"`
}

// UserRank is the answer to "where do I stand"
type UserRank struct {
	WalletAddress string `json:"wallet_address"`
	Rank          int64  `json:"rank"`
	Points        int64  `json:"points"`
	TotalUsers    int64  `json:"total_users"`
}

// LeaderboardService derives ranked user lists from the aggregate stats table
// and the activity trail
type LeaderboardService struct {
	db   *gorm.DB
	repo *repository.Repository
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{
		db:   db,
		repo: repository.NewRepository(db),
	}
}

// GetLeaderboard builds the ranked list for a timeframe and category.
// Windowed subtotals are summed from the activity rows' recorded points, so
// they stay consistent with what was actually awarded even if the point table
// changes over time.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, timeframe LeaderboardTimeframe, category LeaderboardCategory, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	stats, err := s.repo.ListAllStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	if len(stats) == 0 {
		return []LeaderboardEntry{}, nil
	}

	addresses := make([]string, 0, len(stats))
	for _, row := range stats {
		addresses = append(addresses, row.WalletAddress)
	}

	users, err := s.repo.ListUsersByAddresses(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	profiles := make(map[string]models.User, len(users))
	for _, user := range users {
		profiles[user.WalletAddress] = user
	}

	activities, err := s.repo.ListActivitiesFor(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	now := time.Now().UTC()
	weekStart := now.Add(-7 * 24 * time.Hour)
	monthStart := now.Add(-30 * 24 * time.Hour)

	entries := make([]LeaderboardEntry, 0, len(stats))
	for _, row := range stats {
		entry := LeaderboardEntry{
			WalletAddress: row.WalletAddress,
			Points:        row.Points,
			LongestStreak: row.LongestWinStreak,
		}

		if profile, ok := profiles[row.WalletAddress]; ok {
			entry.Username = profile.Username
			entry.DisplayName = profile.DisplayName
			entry.ProfileImageURL = profile.ProfileImageURL
		}

		for _, activity := range activities {
			if activity.UserAddress != row.WalletAddress {
				continue
			}
			switch activity.ActivityType {
			case models.ActivityCreateMarket:
				entry.MarketsCreated++
			case models.ActivityPlaceBet:
				entry.BetsPlaced++
			case models.ActivityMarketResolved:
				entry.MarketsResolved++
			}
			if activity.CreatedAt.After(weekStart) {
				entry.WeeklyPoints += activity.PointsEarned
			}
			if activity.CreatedAt.After(monthStart) {
				entry.MonthlyPoints += activity.PointsEarned
			}
		}

		entry.Badges = deriveBadges(entry)
		entries = append(entries, entry)
	}

	sortKey := sortValue(category, timeframe)
	sort.SliceStable(entries, func(i, j int) bool {
		return sortKey(entries[i]) > sortKey(entries[j])
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}

	// Ranks are 1-based positions; ties still get distinct consecutive ranks
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// GetUserRank returns a user's position by lifetime points: the count of
// users strictly above them, plus one
func (s *LeaderboardService) GetUserRank(ctx context.Context, address string) (*UserRank, error) {
	stats, err := s.repo.GetUserStats(ctx, address)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("no stats recorded for %s", address)
	}
	if err != nil {
		return nil, err
	}

	above, err := s.repo.CountUsersWithMorePoints(ctx, stats.Points)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.UserStats{}).Count(&total).Error; err != nil {
		return nil, err
	}

	return &UserRank{
		WalletAddress: address,
		Rank:          above + 1,
		Points:        stats.Points,
		TotalUsers:    total,
	}, nil
}

func sortValue(category LeaderboardCategory, timeframe LeaderboardTimeframe) func(LeaderboardEntry) int64 {
	switch category {
	case CategoryMarketsCreated:
		return func(e LeaderboardEntry) int64 { return int64(e.MarketsCreated) }
	case CategoryBetsPlaced:
		return func(e LeaderboardEntry) int64 { return int64(e.BetsPlaced) }
	case CategoryMarketsResolved:
		return func(e LeaderboardEntry) int64 { return int64(e.MarketsResolved) }
	}

	switch timeframe {
	case TimeframeWeekly:
		return func(e LeaderboardEntry) int64 { return e.WeeklyPoints }
	case TimeframeMonthly:
		return func(e LeaderboardEntry) int64 { return e.MonthlyPoints }
	default:
		return func(e LeaderboardEntry) int64 { return e.Points }
	}
}

func deriveBadges(entry LeaderboardEntry) []string {
	badges := []string{}
	if entry.Points >= badgeHighRollerPoints {
		badges = append(badges, "High Roller")
	} else if entry.Points >= badgeBigWinnerPoints {
		badges = append(badges, "Big Winner")
	}
	if entry.LongestStreak >= badgeStreakKingStreak {
		badges = append(badges, "Streak King")
	} else if entry.LongestStreak >= badgeOnFireStreak {
		badges = append(badges, "On Fire")
	}
	if entry.MarketsCreated >= badgeMarketMakerCount {
		badges = append(badges, "Market Maker")
	}
	if entry.BetsPlaced >= badgeActiveTraderCount {
		badges = append(badges, "Active Trader")
	}
	return badges
}
