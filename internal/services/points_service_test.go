package services

import (
	"context"
	"testing"

	"pulse-markets/internal/models"

	"github.com/shopspring/decimal"
)

func TestAwardPointsPlaceBet(t *testing.T) {
	db := setupTestDB(t)
	service := NewPointsService(db)
	ctx := context.Background()

	activity, err := service.AwardPoints(ctx, "wallet-1", models.ActivityPlaceBet, ActivityDetails{
		BetAmount: decimal.NewFromInt(50),
	})
	if err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if activity.PointsEarned != 40 {
		t.Errorf("expected 40 points for place_bet, got %d", activity.PointsEarned)
	}

	stats, err := service.GetStats(ctx, "wallet-1")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.Points != 40 {
		t.Errorf("expected 40 total points, got %d", stats.Points)
	}
	if !stats.TotalStaked.Equal(decimal.NewFromInt(50)) {
		t.Errorf("bet of 50 must increase total_staked by exactly 50, got %s", stats.TotalStaked)
	}
	if stats.MarketsParticipated != 1 {
		t.Errorf("expected 1 market participated, got %d", stats.MarketsParticipated)
	}
	if !stats.AverageBetSize.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected average bet 50, got %s", stats.AverageBetSize)
	}
}

func TestAwardPointsAverageBetRecomputed(t *testing.T) {
	db := setupTestDB(t)
	service := NewPointsService(db)
	ctx := context.Background()

	for _, amount := range []int64{50, 150} {
		if _, err := service.AwardPoints(ctx, "wallet-1", models.ActivityPlaceBet, ActivityDetails{
			BetAmount: decimal.NewFromInt(amount),
		}); err != nil {
			t.Fatalf("award failed: %v", err)
		}
	}

	stats, err := service.GetStats(ctx, "wallet-1")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if !stats.TotalStaked.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected total_staked 200, got %s", stats.TotalStaked)
	}
	if stats.MarketsParticipated != 2 {
		t.Errorf("expected 2 markets participated, got %d", stats.MarketsParticipated)
	}
	if !stats.AverageBetSize.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected average bet 100, got %s", stats.AverageBetSize)
	}
	if stats.Points != 80 {
		t.Errorf("expected 80 points after two bets, got %d", stats.Points)
	}
}

func TestAwardPointsPlaceBetRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	service := NewPointsService(db)

	_, err := service.AwardPoints(context.Background(), "wallet-1", models.ActivityPlaceBet, ActivityDetails{})
	if err == nil {
		t.Fatal("expected error for zero bet amount")
	}

	stats, err := service.GetStats(context.Background(), "wallet-1")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.Points != 0 {
		t.Errorf("rejected bet must not award points, got %d", stats.Points)
	}
}

func TestWinStreakExtendsAndLossResets(t *testing.T) {
	db := setupTestDB(t)
	service := NewPointsService(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := service.AwardPoints(ctx, "wallet-1", models.ActivityWinBet, ActivityDetails{
			Winnings: decimal.NewFromInt(100),
		}); err != nil {
			t.Fatalf("win award failed: %v", err)
		}
	}

	stats, err := service.GetStats(ctx, "wallet-1")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("expected streak 2 after two wins, got %d", stats.CurrentStreak)
	}
	if stats.LongestWinStreak != 2 {
		t.Errorf("expected longest streak 2, got %d", stats.LongestWinStreak)
	}
	if !stats.TotalWinnings.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected total winnings 200, got %s", stats.TotalWinnings)
	}

	if _, err := service.AwardPoints(ctx, "wallet-1", models.ActivityLoseBet, ActivityDetails{
		Losses: decimal.NewFromInt(30),
	}); err != nil {
		t.Fatalf("loss award failed: %v", err)
	}

	stats, err = service.GetStats(ctx, "wallet-1")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.CurrentStreak != 0 {
		t.Errorf("loss must reset streak to 0, got %d", stats.CurrentStreak)
	}
	if stats.LongestWinStreak != 2 {
		t.Errorf("loss must not change longest streak, got %d", stats.LongestWinStreak)
	}
	if !stats.TotalLosses.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected total losses 30, got %s", stats.TotalLosses)
	}

	// The next win starts a fresh streak without touching the record
	if _, err := service.AwardPoints(ctx, "wallet-1", models.ActivityWinBet, ActivityDetails{
		Winnings: decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("win award failed: %v", err)
	}
	stats, err = service.GetStats(ctx, "wallet-1")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.CurrentStreak != 1 {
		t.Errorf("expected streak 1 after fresh win, got %d", stats.CurrentStreak)
	}
	if stats.LongestWinStreak != 2 {
		t.Errorf("expected longest streak still 2, got %d", stats.LongestWinStreak)
	}
}

func TestAwardDailyLoginOncePerDay(t *testing.T) {
	db := setupTestDB(t)
	service := NewPointsService(db)
	ctx := context.Background()

	first, err := service.AwardDailyLogin(ctx, "wallet-1")
	if err != nil {
		t.Fatalf("first daily login failed: %v", err)
	}
	if first == nil {
		t.Fatal("first daily login should award")
	}
	if first.PointsEarned != 10 {
		t.Errorf("expected 10 points for daily login, got %d", first.PointsEarned)
	}

	second, err := service.AwardDailyLogin(ctx, "wallet-1")
	if err != nil {
		t.Fatalf("second daily login failed: %v", err)
	}
	if second != nil {
		t.Error("second daily login on the same day must be a no-op")
	}

	stats, err := service.GetStats(ctx, "wallet-1")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.Points != 10 {
		t.Errorf("expected 10 points total, got %d", stats.Points)
	}
}

func TestAwardPointsUnknownActivityType(t *testing.T) {
	db := setupTestDB(t)
	service := NewPointsService(db)

	_, err := service.AwardPoints(context.Background(), "wallet-1", "invented_type", ActivityDetails{})
	if err == nil {
		t.Fatal("expected error for unknown activity type")
	}
}

func TestGetStatsForUnknownUserReturnsZeroedRow(t *testing.T) {
	db := setupTestDB(t)
	service := NewPointsService(db)

	stats, err := service.GetStats(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.Points != 0 || stats.MarketsParticipated != 0 {
		t.Errorf("expected zeroed stats, got points=%d participated=%d", stats.Points, stats.MarketsParticipated)
	}
	if !stats.TotalStaked.IsZero() {
		t.Errorf("expected zero total_staked, got %s", stats.TotalStaked)
	}
}

func TestGetActivitiesNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	service := NewPointsService(db)
	ctx := context.Background()

	if _, err := service.AwardPoints(ctx, "wallet-1", models.ActivityCreateMarket, ActivityDetails{}); err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if _, err := service.AwardPoints(ctx, "wallet-1", models.ActivityComment, ActivityDetails{}); err != nil {
		t.Fatalf("award failed: %v", err)
	}

	activities, err := service.GetActivities(ctx, "wallet-1", 10, 0)
	if err != nil {
		t.Fatalf("get activities failed: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	total := activities[0].PointsEarned + activities[1].PointsEarned
	if total != 105 {
		t.Errorf("expected create_market+comment = 105 points logged, got %d", total)
	}
}
