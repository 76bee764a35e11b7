package repository

import (
	"context"
	"time"

	"pulse-markets/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a Repository bound to an open transaction
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// DB exposes the underlying handle for transaction scoping
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// StreakAction describes what an activity does to the win streak
type StreakAction int

const (
	StreakNone StreakAction = iota
	StreakExtend
	StreakReset
)

// StatsDelta is one atomic adjustment to a user's aggregate stats row
type StatsDelta struct {
	Points           int64
	StakeAdd         decimal.Decimal
	WinningsAdd      decimal.Decimal
	LossesAdd        decimal.Decimal
	ParticipationAdd int
	Streak           StreakAction
}

// ApplyStatsDelta upserts the aggregate row for an address with all
// increments computed inside a single SQL statement. Using expressions
// instead of read-modify-write means two near-simultaneous awards both land
// instead of the last write clobbering the first.
func (r *Repository) ApplyStatsDelta(ctx context.Context, address string, delta StatsDelta) error {
	assignments := map[string]interface{}{
		"points":     gorm.Expr("user_stats.points + ?", delta.Points),
		"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}

	if delta.ParticipationAdd > 0 {
		assignments["total_staked"] = gorm.Expr("user_stats.total_staked + ?", delta.StakeAdd)
		assignments["markets_participated"] = gorm.Expr("user_stats.markets_participated + ?", delta.ParticipationAdd)
		assignments["average_bet_size"] = gorm.Expr(
			"(user_stats.total_staked + ?) / (user_stats.markets_participated + ?)",
			delta.StakeAdd, delta.ParticipationAdd,
		)
	}

	if !delta.WinningsAdd.IsZero() {
		assignments["total_winnings"] = gorm.Expr("user_stats.total_winnings + ?", delta.WinningsAdd)
	}
	if !delta.LossesAdd.IsZero() {
		assignments["total_losses"] = gorm.Expr("user_stats.total_losses + ?", delta.LossesAdd)
	}

	switch delta.Streak {
	case StreakExtend:
		assignments["current_streak"] = gorm.Expr("user_stats.current_streak + 1")
		assignments["longest_win_streak"] = gorm.Expr(
			"CASE WHEN user_stats.longest_win_streak < user_stats.current_streak + 1 THEN user_stats.current_streak + 1 ELSE user_stats.longest_win_streak END",
		)
	case StreakReset:
		assignments["current_streak"] = gorm.Expr("0")
	}

	if !delta.WinningsAdd.IsZero() || !delta.LossesAdd.IsZero() {
		assignments["roi"] = gorm.Expr(
			"CASE WHEN user_stats.total_staked > 0 THEN ((user_stats.total_winnings + ?) - (user_stats.total_losses + ?)) / user_stats.total_staked ELSE 0 END",
			delta.WinningsAdd, delta.LossesAdd,
		)
	}

	initialStreak := 0
	initialLongest := 0
	if delta.Streak == StreakExtend {
		initialStreak = 1
		initialLongest = 1
	}

	row := models.UserStats{
		WalletAddress:       address,
		Points:              delta.Points,
		TotalStaked:         delta.StakeAdd,
		TotalWinnings:       delta.WinningsAdd,
		TotalLosses:         delta.LossesAdd,
		CurrentStreak:       initialStreak,
		LongestWinStreak:    initialLongest,
		MarketsParticipated: delta.ParticipationAdd,
		AverageBetSize:      delta.StakeAdd,
		ROI:                 decimal.Zero,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&row).Error
}

// GetUserStats retrieves the aggregate row for an address
func (r *Repository) GetUserStats(ctx context.Context, address string) (*models.UserStats, error) {
	var stats models.UserStats
	err := r.db.WithContext(ctx).Where("wallet_address = ?", address).First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListAllStats retrieves every aggregate row ordered by lifetime points
func (r *Repository) ListAllStats(ctx context.Context) ([]models.UserStats, error) {
	var stats []models.UserStats
	err := r.db.WithContext(ctx).Order("points DESC").Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// CountUsersWithMorePoints counts users strictly above the given point total
func (r *Repository) CountUsersWithMorePoints(ctx context.Context, points int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserStats{}).
		Where("points > ?", points).
		Count(&count).Error
	return count, err
}

// CreateActivity appends one immutable row to the activity trail
func (r *Repository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(activity).Error
}

// ListActivities retrieves a user's activity feed, newest first
func (r *Repository) ListActivities(ctx context.Context, address string, limit, offset int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("user_address = ?", address).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// ListActivitiesFor retrieves the full activity log for a candidate address set
func (r *Repository) ListActivitiesFor(ctx context.Context, addresses []string) ([]models.Activity, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("user_address IN ?", addresses).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// HasActivityInWindow reports whether the user already has an activity of the
// given type inside [from, to)
func (r *Repository) HasActivityInWindow(ctx context.Context, address string, activityType models.ActivityType, from, to time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("user_address = ? AND activity_type = ? AND created_at >= ? AND created_at < ?",
			address, activityType, from, to).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByAddress retrieves a user profile by wallet address
func (r *Repository) GetUserByAddress(ctx context.Context, address string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("wallet_address = ?", address).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsersByAddresses retrieves profiles for a set of wallet addresses
func (r *Repository) ListUsersByAddresses(ctx context.Context, addresses []string) ([]models.User, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).Where("wallet_address IN ?", addresses).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateComment creates a new comment
func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID retrieves a comment by ID
func (r *Repository) GetCommentByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Where("id = ?", commentID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments retrieves top-level comments for a market, newest first
func (r *Repository) ListComments(ctx context.Context, marketID *uint64, limit, offset int) ([]models.Comment, error) {
	query := r.db.WithContext(ctx).Where("parent_id IS NULL")
	if marketID != nil {
		query = query.Where("market_id = ?", *marketID)
	} else {
		query = query.Where("market_id IS NULL")
	}

	var comments []models.Comment
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListReplies retrieves the replies of a comment, oldest first
func (r *Repository) ListReplies(ctx context.Context, parentID uuid.UUID) ([]models.Comment, error) {
	var replies []models.Comment
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// UpdateComment saves edited comment content
func (r *Repository) UpdateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// DeleteComment removes a comment after cascading its reactions and replies
func (r *Repository) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentReaction{}).Error; err != nil {
			return err
		}

		var replyIDs []uuid.UUID
		if err := tx.Model(&models.Comment{}).
			Where("parent_id = ?", commentID).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			if err := tx.Where("comment_id IN ?", replyIDs).Delete(&models.CommentReaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("parent_id = ?", commentID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", commentID).Delete(&models.Comment{}).Error
	})
}

// GetReaction retrieves a user's reaction to a comment, nil when absent
func (r *Repository) GetReaction(ctx context.Context, commentID uuid.UUID, address string) (*models.CommentReaction, error) {
	var reaction models.CommentReaction
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_address = ?", commentID, address).
		First(&reaction).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CreateReaction inserts a new reaction row
func (r *Repository) CreateReaction(ctx context.Context, reaction *models.CommentReaction) error {
	if reaction.ID == uuid.Nil {
		reaction.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(reaction).Error
}

// UpdateReaction changes the type of an existing reaction in place
func (r *Repository) UpdateReaction(ctx context.Context, reaction *models.CommentReaction) error {
	return r.db.WithContext(ctx).Save(reaction).Error
}

// DeleteReaction removes a reaction row
func (r *Repository) DeleteReaction(ctx context.Context, reactionID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CommentReaction{}, "id = ?", reactionID).Error
}

// RecountReactions recomputes both counters from the reaction rows and writes
// them back. Counts are always derived, never incremented, so a retried or
// racing write cannot make the counters drift from the rows.
func (r *Repository) RecountReactions(ctx context.Context, commentID uuid.UUID) error {
	var likes, dislikes int64

	if err := r.db.WithContext(ctx).Model(&models.CommentReaction{}).
		Where("comment_id = ? AND reaction_type = ?", commentID, models.ReactionLike).
		Count(&likes).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&models.CommentReaction{}).
		Where("comment_id = ? AND reaction_type = ?", commentID, models.ReactionDislike).
		Count(&dislikes).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", commentID).
		Updates(map[string]interface{}{
			"likes_count":    likes,
			"dislikes_count": dislikes,
		}).Error
}
