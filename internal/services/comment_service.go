package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"pulse-markets/internal/models"
	"pulse-markets/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxCommentLength = 2000

// CommentService handles threaded comment CRUD and reaction bookkeeping
type CommentService struct {
	db     *gorm.DB
	repo   *repository.Repository
	points *PointsService
}

// NewCommentService creates a new CommentService
func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		db:     db,
		repo:   repository.NewRepository(db),
		points: NewPointsService(db),
	}
}

// CommentWithReplies bundles a top-level comment with its reply thread
type CommentWithReplies struct {
	models.Comment
	Replies []models.Comment `json:"replies"`
}

// AddComment creates a comment. Replies are limited to one level: replying to
// a reply is rejected before any write.
func (s *CommentService) AddComment(ctx context.Context, address, content string, marketID *uint64, parentID *uuid.UUID) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}
	if len(content) > maxCommentLength {
		return nil, fmt.Errorf("comment exceeds %d characters", maxCommentLength)
	}

	if parentID != nil {
		parent, err := s.repo.GetCommentByID(ctx, *parentID)
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("parent comment not found")
		}
		if err != nil {
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, fmt.Errorf("replies are limited to one level")
		}
		// Replies always live on the parent's market
		marketID = parent.MarketID
	}

	comment := &models.Comment{
		Content:     content,
		UserAddress: address,
		MarketID:    marketID,
		ParentID:    parentID,
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	// Comment points are best-effort; a failed award must not undo the comment
	if _, err := s.points.AwardPoints(ctx, address, models.ActivityComment, ActivityDetails{MarketID: marketID}); err != nil {
		log.Printf("Warning: failed to award comment points for %s: %v", address, err)
	}

	return comment, nil
}

// GetComments returns top-level comments for a market with their replies
func (s *CommentService) GetComments(ctx context.Context, marketID *uint64, limit, offset int) ([]CommentWithReplies, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	comments, err := s.repo.ListComments(ctx, marketID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	result := make([]CommentWithReplies, 0, len(comments))
	for _, comment := range comments {
		replies, err := s.repo.ListReplies(ctx, comment.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load replies: %w", err)
		}
		result = append(result, CommentWithReplies{Comment: comment, Replies: replies})
	}

	return result, nil
}

// UpdateComment edits a comment's content. Author only.
func (s *CommentService) UpdateComment(ctx context.Context, commentID uuid.UUID, address, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}
	if len(content) > maxCommentLength {
		return nil, fmt.Errorf("comment exceeds %d characters", maxCommentLength)
	}

	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("comment not found")
	}
	if err != nil {
		return nil, err
	}
	if comment.UserAddress != address {
		return nil, fmt.Errorf("only the author can edit a comment")
	}

	comment.Content = content
	comment.Edited = true
	comment.UpdatedAt = time.Now()

	if err := s.repo.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment, its reactions and its replies. Author only.
func (s *CommentService) DeleteComment(ctx context.Context, commentID uuid.UUID, address string) error {
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("comment not found")
	}
	if err != nil {
		return err
	}
	if comment.UserAddress != address {
		return fmt.Errorf("only the author can delete a comment")
	}

	return s.repo.DeleteComment(ctx, commentID)
}

// ReactToComment applies toggle semantics: the same reaction again removes
// it, a different one overwrites it, a first reaction inserts it. Counters
// are recomputed from rows after every mutation.
func (s *CommentService) ReactToComment(ctx context.Context, commentID uuid.UUID, address string, reactionType models.ReactionType) (*models.Comment, error) {
	if reactionType != models.ReactionLike && reactionType != models.ReactionDislike {
		return nil, fmt.Errorf("invalid reaction type: %s", reactionType)
	}

	if _, err := s.repo.GetCommentByID(ctx, commentID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("comment not found")
		}
		return nil, err
	}

	existing, err := s.repo.GetReaction(ctx, commentID, address)
	if err != nil {
		return nil, err
	}

	switch {
	case existing == nil:
		reaction := &models.CommentReaction{
			CommentID:    commentID,
			UserAddress:  address,
			ReactionType: reactionType,
		}
		if err := s.repo.CreateReaction(ctx, reaction); err != nil {
			return nil, fmt.Errorf("failed to add reaction: %w", err)
		}
	case existing.ReactionType == reactionType:
		if err := s.repo.DeleteReaction(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to remove reaction: %w", err)
		}
	default:
		existing.ReactionType = reactionType
		if err := s.repo.UpdateReaction(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to change reaction: %w", err)
		}
	}

	if err := s.repo.RecountReactions(ctx, commentID); err != nil {
		return nil, fmt.Errorf("failed to recount reactions: %w", err)
	}

	return s.repo.GetCommentByID(ctx, commentID)
}
