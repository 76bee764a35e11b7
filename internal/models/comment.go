package models

import (
	"time"

	"github.com/google/uuid"
)

type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// Comment represents a comment on a market (or a global discussion comment
// when MarketID is nil). ParentID links one level of threaded replies.
// LikesCount/DislikesCount are always recomputed from comment_reactions rows,
// never incremented in place.
type Comment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	UserAddress   string     `gorm:"size:64;not null;index" json:"user_address"`
	MarketID      *uint64    `gorm:"index" json:"market_id,omitempty"`
	ParentID      *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	LikesCount    int        `gorm:"not null;default:0" json:"likes_count"`
	DislikesCount int        `gorm:"not null;default:0" json:"dislikes_count"`
	Edited        bool       `gorm:"not null;default:false" json:"edited"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Comment model
func (Comment) TableName() string {
	return "comments"
}

// CommentReaction records a single user's reaction to a comment.
// At most one row per (comment, user); changing reaction type updates the
// existing row rather than inserting a duplicate.
type CommentReaction struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CommentID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_comment_user" json:"comment_id"`
	UserAddress  string       `gorm:"size:64;not null;uniqueIndex:idx_comment_user" json:"user_address"`
	ReactionType ReactionType `gorm:"size:10;not null" json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TableName specifies the table name for CommentReaction model
func (CommentReaction) TableName() string {
	return "comment_reactions"
}
