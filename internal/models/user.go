package models

import (
	"time"
)

// User represents a user profile keyed by wallet address
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	WalletAddress   string    `gorm:"uniqueIndex;not null" json:"wallet_address"`
	Username        string    `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName     string    `gorm:"size:255" json:"display_name"`
	Bio             string    `gorm:"type:text" json:"bio"`
	ProfileImageURL string    `gorm:"size:500" json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
