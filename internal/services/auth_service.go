package services

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"pulse-markets/internal/models"
	"pulse-markets/internal/utils"
)

// AuthService handles authentication business logic
type AuthService struct {
	db     *gorm.DB
	points *PointsService
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		db:     db,
		points: NewPointsService(db),
	}
}

// ProcessWalletLogin finds or creates a user by wallet address. First login
// registers the user, assigns a generated username and awards registration
// points; every login claims the daily bonus (idempotent per UTC day).
func (s *AuthService) ProcessWalletLogin(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User

	result := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		username, err := utils.GenerateUsername()
		if err != nil {
			return nil, fmt.Errorf("failed to generate username: %w", err)
		}

		user = models.User{
			WalletAddress: walletAddress,
			Username:      username,
			DisplayName:   username,
		}

		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		if _, err := s.points.AwardPoints(ctx, walletAddress, models.ActivityRegistration, ActivityDetails{}); err != nil {
			log.Printf("Warning: failed to award registration points for %s: %v", walletAddress, err)
		}

		log.Printf("New user created: wallet=%s (ID: %d)", walletAddress, user.ID)
	} else if result.Error != nil {
		return nil, fmt.Errorf("database error: %w", result.Error)
	} else {
		log.Printf("User logged in: wallet=%s (ID: %d)", walletAddress, user.ID)
	}

	if _, err := s.points.AwardDailyLogin(ctx, walletAddress); err != nil {
		log.Printf("Warning: failed to award daily login for %s: %v", walletAddress, err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByAddress retrieves a user by wallet address
func (s *AuthService) GetUserByAddress(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the mutable profile fields of a user
func (s *AuthService) UpdateProfile(ctx context.Context, walletAddress string, displayName, bio, profileImageURL *string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	// nil leaves a field untouched; a pointer to "" clears it
	if displayName != nil {
		user.DisplayName = *displayName
	}
	if bio != nil {
		user.Bio = *bio
	}
	if profileImageURL != nil {
		user.ProfileImageURL = *profileImageURL
	}

	if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}
