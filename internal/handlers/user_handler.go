package handlers

import (
	"log"
	"net/http"
	"strconv"

	"pulse-markets/internal/auth"
	"pulse-markets/internal/models"
	"pulse-markets/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// UserHandler serves user stats, activity feeds and profile updates
type UserHandler struct {
	authService *services.AuthService
	points      *services.PointsService
	markets     *services.MarketService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *services.AuthService, points *services.PointsService, markets *services.MarketService) *UserHandler {
	return &UserHandler{
		authService: authService,
		points:      points,
		markets:     markets,
	}
}

// GetStats returns the aggregate stats for a wallet, with the on-chain stats
// record attached when the RPC node can serve it
// GET /api/users/:address/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	address := c.Param("address")

	stats, err := h.points.GetStats(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	response := gin.H{
		"success": true,
		"data":    stats,
	}
	if h.markets != nil {
		chain, err := h.markets.GetChainStats(c.Request.Context(), address)
		if err != nil {
			log.Printf("Warning: failed to fetch chain stats for %s: %v", address, err)
		} else {
			response["chain"] = chain
		}
	}

	c.JSON(http.StatusOK, response)
}

// RecordActivity awards points for an activity performed by the caller
// POST /api/users/:address/stats
func (h *UserHandler) RecordActivity(c *gin.Context) {
	caller, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	address := c.Param("address")
	if address != caller {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot record activity for another wallet"})
		return
	}

	var req struct {
		ActivityType string                 `json:"activity_type" binding:"required"`
		MarketID     *uint64                `json:"market_id"`
		BetAmount    string                 `json:"bet_amount"`
		Winnings     string                 `json:"winnings"`
		Losses       string                 `json:"losses"`
		Details      map[string]interface{} `json:"details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details := services.ActivityDetails{
		MarketID: req.MarketID,
		Extra:    req.Details,
	}
	details.BetAmount = parseAmount(req.BetAmount)
	details.Winnings = parseAmount(req.Winnings)
	details.Losses = parseAmount(req.Losses)

	activityType := models.ActivityType(req.ActivityType)

	var activity *models.Activity
	var err error
	if activityType == models.ActivityDailyLogin {
		activity, err = h.points.AwardDailyLogin(c.Request.Context(), address)
	} else {
		activity, err = h.points.AwardPoints(c.Request.Context(), address, activityType, details)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A nil activity means the daily bonus was already claimed today
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    activity,
		"awarded": activity != nil,
	})
}

// GetActivities returns a wallet's activity feed
// GET /api/users/:address/activities
func (h *UserHandler) GetActivities(c *gin.Context) {
	address := c.Param("address")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	activities, err := h.points.GetActivities(c.Request.Context(), address, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    activities,
		"count":   len(activities),
	})
}

// UpdateProfile edits the caller's profile fields
// PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Pointer fields distinguish "leave unchanged" (absent) from "clear" (empty string)
	var req struct {
		DisplayName     *string `json:"display_name"`
		Bio             *string `json:"bio"`
		ProfileImageURL *string `json:"profile_image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), address, req.DisplayName, req.Bio, req.ProfileImageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

func parseAmount(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
