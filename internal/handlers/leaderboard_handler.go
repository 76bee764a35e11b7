package handlers

import (
	"net/http"
	"strconv"

	"pulse-markets/internal/services"

	"github.com/gin-gonic/gin"
)

// LeaderboardHandler serves ranked user lists
type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler
func NewLeaderboardHandler(leaderboard *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// GetLeaderboard returns the ranked list for a timeframe and category
// GET /api/users/leaderboard?timeframe=&category=&limit=
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	timeframe := services.LeaderboardTimeframe(c.DefaultQuery("timeframe", "all"))
	category := services.LeaderboardCategory(c.DefaultQuery("category", "points"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.leaderboard.GetLeaderboard(c.Request.Context(), timeframe, category, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
		"count":   len(entries),
	})
}

// GetUserRank returns a wallet's position by lifetime points
// GET /api/users/:address/rank
func (h *LeaderboardHandler) GetUserRank(c *gin.Context) {
	address := c.Param("address")

	rank, err := h.leaderboard.GetUserRank(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rank,
	})
}
