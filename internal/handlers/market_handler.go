package handlers

import (
	"net/http"
	"strconv"

	"pulse-markets/internal/auth"
	"pulse-markets/internal/models"
	"pulse-markets/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MarketHandler struct {
	markets *services.MarketService
}

func NewMarketHandler(markets *services.MarketService) *MarketHandler {
	return &MarketHandler{markets: markets}
}

// GetMarkets returns the market list with optional filtering and sorting
// GET /api/markets?search=&tab=&category=&status=&sort=
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	filter := services.MarketFilter{
		Search:   c.Query("search"),
		Tab:      services.MarketTab(c.DefaultQuery("tab", "all")),
		Category: models.MarketCategory(c.Query("category")),
		Status:   models.MarketStatus(c.Query("status")),
		SortBy:   services.MarketSort(c.Query("sort")),
	}

	markets := h.markets.ListMarkets(filter)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         markets,
		"count":        len(markets),
		"refreshed_at": h.markets.LastRefresh(),
	})
}

// GetMarketByID returns a specific market
// GET /api/markets/:id
func (h *MarketHandler) GetMarketByID(c *gin.Context) {
	marketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market id"})
		return
	}

	market, err := h.markets.GetMarket(c.Request.Context(), marketID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Market not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    market,
	})
}

// CreateMarket submits a signed create_market transaction
// POST /api/markets
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		SignedTx string `json:"signed_tx" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signature, err := h.markets.CreateMarket(c.Request.Context(), address, req.SignedTx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"transaction": signature,
	})
}

// PlaceBet submits a signed buy_shares transaction for a market
// POST /api/markets/:id/bets
func (h *MarketHandler) PlaceBet(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	marketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market id"})
		return
	}

	var req struct {
		Amount   string `json:"amount" binding:"required"`
		SignedTx string `json:"signed_tx" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bet amount"})
		return
	}

	signature, err := h.markets.PlaceBet(c.Request.Context(), address, marketID, amount, req.SignedTx)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": signature,
	})
}

// ResolveMarket submits a signed resolve_market transaction
// POST /api/markets/:id/resolve
func (h *MarketHandler) ResolveMarket(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	marketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market id"})
		return
	}

	var req struct {
		SignedTx string `json:"signed_tx" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signature, err := h.markets.ResolveMarket(c.Request.Context(), address, marketID, req.SignedTx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": signature,
	})
}

// ClaimWinnings submits a signed claim_winnings transaction
// POST /api/markets/:id/claim
func (h *MarketHandler) ClaimWinnings(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	marketID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid market id"})
		return
	}

	var req struct {
		Winnings string `json:"winnings" binding:"required"`
		SignedTx string `json:"signed_tx" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	winnings, err := decimal.NewFromString(req.Winnings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid winnings amount"})
		return
	}

	signature, err := h.markets.ClaimWinnings(c.Request.Context(), address, marketID, winnings, req.SignedTx)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": signature,
	})
}

// SubmitEvidence submits a signed submit_resolution_evidence transaction
// POST /api/markets/:id/evidence
func (h *MarketHandler) SubmitEvidence(c *gin.Context) {
	var req struct {
		SignedTx string `json:"signed_tx" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signature, err := h.markets.SubmitEvidence(c.Request.Context(), req.SignedTx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": signature,
	})
}

// BuildInstruction returns the parameters a wallet needs to build and sign a
// market program instruction before submitting it through the routes above
// POST /api/instructions
func (h *MarketHandler) BuildInstruction(c *gin.Context) {
	address, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Action      string `json:"action" binding:"required"`
		MarketID    uint64 `json:"market_id"`
		Option      string `json:"option"`
		Amount      string `json:"amount"`
		Title       string `json:"title"`
		OptionA     string `json:"option_a"`
		OptionB     string `json:"option_b"`
		EndTime     int64  `json:"end_time"`
		Outcome     string `json:"outcome"`
		EvidenceURI string `json:"evidence_uri"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var amount decimal.Decimal
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		amount = parsed
	}

	params, err := h.markets.BuildInstruction(c.Request.Context(), address, services.InstructionRequest{
		Action:      req.Action,
		MarketID:    req.MarketID,
		Option:      req.Option,
		Amount:      amount,
		Title:       req.Title,
		OptionA:     req.OptionA,
		OptionB:     req.OptionB,
		EndTime:     req.EndTime,
		Outcome:     req.Outcome,
		EvidenceURI: req.EvidenceURI,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    params,
	})
}

// CreateUserAccount submits a signed create_user_account transaction
// POST /api/users/account
func (h *MarketHandler) CreateUserAccount(c *gin.Context) {
	if _, exists := auth.GetWalletAddress(c); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		SignedTx string `json:"signed_tx" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signature, err := h.markets.CreateUserAccount(c.Request.Context(), req.SignedTx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"transaction": signature,
	})
}

// GetUserPositions returns a wallet's share holdings
// GET /api/positions/:address
func (h *MarketHandler) GetUserPositions(c *gin.Context) {
	address := c.Param("address")

	positions, err := h.markets.GetUserPositions(c.Request.Context(), address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch positions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    positions,
		"count":   len(positions),
	})
}
