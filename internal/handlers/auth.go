package handlers

import (
	"crypto/ed25519"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"

	"pulse-markets/internal/auth"
	"pulse-markets/internal/blockchain"
	"pulse-markets/internal/services"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	sessions    *services.SessionManager
	challenges  *services.ChallengeStore
	solana      *blockchain.SolanaClient
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService, sessions *services.SessionManager, challenges *services.ChallengeStore, solana *blockchain.SolanaClient) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		challenges:  challenges,
		solana:      solana,
	}
}

// Challenge issues a single-use login nonce for a wallet. The wallet signs
// the returned message and presents the signature to WalletLogin.
// GET /auth/challenge?wallet_address=
func (h *AuthHandler) Challenge(c *gin.Context) {
	walletAddress := c.Query("wallet_address")
	if !h.solana.ValidateWalletAddress(walletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	nonce, err := h.challenges.Issue(walletAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":   nonce,
		"message": string(services.LoginMessage(nonce)),
	})
}

// WalletLogin authenticates a user by verifying an ed25519 signature over the
// challenge message issued for their wallet. Each nonce validates once.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"wallet_address" binding:"required"`
		Signature     string `json:"signature" binding:"required"`
		Nonce         string `json:"nonce" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.solana.ValidateWalletAddress(req.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	pubKey, err := base58.Decode(req.WalletAddress)
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid public key format"})
		return
	}

	// Wallets usually return the signature base58-encoded; some return hex
	sig, err := base58.Decode(req.Signature)
	if err != nil {
		sig, err = hex.DecodeString(req.Signature)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature format"})
			return
		}
	}
	if len(sig) != ed25519.SignatureSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature format"})
		return
	}

	if !ed25519.Verify(pubKey, services.LoginMessage(req.Nonce), sig) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	// Consume only after the signature checks out; a second use of the same
	// nonce fails here
	if !h.challenges.Consume(req.WalletAddress, req.Nonce) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired nonce"})
		return
	}

	user, err := h.authService.ProcessWalletLogin(c.Request.Context(), req.WalletAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.WalletAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	session := h.sessions.Begin(user.WalletAddress)

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user":    user,
		"session": session,
	})
}

// Logout ends the server-side session; balance polling for the wallet stops
// with it.
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if address, ok := auth.GetWalletAddress(c); ok {
		h.sessions.End(address)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully logged out",
	})
}

// GetMe returns the currently authenticated user's profile plus session state
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	response := gin.H{"user": user}
	if session, remaining, ok := h.sessions.Get(user.WalletAddress); ok {
		response["session"] = session
		response["session_remaining_seconds"] = int(remaining.Seconds())
	}

	c.JSON(http.StatusOK, response)
}
