package handlers

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/mr-tron/base58"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pulse-markets/internal/auth"
	"pulse-markets/internal/blockchain"
	"pulse-markets/internal/models"
	"pulse-markets/internal/services"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *services.ChallengeStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UserStats{}, &models.Activity{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	auth.InitJWT("test-secret")

	authService := services.NewAuthService(db)
	sessions := services.NewSessionManager(nil, time.Hour, time.Minute, time.Minute)
	challenges := services.NewChallengeStore()
	solanaClient := blockchain.NewSolanaClient("devnet", "", "")

	handler := NewAuthHandler(authService, sessions, challenges, solanaClient)

	router := gin.New()
	router.GET("/auth/challenge", handler.Challenge)
	router.POST("/auth/wallet", handler.WalletLogin)
	return router, challenges
}

func postLogin(t *testing.T, router *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/wallet", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWalletLoginRejectsMalformedAddress(t *testing.T) {
	router, _ := setupAuthRouter(t)

	// 34 base58 characters decode to fewer than 32 bytes; the handler must
	// answer 400 rather than let the short key reach signature verification
	w := postLogin(t, router, map[string]string{
		"wallet_address": strings.Repeat("2", 34),
		"signature":      strings.Repeat("3", 88),
		"nonce":          "whatever",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed address, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWalletLoginRejectsShortSignature(t *testing.T) {
	router, challenges := setupAuthRouter(t)

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	wallet := base58.Encode(pub)

	nonce, err := challenges.Issue(wallet)
	if err != nil {
		t.Fatalf("failed to issue nonce: %v", err)
	}

	w := postLogin(t, router, map[string]string{
		"wallet_address": wallet,
		"signature":      base58.Encode([]byte("too short")),
		"nonce":          nonce,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short signature, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWalletLoginFlow(t *testing.T) {
	router, _ := setupAuthRouter(t)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	wallet := base58.Encode(pub)

	// Fetch a challenge
	req := httptest.NewRequest(http.MethodGet, "/auth/challenge?wallet_address="+wallet, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("challenge request failed: %d: %s", w.Code, w.Body.String())
	}
	var challengeResp struct {
		Nonce string `json:"nonce"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &challengeResp); err != nil {
		t.Fatalf("failed to decode challenge response: %v", err)
	}
	if challengeResp.Nonce == "" {
		t.Fatal("expected a nonce in the challenge response")
	}

	// Sign it and log in
	sig := ed25519.Sign(priv, services.LoginMessage(challengeResp.Nonce))
	login := map[string]string{
		"wallet_address": wallet,
		"signature":      base58.Encode(sig),
		"nonce":          challengeResp.Nonce,
	}
	w = postLogin(t, router, login)
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d: %s", w.Code, w.Body.String())
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if loginResp.Token == "" {
		t.Error("expected a token in the login response")
	}

	// The same signed message must not authenticate twice
	w = postLogin(t, router, login)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 on nonce reuse, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWalletLoginRejectsWrongSigner(t *testing.T) {
	router, challenges := setupAuthRouter(t)

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	wallet := base58.Encode(pub)

	nonce, err := challenges.Issue(wallet)
	if err != nil {
		t.Fatalf("failed to issue nonce: %v", err)
	}

	sig := ed25519.Sign(otherPriv, services.LoginMessage(nonce))
	w := postLogin(t, router, map[string]string{
		"wallet_address": wallet,
		"signature":      base58.Encode(sig),
		"nonce":          nonce,
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for a signature by another key, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChallengeRejectsInvalidAddress(t *testing.T) {
	router, _ := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/challenge?wallet_address=not-base58!", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid address, got %d: %s", w.Code, w.Body.String())
	}
}
