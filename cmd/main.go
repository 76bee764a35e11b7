package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"pulse-markets/internal/auth"
	"pulse-markets/internal/blockchain"
	"pulse-markets/internal/config"
	"pulse-markets/internal/database"
	"pulse-markets/internal/handlers"
	"pulse-markets/internal/jobs"
	"pulse-markets/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize blockchain boundary
	solanaClient := blockchain.NewSolanaClient(
		cfg.Solana.Network,
		cfg.Solana.TokenMintAddress,
		cfg.Solana.ServerWalletPrivateKey,
	)
	marketContract := blockchain.NewMarketContract(
		solanaClient,
		cfg.Solana.MarketProgramID,
		cfg.Solana.TokenMintAddress,
	)

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	pointsService := services.NewPointsService(database.GetDB())
	leaderboardService := services.NewLeaderboardService(database.GetDB())
	commentService := services.NewCommentService(database.GetDB())
	marketService := services.NewMarketService(database.GetDB(), marketContract)

	sessions := services.NewSessionManager(
		solanaClient,
		cfg.App.SessionTimeout,
		cfg.App.SessionSweep,
		cfg.App.BalanceInterval,
	)
	sessions.Start()

	challenges := services.NewChallengeStore()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, sessions, challenges, solanaClient)
	userHandler := handlers.NewUserHandler(authService, pointsService, marketService)
	marketHandler := handlers.NewMarketHandler(marketService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	commentHandler := handlers.NewCommentHandler(commentService)

	// Start market refresh job
	refreshJob := jobs.NewMarketRefreshJob(marketService)
	refreshJob.Start(cfg.App.MarketInterval)
	log.Println("Market refresh job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:3001",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"time":            time.Now().Format(time.RFC3339),
			"active_sessions": sessions.ActiveCount(),
		})
	})

	// Authentication routes (public)
	router.GET("/auth/challenge", authHandler.Challenge)
	router.POST("/auth/wallet", authHandler.WalletLogin)

	// Authenticated auth routes
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware(sessions))
	{
		authProtected.GET("/me", authHandler.GetMe)
		authProtected.POST("/logout", authHandler.Logout)
	}

	// Public market and leaderboard routes
	router.GET("/api/markets", marketHandler.GetMarkets)
	router.GET("/api/markets/:id", marketHandler.GetMarketByID)
	router.GET("/api/positions/:address", marketHandler.GetUserPositions)
	router.GET("/api/users/leaderboard", leaderboardHandler.GetLeaderboard)
	router.GET("/api/users/:address/rank", leaderboardHandler.GetUserRank)
	router.GET("/api/users/:address/stats", userHandler.GetStats)
	router.GET("/api/users/:address/activities", userHandler.GetActivities)
	router.GET("/api/comments", commentHandler.GetComments)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware(sessions))
	{
		// Market transactions
		api.POST("/markets", marketHandler.CreateMarket)
		api.POST("/markets/:id/bets", marketHandler.PlaceBet)
		api.POST("/markets/:id/resolve", marketHandler.ResolveMarket)
		api.POST("/markets/:id/claim", marketHandler.ClaimWinnings)
		api.POST("/markets/:id/evidence", marketHandler.SubmitEvidence)
		api.POST("/instructions", marketHandler.BuildInstruction)

		// User endpoints
		api.POST("/users/account", marketHandler.CreateUserAccount)
		api.POST("/users/:address/stats", userHandler.RecordActivity)
		api.PUT("/users/profile", userHandler.UpdateProfile)

		// Comment endpoints
		api.POST("/comments", commentHandler.AddComment)
		api.PUT("/comments/:id", commentHandler.UpdateComment)
		api.DELETE("/comments/:id", commentHandler.DeleteComment)
		api.POST("/comments/:id/react", commentHandler.ReactToComment)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	refreshJob.Stop()
	sessions.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
