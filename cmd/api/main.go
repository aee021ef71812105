package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"papertrade/internal/config"
	"papertrade/internal/database"
	"papertrade/internal/handlers"
	"papertrade/internal/logger"
	"papertrade/internal/middleware"
	"papertrade/internal/prices"
	"papertrade/internal/services"
	"papertrade/internal/store"
	"papertrade/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "papertrade/internal/docs" // Import swagger docs
)

// @title           Papertrade API
// @version         1.0
// @description     Papertrade is a paper trading simulator where users buy and sell stocks at live market prices with virtual cash and compete on percentage returns.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Start the price feed. Bootstrap fetches an initial quote per tracked
	// symbol so trades can execute before the stream delivers its first tick.
	ctx := context.Background()
	priceTable := prices.NewTable(appConfig.PriceSymbols)
	feed := prices.NewFeed(priceTable, appConfig.FinnhubToken, appConfig.FinnhubWSURL)
	if err := feed.Bootstrap(ctx); err != nil {
		log.Warnf("Price bootstrap incomplete: %v", err)
	}
	go feed.Run(ctx)

	// Initialize services
	db := dbManager.DB()
	portfolioStore := store.New(db)
	userService := services.NewUserService(db, appConfig.StartingCashBalance)
	portfolioService := services.NewPortfolioService(portfolioStore, priceTable)
	tradeService := services.NewTradeService(portfolioStore, priceTable, portfolioService)
	leaderboardService := services.NewLeaderboardService(portfolioStore, priceTable)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	stockHandler := handlers.NewStockHandler(priceTable)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Portfolio routes
	protected.GET("/portfolio", portfolioHandler.GetPortfolio)

	// Trade routes
	trades := protected.Group("/trades")
	trades.POST("/buy", tradeHandler.Buy)
	trades.POST("/sell", tradeHandler.Sell)
	trades.GET("", tradeHandler.GetTrades)

	// Stock routes
	stocks := protected.Group("/stocks")
	stocks.GET("", stockHandler.ListStocks)
	stocks.GET("/:symbol", stockHandler.GetStock)

	// Leaderboard routes
	leaderboard := protected.Group("/leaderboard")
	leaderboard.GET("", leaderboardHandler.GetLeaderboard)
	leaderboard.GET("/me", leaderboardHandler.GetMyRank)

	log.Infof("Starting Papertrade backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
