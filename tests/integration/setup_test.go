package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"papertrade/internal/handlers"
	"papertrade/internal/logger"
	"papertrade/internal/middleware"
	"papertrade/internal/models"
	"papertrade/internal/prices"
	"papertrade/internal/services"
	"papertrade/internal/store"
	"papertrade/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Prices *prices.Table
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

// userCounter keeps registered usernames unique across tests.
var userCounter atomic.Int64

const startingCash = "10000"

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Portfolio{},
		&models.Position{},
		&models.PurchaseLot{},
		&models.Trade{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite database and a static price table.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	priceTable := prices.NewTable([]string{"AAPL", "MSFT", "GOOGL"})
	priceTable.Set("AAPL", decimal.NewFromInt(150))
	priceTable.Set("MSFT", decimal.NewFromInt(300))
	priceTable.Set("GOOGL", decimal.NewFromInt(100))

	portfolioStore := store.New(db)
	userService := services.NewUserService(db, decimal.RequireFromString(startingCash))
	portfolioService := services.NewPortfolioService(portfolioStore, priceTable)
	tradeService := services.NewTradeService(portfolioStore, priceTable, portfolioService)
	leaderboardService := services.NewLeaderboardService(portfolioStore, priceTable)

	authHandler := handlers.NewAuthHandler(userService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	stockHandler := handlers.NewStockHandler(priceTable)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/portfolio", portfolioHandler.GetPortfolio)

	trades := protected.Group("/trades")
	trades.POST("/buy", tradeHandler.Buy)
	trades.POST("/sell", tradeHandler.Sell)
	trades.GET("", tradeHandler.GetTrades)

	stocks := protected.Group("/stocks")
	stocks.GET("", stockHandler.ListStocks)
	stocks.GET("/:symbol", stockHandler.GetStock)

	leaderboard := protected.Group("/leaderboard")
	leaderboard.GET("", leaderboardHandler.GetLeaderboard)
	leaderboard.GET("/me", leaderboardHandler.GetMyRank)

	return &testApp{DB: db, Prices: priceTable, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token and username.
func (app *testApp) registerUser(t *testing.T) (accessToken, username string) {
	t.Helper()
	n := userCounter.Add(1)
	username = fmt.Sprintf("trader%d", n)
	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"password123","first_name":"Test","last_name":"User"}`,
		username, username)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), username
}

// buy executes a buy order and fails the test unless it executes.
func (app *testApp) buy(t *testing.T, token, symbol string, quantity int64) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"stock_symbol":%q,"quantity":%d}`, symbol, quantity)
	rec := app.request("POST", "/api/v1/trades/buy", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("buy failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

// sell executes a sell order and fails the test unless it executes.
func (app *testApp) sell(t *testing.T, token, symbol string, quantity int64) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{"stock_symbol":%q,"quantity":%d}`, symbol, quantity)
	rec := app.request("POST", "/api/v1/trades/sell", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("sell failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}
