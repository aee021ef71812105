package services

import (
	"github.com/shopspring/decimal"

	"papertrade/internal/models"
	"papertrade/internal/pagination"
)

// PriceSource is the read-only lookup of current market prices injected
// into the valuation and trade services. Implementations must be safe for
// concurrent readers.
type PriceSource interface {
	GetPrice(symbol string) (decimal.Decimal, error)
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password, firstName, lastName string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(username, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// PortfolioServicer defines the contract for portfolio valuation.
type PortfolioServicer interface {
	// UpdateUserPortfolio recomputes the portfolio's cached value, net
	// profit, and percentage return from current prices, in memory only.
	UpdateUserPortfolio(user *models.User) error
	// GetUserPortfolio loads a user's full portfolio aggregate, refreshes
	// its valuation, and persists the refreshed cache.
	GetUserPortfolio(userID uint) (*models.User, error)
}

// Reasons a trade completes without executing. These are expected
// user-facing outcomes, deliberately not part of the error taxonomy.
const (
	ReasonInsufficientFunds  = "INSUFFICIENT_FUNDS"
	ReasonInvalidTradeAmount = "INVALID_TRADE_AMOUNT"
)

// TradeResult reports the outcome of a buy or sell. Executed false with a
// Reason is a clean rejection (soft failure); hard failures surface as
// errors instead.
type TradeResult struct {
	Executed         bool            `json:"executed"`
	Reason           string          `json:"reason,omitempty"`
	Trade            *models.Trade   `json:"trade,omitempty"`
	CashBalance      decimal.Decimal `json:"cash_balance"`
	PortfolioValue   decimal.Decimal `json:"portfolio_value"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	PercentageReturn decimal.Decimal `json:"percentage_return"`
}

// TradeServicer defines the contract for trade execution.
type TradeServicer interface {
	ExecuteBuyTrade(userID uint, stockSymbol string, quantity int64) (*TradeResult, error)
	ExecuteSellTrade(userID uint, stockSymbol string, quantity int64) (*TradeResult, error)
	GetUserTrades(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error)
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank             int             `json:"rank"`
	UserID           uint            `json:"user_id"`
	Username         string          `json:"username"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	StartingBalance  decimal.Decimal `json:"starting_balance"`
	TotalValue       decimal.Decimal `json:"total_value"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	PercentageReturn decimal.Decimal `json:"percentage_return"`
}

// LeaderboardServicer defines the contract for user rankings.
type LeaderboardServicer interface {
	GetLeaderboard(page pagination.PageRequest) (*pagination.PageResponse[LeaderboardEntry], error)
	GetUserRank(userID uint) (*LeaderboardEntry, error)
}
