package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	apperrors "papertrade/internal/errors"
	"papertrade/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// D parses a decimal literal, panicking on malformed input. Test helper only.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestUser creates a user with a hashed password, a unique username and
// email, an empty portfolio, and a 10000 starting balance.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithCash(t, db, D("10000"))
}

// CreateTestUserWithCash creates a user whose starting and current cash
// balance are both set to cash.
func CreateTestUserWithCash(t *testing.T, db *gorm.DB, cash decimal.Decimal) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Username:            fmt.Sprintf("user%d", n),
		Email:               fmt.Sprintf("user%d@test.com", n),
		Password:            string(hash),
		StartingCashBalance: cash,
		CurrentCashBalance:  cash,
		IsActive:            true,
		Portfolio:           &models.Portfolio{},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// TestLot describes one purchase lot for CreateTestPosition.
type TestLot struct {
	Quantity     int64
	Price        decimal.Decimal
	PurchaseDate time.Time
}

// CreateTestPosition creates a position with the given lots under the
// portfolio. TotalQuantity is derived from the lots.
func CreateTestPosition(t *testing.T, db *gorm.DB, portfolioID uint, symbol string, lots ...TestLot) *models.Position {
	t.Helper()

	position := &models.Position{
		PortfolioID: portfolioID,
		StockSymbol: symbol,
	}
	for _, lot := range lots {
		position.TotalQuantity += lot.Quantity
		position.PurchaseLots = append(position.PurchaseLots, models.PurchaseLot{
			Quantity:      lot.Quantity,
			PurchasePrice: lot.Price,
			PurchaseDate:  lot.PurchaseDate,
		})
	}
	if err := db.Create(position).Error; err != nil {
		t.Fatalf("failed to create test position: %v", err)
	}
	return position
}

// StaticPrices is a fixed in-memory price source for tests.
type StaticPrices map[string]decimal.Decimal

func (p StaticPrices) GetPrice(symbol string) (decimal.Decimal, error) {
	price, ok := p[symbol]
	if !ok {
		return decimal.Zero, apperrors.ErrSymbolNotFound
	}
	return price, nil
}
