package services

import (
	"testing"
	"time"

	apperrors "papertrade/internal/errors"
	"papertrade/internal/models"
	"papertrade/internal/store"
	"papertrade/internal/testutil"
)

func TestUpdateUserPortfolio(t *testing.T) {
	prices := testutil.StaticPrices{
		"AAPL": testutil.D("75"),
		"MSFT": testutil.D("30"),
	}
	service := NewPortfolioService(nil, prices)

	newUser := func() *models.User {
		return &models.User{
			StartingCashBalance: testutil.D("100"),
			CurrentCashBalance:  testutil.D("100"),
			Portfolio: &models.Portfolio{
				Positions: []models.Position{
					{StockSymbol: "AAPL", TotalQuantity: 1},
					{StockSymbol: "MSFT", TotalQuantity: 2},
				},
			},
		}
	}

	t.Run("computes value, net profit, and percentage return", func(t *testing.T) {
		user := newUser()

		testutil.AssertNoError(t, service.UpdateUserPortfolio(user))

		testutil.AssertDecimalEqual(t, user.Portfolio.Value, "135")
		testutil.AssertDecimalEqual(t, user.Portfolio.NetProfit, "135")
		testutil.AssertDecimalEqual(t, user.Portfolio.PercentageReturn, "135")
	})

	t.Run("recomputation is idempotent", func(t *testing.T) {
		user := newUser()

		testutil.AssertNoError(t, service.UpdateUserPortfolio(user))
		testutil.AssertNoError(t, service.UpdateUserPortfolio(user))

		testutil.AssertDecimalEqual(t, user.Portfolio.Value, "135")
		testutil.AssertDecimalEqual(t, user.Portfolio.NetProfit, "135")
	})

	t.Run("empty portfolio values to zero", func(t *testing.T) {
		user := &models.User{
			StartingCashBalance: testutil.D("100"),
			CurrentCashBalance:  testutil.D("80"),
			Portfolio:           &models.Portfolio{},
		}

		testutil.AssertNoError(t, service.UpdateUserPortfolio(user))

		testutil.AssertDecimalEqual(t, user.Portfolio.Value, "0")
		testutil.AssertDecimalEqual(t, user.Portfolio.NetProfit, "-20")
		testutil.AssertDecimalEqual(t, user.Portfolio.PercentageReturn, "-20")
	})

	t.Run("unknown symbol aborts and leaves cached values untouched", func(t *testing.T) {
		user := newUser()
		user.Portfolio.Value = testutil.D("42")
		user.Portfolio.NetProfit = testutil.D("7")
		user.Portfolio.Positions = append(user.Portfolio.Positions, models.Position{
			StockSymbol: "UNPRICED", TotalQuantity: 1,
		})

		err := service.UpdateUserPortfolio(user)
		testutil.AssertAppError(t, err, "SYMBOL_NOT_FOUND")

		testutil.AssertDecimalEqual(t, user.Portfolio.Value, "42")
		testutil.AssertDecimalEqual(t, user.Portfolio.NetProfit, "7")
	})

	t.Run("zero starting balance yields zero percentage return", func(t *testing.T) {
		user := &models.User{
			StartingCashBalance: testutil.D("0"),
			CurrentCashBalance:  testutil.D("50"),
			Portfolio:           &models.Portfolio{},
		}

		testutil.AssertNoError(t, service.UpdateUserPortfolio(user))

		testutil.AssertDecimalEqual(t, user.Portfolio.NetProfit, "50")
		testutil.AssertDecimalEqual(t, user.Portfolio.PercentageReturn, "0")
	})

	t.Run("portfolio not loaded", func(t *testing.T) {
		user := &models.User{StartingCashBalance: testutil.D("100")}

		err := service.UpdateUserPortfolio(user)
		testutil.AssertAppError(t, err, "PORTFOLIO_NOT_LOADED")
	})

	t.Run("nil user is a no-op", func(t *testing.T) {
		testutil.AssertNoError(t, service.UpdateUserPortfolio(nil))
	})
}

func TestGetUserPortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	st := store.New(db)
	prices := testutil.StaticPrices{"AAPL": testutil.D("200")}
	service := NewPortfolioService(st, prices)

	t.Run("loads, values, and persists the cache", func(t *testing.T) {
		user := testutil.CreateTestUserWithCash(t, db, testutil.D("1000"))
		testutil.CreateTestPosition(t, db, user.Portfolio.ID, "AAPL",
			testutil.TestLot{Quantity: 2, Price: testutil.D("150"), PurchaseDate: time.Now().UTC()},
		)

		loaded, err := service.GetUserPortfolio(user.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimalEqual(t, loaded.Portfolio.Value, "400")
		testutil.AssertDecimalEqual(t, loaded.Portfolio.NetProfit, "400")
		testutil.AssertDecimalEqual(t, loaded.Portfolio.PercentageReturn, "40")

		// The refreshed valuation must be persisted, not just in memory.
		var persisted models.Portfolio
		testutil.AssertNoError(t, db.First(&persisted, loaded.Portfolio.ID).Error)
		testutil.AssertDecimalEqual(t, persisted.Value, "400")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.GetUserPortfolio(987654)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("held symbol without a price fails the load", func(t *testing.T) {
		user := testutil.CreateTestUserWithCash(t, db, testutil.D("1000"))
		testutil.CreateTestPosition(t, db, user.Portfolio.ID, "UNPRICED",
			testutil.TestLot{Quantity: 1, Price: testutil.D("10"), PurchaseDate: time.Now().UTC()},
		)

		_, err := service.GetUserPortfolio(user.ID)
		testutil.AssertAppError(t, err, apperrors.ErrSymbolNotFound.Code)
	})
}
