package services

import (
	"github.com/shopspring/decimal"

	apperrors "papertrade/internal/errors"
	"papertrade/internal/models"
	"papertrade/internal/store"
)

var oneHundred = decimal.NewFromInt(100)

// PortfolioService computes portfolio valuations from current prices.
type PortfolioService struct {
	store  store.PortfolioStore
	prices PriceSource
}

func NewPortfolioService(st store.PortfolioStore, prices PriceSource) *PortfolioService {
	return &PortfolioService{store: st, prices: prices}
}

// UpdateUserPortfolio recomputes the cached value, net profit, and
// percentage return on the user's in-memory portfolio. If any held
// symbol has no current price the computation aborts and the cached
// values are left untouched.
func (s *PortfolioService) UpdateUserPortfolio(user *models.User) error {
	if user == nil {
		return nil
	}
	if user.Portfolio == nil {
		return apperrors.ErrPortfolioNotLoaded
	}

	portfolio := user.Portfolio
	value := decimal.Zero
	for i := range portfolio.Positions {
		position := &portfolio.Positions[i]
		price, err := s.prices.GetPrice(position.StockSymbol)
		if err != nil {
			return err
		}
		value = value.Add(price.Mul(decimal.NewFromInt(position.TotalQuantity)))
	}

	portfolio.Value = value
	portfolio.NetProfit = user.CurrentCashBalance.Add(value).Sub(user.StartingCashBalance)
	if user.StartingCashBalance.IsPositive() {
		portfolio.PercentageReturn = portfolio.NetProfit.Div(user.StartingCashBalance).Mul(oneHundred)
	} else {
		portfolio.PercentageReturn = decimal.Zero
	}
	return nil
}

// GetUserPortfolio loads the user's full portfolio aggregate, refreshes
// its valuation from current prices, and persists the refreshed cache.
func (s *PortfolioService) GetUserPortfolio(userID uint) (*models.User, error) {
	user, err := s.store.GetUserWithPortfolio(userID)
	if err != nil {
		return nil, err
	}
	if user.Portfolio == nil {
		return nil, apperrors.ErrPortfolioNotFound
	}
	if err := s.UpdateUserPortfolio(user); err != nil {
		return nil, err
	}
	if err := s.store.SaveValuation(user.Portfolio); err != nil {
		return nil, err
	}
	return user, nil
}
