package services

import (
	"sort"

	"github.com/shopspring/decimal"

	apperrors "papertrade/internal/errors"
	"papertrade/internal/logger"
	"papertrade/internal/pagination"
	"papertrade/internal/store"
)

// LeaderboardService ranks active users by percentage return. Rankings
// are best effort: a held symbol with no current price is skipped rather
// than failing the whole board.
type LeaderboardService struct {
	store  store.PortfolioStore
	prices PriceSource
}

func NewLeaderboardService(st store.PortfolioStore, prices PriceSource) *LeaderboardService {
	return &LeaderboardService{store: st, prices: prices}
}

func (s *LeaderboardService) buildEntries() ([]LeaderboardEntry, error) {
	users, err := s.store.ListActiveUsers()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i := range users {
		user := &users[i]
		totalValue := user.CurrentCashBalance
		if user.Portfolio != nil {
			for j := range user.Portfolio.Positions {
				position := &user.Portfolio.Positions[j]
				price, err := s.prices.GetPrice(position.StockSymbol)
				if err != nil {
					logger.Get().Warnw("skipping unpriced position in leaderboard",
						"user_id", user.ID, "symbol", position.StockSymbol)
					continue
				}
				totalValue = totalValue.Add(price.Mul(decimal.NewFromInt(position.TotalQuantity)))
			}
		}

		netProfit := totalValue.Sub(user.StartingCashBalance)
		percentageReturn := decimal.Zero
		if user.StartingCashBalance.IsPositive() {
			percentageReturn = netProfit.Div(user.StartingCashBalance).Mul(oneHundred)
		}

		entries = append(entries, LeaderboardEntry{
			UserID:           user.ID,
			Username:         user.Username,
			FirstName:        user.FirstName,
			LastName:         user.LastName,
			StartingBalance:  user.StartingCashBalance,
			TotalValue:       totalValue,
			NetProfit:        netProfit,
			PercentageReturn: percentageReturn,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].PercentageReturn.Equal(entries[j].PercentageReturn) {
			return entries[i].PercentageReturn.GreaterThan(entries[j].PercentageReturn)
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *LeaderboardService) GetLeaderboard(page pagination.PageRequest) (*pagination.PageResponse[LeaderboardEntry], error) {
	page.Defaults()
	entries, err := s.buildEntries()
	if err != nil {
		return nil, err
	}
	resp := pagination.Slice(entries, page)
	return &resp, nil
}

func (s *LeaderboardService) GetUserRank(userID uint) (*LeaderboardEntry, error) {
	entries, err := s.buildEntries()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].UserID == userID {
			return &entries[i], nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}
