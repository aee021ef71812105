package services

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "papertrade/internal/errors"
	"papertrade/internal/logger"
	"papertrade/internal/models"
	"papertrade/internal/pagination"
	"papertrade/internal/store"
)

// TradeService executes buy and sell trades against a user's portfolio.
// Trades for the same user are serialized by a per-user mutex, so each
// execution sees a consistent cash balance and lot state.
type TradeService struct {
	store     store.PortfolioStore
	prices    PriceSource
	valuation PortfolioServicer

	userLocks sync.Map
}

func NewTradeService(st store.PortfolioStore, prices PriceSource, valuation PortfolioServicer) *TradeService {
	return &TradeService{store: st, prices: prices, valuation: valuation}
}

func (s *TradeService) userLock(userID uint) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// tradeSnapshot captures the mutable portfolio state touched by a trade,
// so a persistence failure can restore the in-memory aggregate.
type tradeSnapshot struct {
	cash             decimal.Decimal
	position         *models.Position
	value            decimal.Decimal
	netProfit        decimal.Decimal
	percentageReturn decimal.Decimal
}

func takeSnapshot(user *models.User, position *models.Position) tradeSnapshot {
	return tradeSnapshot{
		cash:             user.CurrentCashBalance,
		position:         position.Clone(),
		value:            user.Portfolio.Value,
		netProfit:        user.Portfolio.NetProfit,
		percentageReturn: user.Portfolio.PercentageReturn,
	}
}

func (snap tradeSnapshot) restore(user *models.User, stockSymbol string) {
	user.CurrentCashBalance = snap.cash
	portfolio := user.Portfolio
	portfolio.Value = snap.value
	portfolio.NetProfit = snap.netProfit
	portfolio.PercentageReturn = snap.percentageReturn
	if snap.position == nil {
		portfolio.RemovePosition(stockSymbol)
	} else if current := portfolio.Position(stockSymbol); current != nil {
		*current = *snap.position
	}
}

// ExecuteBuyTrade purchases quantity shares of stockSymbol at the current
// price. Insufficient funds is a soft failure reported on the result, not
// an error.
func (s *TradeService) ExecuteBuyTrade(userID uint, stockSymbol string, quantity int64) (*TradeResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	price, err := s.prices.GetPrice(stockSymbol)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserWithPortfolio(userID)
	if err != nil {
		return nil, err
	}
	if user.Portfolio == nil {
		return nil, apperrors.ErrPortfolioNotLoaded
	}
	portfolio := user.Portfolio

	totalCost := price.Mul(decimal.NewFromInt(quantity))
	snap := takeSnapshot(user, portfolio.Position(stockSymbol))

	if !user.RemoveCash(totalCost) {
		logger.Get().Infow("buy rejected",
			"user_id", userID, "symbol", stockSymbol, "quantity", quantity,
			"total_cost", totalCost, "cash_balance", user.CurrentCashBalance,
			"reason", ReasonInsufficientFunds)
		return &TradeResult{
			Executed:         false,
			Reason:           ReasonInsufficientFunds,
			CashBalance:      user.CurrentCashBalance,
			PortfolioValue:   portfolio.Value,
			NetProfit:        portfolio.NetProfit,
			PercentageReturn: portfolio.PercentageReturn,
		}, nil
	}

	if err := portfolio.AddStocks(stockSymbol, quantity, price); err != nil {
		snap.restore(user, stockSymbol)
		return nil, err
	}
	isNewPosition := snap.position == nil
	position := portfolio.Position(stockSymbol)

	if err := s.valuation.UpdateUserPortfolio(user); err != nil {
		snap.restore(user, stockSymbol)
		return nil, err
	}

	trade := &models.Trade{
		UserID:      user.ID,
		Type:        models.TradeTypeBuy,
		StockSymbol: stockSymbol,
		Quantity:    quantity,
		Price:       price,
		ExecutedAt:  time.Now().UTC(),
	}

	err = s.store.Transaction(func(tx store.PortfolioStore) error {
		tradeID, err := tx.AppendTrade(trade)
		if err != nil {
			return err
		}
		if err := tx.UpdateUserCash(user); err != nil {
			return err
		}
		if isNewPosition {
			if err := tx.OpenPosition(position, portfolio.ID, tradeID); err != nil {
				return err
			}
		} else {
			if err := tx.UpdatePosition(position, portfolio.ID); err != nil {
				return err
			}
		}
		return tx.SaveValuation(portfolio)
	})
	if err != nil {
		snap.restore(user, stockSymbol)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("buy executed",
		"user_id", userID, "symbol", stockSymbol, "quantity", quantity,
		"price", price, "trade_id", trade.ID)

	return &TradeResult{
		Executed:         true,
		Trade:            trade,
		CashBalance:      user.CurrentCashBalance,
		PortfolioValue:   portfolio.Value,
		NetProfit:        portfolio.NetProfit,
		PercentageReturn: portfolio.PercentageReturn,
	}, nil
}

// ExecuteSellTrade sells quantity shares of stockSymbol at the current
// price, consuming purchase lots oldest first. Selling more than is held
// or a symbol with no position is a hard error.
func (s *TradeService) ExecuteSellTrade(userID uint, stockSymbol string, quantity int64) (*TradeResult, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	price, err := s.prices.GetPrice(stockSymbol)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserWithPortfolio(userID)
	if err != nil {
		return nil, err
	}
	if user.Portfolio == nil {
		return nil, apperrors.ErrPortfolioNotLoaded
	}
	portfolio := user.Portfolio

	snap := takeSnapshot(user, portfolio.Position(stockSymbol))

	if err := portfolio.RemoveStocks(stockSymbol, quantity); err != nil {
		return nil, err
	}

	proceeds := price.Mul(decimal.NewFromInt(quantity))
	if !user.AddCash(proceeds) {
		snap.restore(user, stockSymbol)
		logger.Get().Infow("sell rejected",
			"user_id", userID, "symbol", stockSymbol, "quantity", quantity,
			"proceeds", proceeds, "reason", ReasonInvalidTradeAmount)
		return &TradeResult{
			Executed:         false,
			Reason:           ReasonInvalidTradeAmount,
			CashBalance:      user.CurrentCashBalance,
			PortfolioValue:   portfolio.Value,
			NetProfit:        portfolio.NetProfit,
			PercentageReturn: portfolio.PercentageReturn,
		}, nil
	}

	position := portfolio.Position(stockSymbol)
	closed := position.TotalQuantity == 0

	if err := s.valuation.UpdateUserPortfolio(user); err != nil {
		snap.restore(user, stockSymbol)
		return nil, err
	}

	trade := &models.Trade{
		UserID:      user.ID,
		Type:        models.TradeTypeSell,
		StockSymbol: stockSymbol,
		Quantity:    quantity,
		Price:       price,
		ExecutedAt:  time.Now().UTC(),
	}

	err = s.store.Transaction(func(tx store.PortfolioStore) error {
		if _, err := tx.AppendTrade(trade); err != nil {
			return err
		}
		if err := tx.UpdateUserCash(user); err != nil {
			return err
		}
		if closed {
			if err := tx.ClosePosition(position, portfolio.ID); err != nil {
				return err
			}
		} else {
			if err := tx.UpdatePosition(position, portfolio.ID); err != nil {
				return err
			}
		}
		return tx.SaveValuation(portfolio)
	})
	if err != nil {
		snap.restore(user, stockSymbol)
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if closed {
		portfolio.RemovePosition(stockSymbol)
	}

	logger.Get().Infow("sell executed",
		"user_id", userID, "symbol", stockSymbol, "quantity", quantity,
		"price", price, "trade_id", trade.ID, "position_closed", closed)

	return &TradeResult{
		Executed:         true,
		Trade:            trade,
		CashBalance:      user.CurrentCashBalance,
		PortfolioValue:   portfolio.Value,
		NetProfit:        portfolio.NetProfit,
		PercentageReturn: portfolio.PercentageReturn,
	}, nil
}

// GetUserTrades returns the user's trade history, most recent first.
func (s *TradeService) GetUserTrades(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	return s.store.TradesForUser(userID, page)
}
