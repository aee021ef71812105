package models

import (
	"github.com/shopspring/decimal"

	apperrors "papertrade/internal/errors"
)

// Portfolio is a user's full set of positions plus cached valuation
// metrics. Value, NetProfit, and PercentageReturn are derived fields
// recomputed by the valuation engine; they are a cache, not a source of
// truth, and are expected to go stale between recomputations.
// PercentageReturn is a ×100 percentage (35.0 means +35%).
type Portfolio struct {
	Base
	UserID           uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Value            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"value"`
	NetProfit        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"net_profit"`
	PercentageReturn decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"percentage_return"`
	Positions        []Position      `gorm:"foreignKey:PortfolioID" json:"positions,omitempty"`
}

// Position returns the position for the given symbol, or nil. Symbols are
// unique within a portfolio (enforced by a DB index and by AddStocks only
// ever creating a position when none exists).
func (p *Portfolio) Position(stockSymbol string) *Position {
	for i := range p.Positions {
		if p.Positions[i].StockSymbol == stockSymbol {
			return &p.Positions[i]
		}
	}
	return nil
}

// AddStocks buys into the position for the given symbol, creating an
// empty position first if none exists. It never fails on a missing
// position; it does fail on a non-positive quantity or price.
// It does not update the portfolio's cached valuation.
func (p *Portfolio) AddStocks(stockSymbol string, quantity int64, pricePerShare decimal.Decimal) error {
	position := p.Position(stockSymbol)
	if position == nil {
		p.Positions = append(p.Positions, Position{PortfolioID: p.ID, StockSymbol: stockSymbol})
		position = &p.Positions[len(p.Positions)-1]
	}
	return position.AddStocks(quantity, pricePerShare)
}

// RemoveStocks sells from the position for the given symbol. The caller
// is responsible for removing the position from the portfolio once its
// total quantity reaches zero; the trade service does that after
// persisting the close.
func (p *Portfolio) RemoveStocks(stockSymbol string, quantity int64) error {
	if len(p.Positions) == 0 {
		return apperrors.ErrNoPositions
	}
	position := p.Position(stockSymbol)
	if position == nil {
		return apperrors.ErrPositionNotFound
	}
	return position.RemoveStocks(quantity)
}

// RemovePosition drops the position for the given symbol from the
// portfolio. A later buy of the same symbol creates a fresh position; a
// closed position is never reopened.
func (p *Portfolio) RemovePosition(stockSymbol string) {
	for i := range p.Positions {
		if p.Positions[i].StockSymbol == stockSymbol {
			p.Positions = append(p.Positions[:i], p.Positions[i+1:]...)
			return
		}
	}
}
