package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	apperrors "papertrade/internal/errors"
)

// Position is the aggregate holding of one stock symbol within a
// portfolio: a total quantity plus the purchase lots that make it up.
// Invariant: TotalQuantity always equals the sum of lot quantities.
type Position struct {
	Base
	PortfolioID   uint          `gorm:"index:idx_position_portfolio_symbol,unique;not null" json:"portfolio_id"`
	StockSymbol   string        `gorm:"index:idx_position_portfolio_symbol,unique;not null" json:"stock_symbol"`
	TotalQuantity int64         `gorm:"not null" json:"total_quantity"`
	PurchaseLots  []PurchaseLot `gorm:"foreignKey:PositionID" json:"purchase_lots,omitempty"`
}

// AddStocks records a purchase of the given quantity at the given price
// per share as a new lot dated now. It does not touch market value; that
// is the valuation engine's job.
func (p *Position) AddStocks(quantity int64, pricePerShare decimal.Decimal) error {
	if quantity <= 0 || !pricePerShare.IsPositive() {
		return apperrors.ErrInvalidLot
	}

	p.PurchaseLots = append(p.PurchaseLots, PurchaseLot{
		PositionID:    p.ID,
		Quantity:      quantity,
		PurchasePrice: pricePerShare,
		PurchaseDate:  time.Now().UTC(),
	})
	p.TotalQuantity += quantity
	return nil
}

// RemoveStocks sells the given quantity using FIFO: oldest lots are
// consumed first, ties broken by ascending lot id. Fully consumed lots
// are pruned. On error the position is left unchanged.
func (p *Position) RemoveStocks(quantity int64) error {
	if len(p.PurchaseLots) == 0 || quantity <= 0 || quantity > p.TotalQuantity {
		return apperrors.ErrInvalidQuantity
	}

	// Walk the lots oldest first without disturbing their stored order.
	oldestFirst := make([]*PurchaseLot, len(p.PurchaseLots))
	for i := range p.PurchaseLots {
		oldestFirst[i] = &p.PurchaseLots[i]
	}
	sort.SliceStable(oldestFirst, func(i, j int) bool {
		if oldestFirst[i].PurchaseDate.Equal(oldestFirst[j].PurchaseDate) {
			return oldestFirst[i].ID < oldestFirst[j].ID
		}
		return oldestFirst[i].PurchaseDate.Before(oldestFirst[j].PurchaseDate)
	})

	remaining := quantity
	for _, lot := range oldestFirst {
		if remaining <= 0 {
			break
		}
		if lot.Quantity <= remaining {
			remaining -= lot.Quantity
			lot.Quantity = 0
		} else {
			lot.Quantity -= remaining
			remaining = 0
		}
	}

	kept := make([]PurchaseLot, 0, len(p.PurchaseLots))
	for _, lot := range p.PurchaseLots {
		if lot.Quantity > 0 {
			kept = append(kept, lot)
		}
	}
	p.PurchaseLots = kept
	p.TotalQuantity -= quantity
	return nil
}

// CostBasis returns the total acquisition cost of the remaining lots.
func (p *Position) CostBasis() decimal.Decimal {
	cost := decimal.Zero
	for _, lot := range p.PurchaseLots {
		cost = cost.Add(lot.PurchasePrice.Mul(decimal.NewFromInt(lot.Quantity)))
	}
	return cost
}

// Clone returns a deep copy, used by the trade service to snapshot a
// position before mutating it so persistence failures can roll back.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	cp := *p
	cp.PurchaseLots = make([]PurchaseLot, len(p.PurchaseLots))
	copy(cp.PurchaseLots, p.PurchaseLots)
	return &cp
}
