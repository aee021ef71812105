package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLot is one acquisition batch of a stock: the unit of FIFO cost
// tracking. PurchasePrice and PurchaseDate are fixed at creation; only
// Quantity changes, decremented by the owning Position on sells. A lot
// whose quantity reaches zero is pruned from its position immediately.
type PurchaseLot struct {
	Base
	PositionID    uint            `gorm:"index;not null" json:"position_id"`
	TradeID       uint            `gorm:"index" json:"trade_id"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"purchase_price"`
	PurchaseDate  time.Time       `gorm:"not null" json:"purchase_date"`
}
