package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the side of a trade.
type TradeType string

const (
	TradeTypeBuy  TradeType = "BUY"
	TradeTypeSell TradeType = "SELL"
)

// Trade is one executed buy or sell. Trades are an append-only history:
// they are never edited or deleted once written.
type Trade struct {
	Base
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	Type        TradeType       `gorm:"not null" json:"type"`
	StockSymbol string          `gorm:"not null" json:"stock_symbol"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	ExecutedAt  time.Time       `gorm:"index;not null" json:"executed_at"`
}
