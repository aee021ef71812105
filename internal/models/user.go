package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents the user model in the database. StartingCashBalance is
// fixed at registration; CurrentCashBalance moves with every trade and
// never goes negative.
type User struct {
	Base
	Username            string          `gorm:"uniqueIndex;not null" json:"username"`
	Email               string          `gorm:"uniqueIndex;not null" json:"email"`
	Password            string          `gorm:"not null" json:"-"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	StartingCashBalance decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"starting_cash_balance"`
	CurrentCashBalance  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"current_cash_balance"`
	IsActive            bool            `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string          `gorm:"size:64" json:"-"`
	FailedLoginAttempts int             `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time      `json:"-"`
	LastLoginAt         *time.Time      `json:"last_login_at,omitempty"`
	Portfolio           *Portfolio      `gorm:"foreignKey:UserID" json:"portfolio,omitempty"`
	Trades              []Trade         `gorm:"foreignKey:UserID" json:"trades,omitempty"`
}

// AddCash credits the user's balance. Returns false for non-positive
// amounts; crediting itself cannot fail.
func (u *User) AddCash(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}
	u.CurrentCashBalance = u.CurrentCashBalance.Add(amount)
	return true
}

// RemoveCash debits the user's balance. Returns false, without touching
// the balance, for non-positive amounts or amounts exceeding the current
// balance. This is the expected "insufficient funds" outcome on the buy
// path, not an error.
func (u *User) RemoveCash(amount decimal.Decimal) bool {
	if !amount.IsPositive() || amount.GreaterThan(u.CurrentCashBalance) {
		return false
	}
	u.CurrentCashBalance = u.CurrentCashBalance.Sub(amount)
	return true
}
