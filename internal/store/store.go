// Package store implements the persistence boundary for portfolio
// aggregates over GORM. The trade service stages all in-memory mutations
// first and commits them through Transaction so a trade's cash, position,
// trade-log, and valuation writes land atomically.
package store

import (
	"errors"

	"gorm.io/gorm"

	apperrors "papertrade/internal/errors"
	"papertrade/internal/models"
	"papertrade/internal/pagination"
)

// PortfolioStore is the persistence contract consumed by the services.
type PortfolioStore interface {
	GetUserWithPortfolio(userID uint) (*models.User, error)
	LoadPortfolio(userID uint) (*models.Portfolio, error)
	ListActiveUsers() ([]models.User, error)

	OpenPosition(position *models.Position, portfolioID, tradeID uint) error
	UpdatePosition(position *models.Position, portfolioID uint) error
	ClosePosition(position *models.Position, portfolioID uint) error

	UpdateUserCash(user *models.User) error
	AppendTrade(trade *models.Trade) (uint, error)
	TradesForUser(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error)
	SaveValuation(portfolio *models.Portfolio) error

	// Transaction runs fn against a store bound to a database
	// transaction; fn returning an error rolls everything back.
	Transaction(fn func(tx PortfolioStore) error) error
}

type gormStore struct {
	db *gorm.DB
}

// New creates a PortfolioStore backed by the given database.
func New(db *gorm.DB) PortfolioStore {
	return &gormStore{db: db}
}

// GetUserWithPortfolio loads a user with their portfolio, positions, and
// purchase lots, the full aggregate trade execution operates on.
func (s *gormStore) GetUserWithPortfolio(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Portfolio.Positions.PurchaseLots").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// LoadPortfolio loads a user's portfolio with positions and lots.
func (s *gormStore) LoadPortfolio(userID uint) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := s.db.Preload("Positions.PurchaseLots").Where("user_id = ?", userID).First(&portfolio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPortfolioNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &portfolio, nil
}

// ListActiveUsers returns all active users with their portfolios and
// positions loaded (no lots; the leaderboard only needs quantities).
func (s *gormStore) ListActiveUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Preload("Portfolio.Positions").Where("is_active = ?", true).Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return users, nil
}

// OpenPosition inserts a brand-new position and its lots, tagging each lot
// with the trade that opened it.
func (s *gormStore) OpenPosition(position *models.Position, portfolioID, tradeID uint) error {
	position.PortfolioID = portfolioID
	for i := range position.PurchaseLots {
		position.PurchaseLots[i].ID = 0
		position.PurchaseLots[i].TradeID = tradeID
	}
	if err := s.db.Create(position).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdatePosition writes the position's quantity and fully replaces its
// lots. Replacement (rather than per-lot diffing) mirrors how the FIFO
// walk rewrites the in-memory lot list; regenerated lot ids stay in
// insertion order, which keeps the FIFO tie-break deterministic.
func (s *gormStore) UpdatePosition(position *models.Position, portfolioID uint) error {
	if err := s.db.Model(&models.Position{}).Where("id = ? AND portfolio_id = ?", position.ID, portfolioID).
		Update("total_quantity", position.TotalQuantity).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Where("position_id = ?", position.ID).Delete(&models.PurchaseLot{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range position.PurchaseLots {
		position.PurchaseLots[i].ID = 0
		position.PurchaseLots[i].PositionID = position.ID
	}
	if len(position.PurchaseLots) > 0 {
		if err := s.db.Create(&position.PurchaseLots).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// ClosePosition deletes the position and all its lots.
func (s *gormStore) ClosePosition(position *models.Position, portfolioID uint) error {
	if err := s.db.Where("position_id = ?", position.ID).Delete(&models.PurchaseLot{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("id = ? AND portfolio_id = ?", position.ID, portfolioID).
		Delete(&models.Position{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdateUserCash persists the user's current cash balance.
func (s *gormStore) UpdateUserCash(user *models.User) error {
	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("current_cash_balance", user.CurrentCashBalance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AppendTrade writes one trade to the append-only log and returns its id.
func (s *gormStore) AppendTrade(trade *models.Trade) (uint, error) {
	if err := s.db.Create(trade).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trade.ID, nil
}

// TradesForUser returns the user's trade history, most recent first.
func (s *gormStore) TradesForUser(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Trade{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var trades []models.Trade
	if err := base.Order("executed_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(trades, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SaveValuation persists the portfolio's cached value, net profit, and
// percentage return.
func (s *gormStore) SaveValuation(portfolio *models.Portfolio) error {
	if err := s.db.Model(&models.Portfolio{}).Where("id = ?", portfolio.ID).
		Updates(map[string]interface{}{
			"value":             portfolio.Value,
			"net_profit":        portfolio.NetProfit,
			"percentage_return": portfolio.PercentageReturn,
		}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Transaction runs fn against a transaction-bound store.
func (s *gormStore) Transaction(fn func(tx PortfolioStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
