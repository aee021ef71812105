package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"papertrade/internal/models"
	"papertrade/internal/services"
)

// PortfolioHandler handles portfolio-related requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// PurchaseLotResponse is one purchase lot within a position.
type PurchaseLotResponse struct {
	ID            uint   `json:"id"`
	Quantity      int64  `json:"quantity"`
	PurchasePrice string `json:"purchase_price"`
	PurchaseDate  string `json:"purchase_date"`
}

// PositionResponse is one holding within the portfolio.
type PositionResponse struct {
	StockSymbol   string                `json:"stock_symbol"`
	TotalQuantity int64                 `json:"total_quantity"`
	CostBasis     string                `json:"cost_basis"`
	PurchaseLots  []PurchaseLotResponse `json:"purchase_lots"`
}

// PortfolioResponse is the full portfolio view returned to the client.
type PortfolioResponse struct {
	CashBalance      string             `json:"cash_balance"`
	StartingBalance  string             `json:"starting_balance"`
	Value            string             `json:"value"`
	NetProfit        string             `json:"net_profit"`
	PercentageReturn string             `json:"percentage_return"`
	Positions        []PositionResponse `json:"positions"`
}

func buildPortfolioResponse(user *models.User) PortfolioResponse {
	portfolio := user.Portfolio
	positions := make([]PositionResponse, 0, len(portfolio.Positions))
	for i := range portfolio.Positions {
		position := &portfolio.Positions[i]
		lots := make([]PurchaseLotResponse, 0, len(position.PurchaseLots))
		for j := range position.PurchaseLots {
			lot := &position.PurchaseLots[j]
			lots = append(lots, PurchaseLotResponse{
				ID:            lot.ID,
				Quantity:      lot.Quantity,
				PurchasePrice: lot.PurchasePrice.String(),
				PurchaseDate:  lot.PurchaseDate.Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		positions = append(positions, PositionResponse{
			StockSymbol:   position.StockSymbol,
			TotalQuantity: position.TotalQuantity,
			CostBasis:     position.CostBasis().String(),
			PurchaseLots:  lots,
		})
	}
	return PortfolioResponse{
		CashBalance:      user.CurrentCashBalance.String(),
		StartingBalance:  user.StartingCashBalance.String(),
		Value:            portfolio.Value.String(),
		NetProfit:        portfolio.NetProfit.String(),
		PercentageReturn: portfolio.PercentageReturn.String(),
		Positions:        positions,
	}
}

// GetPortfolio returns the authenticated user's portfolio.
// @Summary     Get portfolio
// @Description Get the authenticated user's portfolio with positions, purchase
// @Description lots, and a valuation refreshed from current prices
// @Tags        portfolio
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} PortfolioResponse "Portfolio with current valuation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Portfolio not found or a held symbol has no price"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /portfolio [get]
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.portfolioService.GetUserPortfolio(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildPortfolioResponse(user))
}
