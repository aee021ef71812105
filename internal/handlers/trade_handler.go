package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "papertrade/internal/errors"
	"papertrade/internal/pagination"
	"papertrade/internal/services"
)

// TradeHandler handles trade execution and history requests.
type TradeHandler struct {
	tradeService services.TradeServicer
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeService services.TradeServicer) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// TradeRequest represents the request payload for a buy or sell order.
type TradeRequest struct {
	StockSymbol string `json:"stock_symbol" binding:"required,stock_symbol"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
}

// Buy executes a buy order at the current market price.
// @Summary     Buy stock
// @Description Buy shares of a stock at the current market price. A rejected
// @Description order (insufficient funds) returns 400 with the rejection reason.
// @Tags        trades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TradeRequest true "Order details"
// @Success     200 {object} services.TradeResult "Trade executed"
// @Failure     400 {object} services.TradeResult "Order rejected"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown stock symbol"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /trades/buy [post]
func (h *TradeHandler) Buy(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.tradeService.ExecuteBuyTrade(userID, req.StockSymbol, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !result.Executed {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Sell executes a sell order at the current market price.
// @Summary     Sell stock
// @Description Sell shares of a stock at the current market price. Purchase
// @Description lots are consumed oldest first.
// @Tags        trades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TradeRequest true "Order details"
// @Success     200 {object} services.TradeResult "Trade executed"
// @Failure     400 {object} ErrorResponse "Invalid quantity or insufficient shares"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Unknown stock symbol or no position held"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /trades/sell [post]
func (h *TradeHandler) Sell(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.tradeService.ExecuteSellTrade(userID, req.StockSymbol, req.Quantity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if !result.Executed {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTrades returns the authenticated user's trade history.
// @Summary     List trades
// @Description Get the authenticated user's trade history, most recent first
// @Tags        trades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number" default(1)
// @Param       page_size query int false "Page size" default(20)
// @Success     200 {object} pagination.PageResponse[models.Trade] "Trade history"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /trades [get]
func (h *TradeHandler) GetTrades(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	trades, err := h.tradeService.GetUserTrades(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trades)
}
