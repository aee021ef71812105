package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"papertrade/internal/prices"
)

// StockHandler serves the tracked stock list and current quotes.
type StockHandler struct {
	table *prices.Table
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(table *prices.Table) *StockHandler {
	return &StockHandler{table: table}
}

// QuoteResponse is one stock's current price.
type QuoteResponse struct {
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	UpdatedAt string `json:"updated_at"`
}

// ListStocks returns current quotes for all tracked symbols.
// @Summary     List stocks
// @Description Get current prices for all tracked stock symbols. Symbols with
// @Description no quote received yet are omitted.
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} QuoteResponse "Current quotes"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /stocks [get]
func (h *StockHandler) ListStocks(c *gin.Context) {
	quotes := h.table.Snapshot()
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, QuoteResponse{
			Symbol:    q.Symbol,
			Price:     q.Price.String(),
			UpdatedAt: q.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"stocks": out})
}

// GetStock returns the current quote for one symbol.
// @Summary     Get stock quote
// @Description Get the current price for one tracked stock symbol
// @Tags        stocks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       symbol path string true "Stock symbol"
// @Success     200 {object} QuoteResponse "Current quote"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Symbol not tracked or no quote yet"
// @Router      /stocks/{symbol} [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	price, err := h.table.GetPrice(symbol)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		Symbol: symbol,
		Price:  price.String(),
	})
}
