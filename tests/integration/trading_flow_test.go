package integration

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTradingFlow_BuyHoldSell(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t)

	// Buy 20 AAPL at 150
	result := app.buy(t, token, "AAPL", 20)
	if result["executed"] != true {
		t.Fatalf("expected executed trade, got %v", result)
	}
	if result["cash_balance"] != "7000" {
		t.Errorf("expected cash 7000 after buy, got %v", result["cash_balance"])
	}
	if result["portfolio_value"] != "3000" {
		t.Errorf("expected portfolio value 3000, got %v", result["portfolio_value"])
	}

	// The portfolio reflects the open position
	rec := app.request("GET", "/api/v1/portfolio", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("portfolio failed: %d %s", rec.Code, rec.Body.String())
	}
	portfolio := parseJSON(t, rec)
	positions := portfolio["positions"].([]interface{})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	pos := positions[0].(map[string]interface{})
	if pos["stock_symbol"] != "AAPL" || pos["total_quantity"] != float64(20) {
		t.Errorf("unexpected position: %v", pos)
	}

	// The price moves up; the valuation follows on the next read
	app.Prices.Set("AAPL", decimal.NewFromInt(200))
	rec = app.request("GET", "/api/v1/portfolio", "", token)
	portfolio = parseJSON(t, rec)
	if portfolio["value"] != "4000" {
		t.Errorf("expected value 4000 at the new price, got %v", portfolio["value"])
	}
	if portfolio["net_profit"] != "1000" {
		t.Errorf("expected net profit 1000, got %v", portfolio["net_profit"])
	}
	if portfolio["percentage_return"] != "10" {
		t.Errorf("expected 10 percent return, got %v", portfolio["percentage_return"])
	}

	// Buy 10 more at 200, creating a second purchase lot
	result = app.buy(t, token, "AAPL", 10)
	if result["cash_balance"] != "5000" {
		t.Errorf("expected cash 5000 after second buy, got %v", result["cash_balance"])
	}

	// Sell 25: the 150 lot is consumed first, leaving 5 shares from the 200 lot
	result = app.sell(t, token, "AAPL", 25)
	if result["cash_balance"] != "10000" {
		t.Errorf("expected cash 10000 after sell, got %v", result["cash_balance"])
	}
	rec = app.request("GET", "/api/v1/portfolio", "", token)
	portfolio = parseJSON(t, rec)
	positions = portfolio["positions"].([]interface{})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position after partial sell, got %d", len(positions))
	}
	pos = positions[0].(map[string]interface{})
	if pos["total_quantity"] != float64(5) {
		t.Errorf("expected 5 shares left, got %v", pos["total_quantity"])
	}
	lots := pos["purchase_lots"].([]interface{})
	if len(lots) != 1 {
		t.Fatalf("expected 1 remaining lot, got %d", len(lots))
	}
	lot := lots[0].(map[string]interface{})
	if lot["purchase_price"] != "200" {
		t.Errorf("expected the 200 lot to survive, got price %v", lot["purchase_price"])
	}

	// Sell the remainder: the position is closed
	result = app.sell(t, token, "AAPL", 5)
	if result["cash_balance"] != "11000" {
		t.Errorf("expected cash 11000 after closing, got %v", result["cash_balance"])
	}
	rec = app.request("GET", "/api/v1/portfolio", "", token)
	portfolio = parseJSON(t, rec)
	positions = portfolio["positions"].([]interface{})
	if len(positions) != 0 {
		t.Errorf("expected no positions after closing, got %d", len(positions))
	}
	if portfolio["value"] != "0" {
		t.Errorf("expected value 0, got %v", portfolio["value"])
	}
	if portfolio["percentage_return"] != "10" {
		t.Errorf("expected 10 percent return, got %v", portfolio["percentage_return"])
	}
}

func TestTradingFlow_InsufficientFunds(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t)

	// 200 shares at 150 needs 30000, well past the starting balance
	rec := app.request("POST", "/api/v1/trades/buy", `{"stock_symbol":"AAPL","quantity":200}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["executed"] != false {
		t.Errorf("expected executed=false, got %v", result["executed"])
	}
	if result["reason"] != "INSUFFICIENT_FUNDS" {
		t.Errorf("expected INSUFFICIENT_FUNDS, got %v", result["reason"])
	}
	if result["cash_balance"] != startingCash {
		t.Errorf("expected cash to be untouched, got %v", result["cash_balance"])
	}

	// No trade was recorded
	rec = app.request("GET", "/api/v1/trades", "", token)
	trades := parseJSON(t, rec)
	if trades["total_items"] != float64(0) {
		t.Errorf("expected no trades, got %v", trades["total_items"])
	}
}

func TestTradingFlow_UnknownSymbol(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t)

	rec := app.request("POST", "/api/v1/trades/buy", `{"stock_symbol":"TSLA","quantity":1}`, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for untracked symbol, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "SYMBOL_NOT_FOUND" {
		t.Errorf("expected SYMBOL_NOT_FOUND, got %v", errObj["code"])
	}
}

func TestTradingFlow_SellWithoutPosition(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t)

	app.buy(t, token, "AAPL", 1)

	rec := app.request("POST", "/api/v1/trades/sell", `{"stock_symbol":"MSFT","quantity":1}`, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	errObj := parseJSON(t, rec)["error"].(map[string]interface{})
	if errObj["code"] != "POSITION_NOT_FOUND" {
		t.Errorf("expected POSITION_NOT_FOUND, got %v", errObj["code"])
	}
}

func TestTradingFlow_TradeHistoryPagination(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t)

	app.buy(t, token, "AAPL", 2)
	app.buy(t, token, "MSFT", 1)
	app.sell(t, token, "AAPL", 1)

	rec := app.request("GET", "/api/v1/trades?page=1&page_size=2", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("trades failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"] != float64(3) {
		t.Errorf("expected 3 trades, got %v", result["total_items"])
	}
	if result["total_pages"] != float64(2) {
		t.Errorf("expected 2 pages, got %v", result["total_pages"])
	}
	data := result["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("expected 2 trades on page 1, got %d", len(data))
	}
	first := data[0].(map[string]interface{})
	if first["type"] != "SELL" || first["stock_symbol"] != "AAPL" {
		t.Errorf("expected the sell first, got %v", first)
	}
}

func TestTradingFlow_StockQuotes(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t)

	rec := app.request("GET", "/api/v1/stocks", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stocks failed: %d %s", rec.Code, rec.Body.String())
	}
	stocks := parseJSON(t, rec)["stocks"].([]interface{})
	if len(stocks) != 3 {
		t.Errorf("expected 3 tracked stocks, got %d", len(stocks))
	}

	rec = app.request("GET", "/api/v1/stocks/aapl", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stock lookup failed: %d %s", rec.Code, rec.Body.String())
	}
	quote := parseJSON(t, rec)
	if quote["symbol"] != "AAPL" || quote["price"] != "150" {
		t.Errorf("unexpected quote: %v", quote)
	}
}
