// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Symbols are 1-10 uppercase letters with optional dot or dash segments,
// which covers US tickers including class shares (BRK.B) and preferreds.
var stockSymbolRegex = regexp.MustCompile(`^[A-Z]{1,10}([.-][A-Z]{1,4})?$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("trade_type", validateTradeType)
		_ = v.RegisterValidation("stock_symbol", validateStockSymbol)
	}
}

func validateTradeType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "BUY", "SELL":
		return true
	}
	return false
}

func validateStockSymbol(fl validator.FieldLevel) bool {
	return stockSymbolRegex.MatchString(fl.Field().String())
}
