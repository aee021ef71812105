// Package errors provides custom error types for the Papertrade API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrDuplicateUsername = &AppError{Code: "DUPLICATE_USERNAME", Message: "A user with this username already exists", StatusCode: http.StatusConflict}
)

// Portfolio and position errors. The two not-found variants carry distinct
// messages: NO_POSITIONS means the portfolio holds nothing at all, while
// POSITION_NOT_FOUND means there is no position for the requested symbol.
var (
	ErrPortfolioNotFound  = &AppError{Code: "PORTFOLIO_NOT_FOUND", Message: "Portfolio not found", StatusCode: http.StatusNotFound}
	ErrPortfolioNotLoaded = &AppError{Code: "PORTFOLIO_NOT_LOADED", Message: "User portfolio not loaded", StatusCode: http.StatusConflict}
	ErrNoPositions        = &AppError{Code: "NO_POSITIONS", Message: "No positions found", StatusCode: http.StatusNotFound}
	ErrPositionNotFound   = &AppError{Code: "POSITION_NOT_FOUND", Message: "No position found for the given stock symbol", StatusCode: http.StatusNotFound}
)

// Trade errors. Insufficient funds is deliberately absent: the trade
// service reports it as a non-executed result, not as an error.
var (
	ErrInvalidQuantity = &AppError{Code: "INVALID_QUANTITY", Message: "Invalid quantity to sell or no purchase lots available", StatusCode: http.StatusBadRequest}
	ErrInvalidLot      = &AppError{Code: "INVALID_LOT", Message: "Invalid quantity or price per share", StatusCode: http.StatusBadRequest}
	ErrSymbolNotFound  = &AppError{Code: "SYMBOL_NOT_FOUND", Message: "Stock symbol not found in current price list", StatusCode: http.StatusNotFound}
)
