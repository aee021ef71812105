package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// defaultSymbols is the set of tickers tracked when PRICE_SYMBOLS is unset.
var defaultSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA"}

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Price feed
	FinnhubToken string
	FinnhubWSURL string
	PriceSymbols []string

	// Cash balance granted to every new user.
	StartingCashBalance decimal.Decimal
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "papertrade"),
		DBPassword: getEnv("DB_PASSWORD", "papertrade"),
		DBName:     getEnv("DB_NAME", "papertrade"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Price feed
		FinnhubToken: getEnv("FINNHUB_TOKEN", ""),
		FinnhubWSURL: getEnv("FINNHUB_WS_URL", "wss://ws.finnhub.io"),
		PriceSymbols: splitSymbols(getEnv("PRICE_SYMBOLS", "")),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	// Parse starting cash balance
	cashStr := getEnv("STARTING_CASH_BALANCE", "10000.00")
	cash, err := decimal.NewFromString(cashStr)
	if err != nil || cash.IsNegative() {
		log.Printf("Warning: invalid STARTING_CASH_BALANCE value '%s', falling back to 10000.00\n", cashStr)
		cash = decimal.NewFromInt(10000)
	}
	config.StartingCashBalance = cash

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// splitSymbols parses a comma-separated ticker list, upper-casing entries.
func splitSymbols(s string) []string {
	if s == "" {
		return defaultSymbols
	}
	parts := strings.Split(s, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			symbols = append(symbols, p)
		}
	}
	if len(symbols) == 0 {
		return defaultSymbols
	}
	return symbols
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
