// Package prices holds the live market price table and the feed that
// keeps it current. The table is the read-only price lookup capability
// injected into the valuation and trade services; the feed is its only
// writer.
package prices

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "papertrade/internal/errors"
)

// Quote is one symbol's current price.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Table is a thread-safe symbol→price map over a fixed symbol universe.
// Symbols without a received quote yet are reported as not found, so no
// trade can execute against an unpriced symbol.
type Table struct {
	mu      sync.RWMutex
	tracked map[string]bool
	quotes  map[string]Quote
}

// NewTable creates a price table tracking the given symbols.
func NewTable(symbols []string) *Table {
	tracked := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		tracked[s] = true
	}
	return &Table{
		tracked: tracked,
		quotes:  make(map[string]Quote, len(symbols)),
	}
}

// Symbols returns the tracked symbol universe, sorted.
func (t *Table) Symbols() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	symbols := make([]string, 0, len(t.tracked))
	for s := range t.tracked {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// GetPrice returns the current price for the symbol, or ErrSymbolNotFound
// if the symbol is untracked or no quote has arrived yet.
func (t *Table) GetPrice(symbol string) (decimal.Decimal, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	quote, ok := t.quotes[symbol]
	if !ok {
		return decimal.Zero, apperrors.ErrSymbolNotFound
	}
	return quote.Price, nil
}

// Set records a new quote. Untracked symbols and non-positive prices are
// ignored.
func (t *Table) Set(symbol string, price decimal.Decimal) {
	if !price.IsPositive() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.tracked[symbol] {
		return
	}
	t.quotes[symbol] = Quote{Symbol: symbol, Price: price, UpdatedAt: time.Now().UTC()}
}

// Snapshot returns all current quotes sorted by symbol, for the stock
// listing endpoint.
func (t *Table) Snapshot() []Quote {
	t.mu.RLock()
	defer t.mu.RUnlock()

	quotes := make([]Quote, 0, len(t.quotes))
	for _, q := range t.quotes {
		quotes = append(quotes, q)
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Symbol < quotes[j].Symbol })
	return quotes
}
