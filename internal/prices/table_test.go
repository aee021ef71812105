package prices

import (
	"testing"

	"github.com/shopspring/decimal"

	apperrors "papertrade/internal/errors"
)

func TestTableGetPrice(t *testing.T) {
	table := NewTable([]string{"AAPL", "MSFT"})

	t.Run("tracked symbol without a quote", func(t *testing.T) {
		_, err := table.GetPrice("AAPL")
		if err != apperrors.ErrSymbolNotFound {
			t.Errorf("expected ErrSymbolNotFound, got %v", err)
		}
	})

	t.Run("quote round trip", func(t *testing.T) {
		table.Set("AAPL", decimal.NewFromFloat(189.5))

		price, err := table.GetPrice("AAPL")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !price.Equal(decimal.NewFromFloat(189.5)) {
			t.Errorf("expected 189.5, got %s", price)
		}
	})

	t.Run("untracked symbol", func(t *testing.T) {
		table.Set("TSLA", decimal.NewFromInt(250))

		_, err := table.GetPrice("TSLA")
		if err != apperrors.ErrSymbolNotFound {
			t.Errorf("expected untracked symbol to stay unknown, got %v", err)
		}
	})

	t.Run("non-positive prices are ignored", func(t *testing.T) {
		table.Set("MSFT", decimal.NewFromInt(400))
		table.Set("MSFT", decimal.Zero)
		table.Set("MSFT", decimal.NewFromInt(-1))

		price, err := table.GetPrice("MSFT")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !price.Equal(decimal.NewFromInt(400)) {
			t.Errorf("expected last valid price 400, got %s", price)
		}
	})
}

func TestTableSymbols(t *testing.T) {
	table := NewTable([]string{"MSFT", "AAPL", "TSLA"})

	symbols := table.Symbols()
	want := []string{"AAPL", "MSFT", "TSLA"}
	if len(symbols) != len(want) {
		t.Fatalf("expected %d symbols, got %d", len(want), len(symbols))
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Errorf("expected symbols[%d] = %s, got %s", i, want[i], symbols[i])
		}
	}
}

func TestTableSnapshot(t *testing.T) {
	table := NewTable([]string{"MSFT", "AAPL", "TSLA"})
	table.Set("MSFT", decimal.NewFromInt(400))
	table.Set("AAPL", decimal.NewFromInt(190))

	quotes := table.Snapshot()
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].Symbol != "AAPL" || quotes[1].Symbol != "MSFT" {
		t.Errorf("expected quotes sorted by symbol, got %s, %s", quotes[0].Symbol, quotes[1].Symbol)
	}
	if quotes[0].UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}
