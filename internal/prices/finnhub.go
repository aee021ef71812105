package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"papertrade/internal/logger"
)

const (
	finnhubQuoteURL = "https://finnhub.io/api/v1/quote"

	baseReconnectDelay = 5 * time.Second
	maxReconnectDelay  = 5 * time.Minute
)

// Feed keeps a Table current from Finnhub: a REST bootstrap fetches one
// quote per tracked symbol at startup, then a websocket subscription
// streams trade ticks. Reconnects use exponential backoff.
type Feed struct {
	table      *Table
	token      string
	wsURL      string
	quoteURL   string // overridable for tests
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewFeed creates a price feed writing into the given table.
func NewFeed(table *Table, token, wsURL string) *Feed {
	return &Feed{
		table:      table,
		token:      token,
		wsURL:      wsURL,
		quoteURL:   finnhubQuoteURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.Named("price_feed"),
	}
}

// quoteResponse is the Finnhub REST quote payload; "c" is current price.
type quoteResponse struct {
	Current json.Number `json:"c"`
}

// Bootstrap fetches an initial quote for every tracked symbol so trading
// can start before the first websocket tick arrives.
func (f *Feed) Bootstrap(ctx context.Context) error {
	for _, symbol := range f.table.Symbols() {
		price, err := f.fetchQuote(ctx, symbol)
		if err != nil {
			return fmt.Errorf("bootstrap quote for %s: %w", symbol, err)
		}
		f.table.Set(symbol, price)
		f.log.Infow("bootstrap quote", "symbol", symbol, "price", price)
	}
	return nil
}

func (f *Feed) fetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s?symbol=%s&token=%s", f.quoteURL, url.QueryEscape(symbol), url.QueryEscape(f.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("quote request returned status %d", resp.StatusCode)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(quote.Current.String())
}

// Run maintains the websocket subscription until the context is
// cancelled. Connection failures are retried with exponential backoff.
func (f *Feed) Run(ctx context.Context) {
	delay := baseReconnectDelay
	for {
		err := f.streamOnce(ctx)
		if ctx.Err() != nil {
			f.log.Info("price feed stopped")
			return
		}
		f.log.Warnw("price stream disconnected, reconnecting", "error", err, "delay", delay)

		select {
		case <-ctx.Done():
			f.log.Info("price feed stopped")
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// streamOnce dials the websocket, subscribes to every tracked symbol, and
// applies ticks until the connection drops.
func (f *Feed) streamOnce(ctx context.Context) error {
	wsURL := f.wsURL + "?token=" + url.QueryEscape(f.token)
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPClient: f.httpClient})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "closing")

	f.log.Info("price stream connected")

	for _, symbol := range f.table.Symbols() {
		msg := fmt.Sprintf(`{"type":"subscribe","symbol":%q}`, symbol)
		if err := conn.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
			return fmt.Errorf("subscribe %s: %w", symbol, err)
		}
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		ticks, err := parseTicks(data)
		if err != nil {
			f.log.Warnw("unparseable feed message", "error", err)
			continue
		}
		for _, t := range ticks {
			f.table.Set(t.Symbol, t.Price)
		}
	}
}

// tick is one streamed trade print.
type tick struct {
	Symbol string
	Price  decimal.Decimal
}

// feedMessage is a Finnhub websocket frame. Only "trade" frames carry
// data; pings and subscription acks have other types.
type feedMessage struct {
	Type string `json:"type"`
	Data []struct {
		Symbol string      `json:"s"`
		Price  json.Number `json:"p"`
	} `json:"data"`
}

// parseTicks extracts trade ticks from a websocket frame. Non-trade
// frames yield no ticks and no error.
func parseTicks(data []byte) ([]tick, error) {
	var msg feedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != "trade" {
		return nil, nil
	}

	ticks := make([]tick, 0, len(msg.Data))
	for _, d := range msg.Data {
		price, err := decimal.NewFromString(d.Price.String())
		if err != nil {
			return nil, fmt.Errorf("bad price for %s: %w", d.Symbol, err)
		}
		ticks = append(ticks, tick{Symbol: d.Symbol, Price: price})
	}
	return ticks, nil
}
