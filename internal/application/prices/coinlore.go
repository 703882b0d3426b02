package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const defaultBaseURL = "https://api.coinlore.net/api"

// Ticker is one entry of the Coinlore batch ticker payload. Prices arrive as
// JSON strings.
type Ticker struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Price  string `json:"price_usd"`
}

type tickersResponse struct {
	Data []Ticker `json:"data"`
}

// Client calls the Coinlore ticker API. BaseURL and HTTPClient are injected
// so tests can point it at an httptest.Server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Cache      *SymbolCache
}

func NewClient(baseURL string, cache *SymbolCache) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Cache:      cache,
	}
}

// FetchTickers returns one start/limit page of the batch ticker endpoint.
// Any transport, status or decode failure is a feed failure. Fetched
// symbol→id pairs are recorded in the cache for later id lookups.
func (c *Client) FetchTickers(ctx context.Context, start, limit int) ([]Ticker, error) {
	endpoint := fmt.Sprintf("%s/tickers/?start=%d&limit=%d", c.BaseURL, start, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("coinlore: unexpected status %d", resp.StatusCode)
	}

	var payload tickersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("coinlore: decode response: %w", err)
	}

	if c.Cache != nil {
		for _, t := range payload.Data {
			c.Cache.Record(t.Symbol, t.ID)
		}
	}
	return payload.Data, nil
}

// QuoteBatch converts tickers into the symbol→price map the valuation
// engine consumes. Unparseable prices are dropped; when the feed repeats a
// symbol the first entry wins.
func QuoteBatch(tickers []Ticker) map[string]decimal.Decimal {
	quotes := make(map[string]decimal.Decimal, len(tickers))
	for _, t := range tickers {
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			continue
		}
		if _, ok := quotes[t.Symbol]; !ok {
			quotes[t.Symbol] = price
		}
	}
	return quotes
}
