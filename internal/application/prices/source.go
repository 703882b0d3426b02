package prices

import (
	"context"

	"github.com/shopspring/decimal"
)

// Source adapts the Coinlore client to the valuation pipeline's QuoteSource:
// one ticker page per refresh, converted to a symbol→price map.
type Source struct {
	Client *Client
	Start  int
	Limit  int
}

func NewSource(client *Client, limit int) *Source {
	if limit <= 0 {
		limit = 100
	}
	return &Source{Client: client, Limit: limit}
}

func (s *Source) Quotes(ctx context.Context) (map[string]decimal.Decimal, error) {
	tickers, err := s.Client.FetchTickers(ctx, s.Start, s.Limit)
	if err != nil {
		return nil, err
	}
	return QuoteBatch(tickers), nil
}
