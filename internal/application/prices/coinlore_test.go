package prices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickersPayload = `{
	"data": [
		{"id": "90", "symbol": "BTC", "price_usd": "60000.12"},
		{"id": "80", "symbol": "ETH", "price_usd": "4000"},
		{"id": "2", "symbol": "DOGE", "price_usd": "not-a-number"}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *SymbolCache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cache := NewSymbolCache()
	client := NewClient(srv.URL, cache)
	return client, cache
}

func TestFetchTickers_ParsesBatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tickers/", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tickersPayload))
	})

	tickers, err := client.FetchTickers(context.Background(), 0, 100)
	require.NoError(t, err)
	require.Len(t, tickers, 3)
	assert.Equal(t, "BTC", tickers[0].Symbol)
	assert.Equal(t, "90", tickers[0].ID)
}

func TestFetchTickers_RecordsSymbolIDs(t *testing.T) {
	client, cache := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(tickersPayload))
	})

	_, err := client.FetchTickers(context.Background(), 0, 100)
	require.NoError(t, err)

	id, ok := cache.Lookup("BTC")
	require.True(t, ok)
	assert.Equal(t, "90", id)
	_, ok = cache.Lookup("XRP")
	assert.False(t, ok)
}

func TestFetchTickers_NonOKStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchTickers(context.Background(), 0, 100)
	assert.Error(t, err)
}

func TestFetchTickers_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>down for maintenance</html>"))
	})

	_, err := client.FetchTickers(context.Background(), 0, 100)
	assert.Error(t, err)
}

func TestQuoteBatch_SkipsUnparseablePrices(t *testing.T) {
	quotes := QuoteBatch([]Ticker{
		{Symbol: "BTC", Price: "60000.12"},
		{Symbol: "DOGE", Price: "not-a-number"},
	})

	require.Len(t, quotes, 1)
	assert.Equal(t, "60000.12", quotes["BTC"].String())
}

func TestQuoteBatch_FirstEntryWinsOnRepeat(t *testing.T) {
	quotes := QuoteBatch([]Ticker{
		{Symbol: "BTC", Price: "1"},
		{Symbol: "BTC", Price: "2"},
	})

	assert.Equal(t, "1", quotes["BTC"].String())
}

func TestSymbolCache_FirstWriteWins(t *testing.T) {
	cache := NewSymbolCache()
	cache.Record("BTC", "90")
	cache.Record("BTC", "999")

	id, ok := cache.Lookup("BTC")
	require.True(t, ok)
	assert.Equal(t, "90", id)
	assert.Equal(t, 1, cache.Len())
}

func TestSource_QuotesFromFeed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(tickersPayload))
	})
	source := NewSource(client, 25)

	quotes, err := source.Quotes(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "4000", quotes["ETH"].String())
}
