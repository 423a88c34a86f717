package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphacore/alphacore-backend/internal/adapter/repository/memory"
	"github.com/alphacore/alphacore-backend/internal/domain"
	"github.com/alphacore/alphacore-backend/internal/usecase/portfolio"
)

type fixedQuotes struct {
	price decimal.Decimal
}

func (f *fixedQuotes) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return &domain.Quote{
		Symbol:        symbol,
		CurrentPrice:  f.price,
		PreviousClose: f.price,
		High:          f.price,
		Low:           f.price,
		Open:          f.price,
	}, nil
}

func newTestServer(t *testing.T, token string) *httptest.Server {
	t.Helper()

	svc := portfolio.NewPortfolioService(memory.NewStore())
	handler := NewPortfolioHandler(svc, &fixedQuotes{price: decimal.NewFromInt(150)})
	srv := NewServer(Config{Port: "0", APIToken: token}, handler)

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestListPositions_SeedsDefaultAllocation(t *testing.T) {
	ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/positions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Positions []domain.Position `json:"positions"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Positions, 4)
	assert.Equal(t, "USD", body.Positions[0].Symbol)
	assert.True(t, body.Positions[0].Quantity.Equal(decimal.NewFromInt(100000)))
}

func TestPlaceOrder_Buy(t *testing.T) {
	ts := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/orders", map[string]string{
		"symbol":   "AAPL",
		"type":     "BUY",
		"quantity": "10",
		"price":    "145.50",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Trade     domain.TradeRecord `json:"trade"`
		Positions []domain.Position  `json:"positions"`
	}
	decodeBody(t, resp, &body)

	assert.Equal(t, "AAPL", body.Trade.Symbol)
	assert.True(t, body.Trade.Total.Equal(decimal.NewFromInt(1455)))

	var cash domain.Position
	for _, p := range body.Positions {
		if p.Kind == domain.AssetKindCash {
			cash = p
		}
	}
	assert.True(t, cash.Quantity.Equal(decimal.NewFromInt(98545)))
}

func TestPlaceOrder_UsesQuoteWhenPriceOmitted(t *testing.T) {
	ts := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/orders", map[string]string{
		"symbol":   "MSFT",
		"type":     "BUY",
		"quantity": "2",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Trade domain.TradeRecord `json:"trade"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Trade.Price.Equal(decimal.NewFromInt(150)))
	assert.True(t, body.Trade.Total.Equal(decimal.NewFromInt(300)))
}

func TestPlaceOrder_InsufficientFunds(t *testing.T) {
	ts := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/orders", map[string]string{
		"symbol":   "AAPL",
		"type":     "BUY",
		"quantity": "10000",
		"price":    "145.50",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["error"], "insufficient funds")
}

func TestPlaceOrder_InsufficientHoldings(t *testing.T) {
	ts := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/orders", map[string]string{
		"symbol":   "AAPL",
		"type":     "SELL",
		"quantity": "500",
		"price":    "150",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPlaceOrder_ConcurrentOrdersCannotDoubleSpend(t *testing.T) {
	ts := newTestServer(t, "")

	// Seeded cash is 100000; each order costs 60000, so only one can clear
	payload := map[string]string{
		"symbol":   "MSFT",
		"type":     "BUY",
		"quantity": "600",
		"price":    "100",
	}

	start := make(chan struct{})
	statuses := make(chan int, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/orders", payload)
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	close(start)
	wg.Wait()
	close(statuses)

	var created, rejected int
	for status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusUnprocessableEntity:
			rejected++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, rejected)

	resp, err := http.Get(ts.URL + "/api/positions")
	require.NoError(t, err)
	var body struct {
		Positions []domain.Position `json:"positions"`
	}
	decodeBody(t, resp, &body)

	var cash decimal.Decimal
	for _, p := range body.Positions {
		if p.Kind == domain.AssetKindCash {
			cash = p.Quantity
		}
	}
	assert.True(t, cash.Equal(decimal.NewFromInt(40000)),
		"cash after a single 60000 spend: %s", cash)

	resp, err = http.Get(ts.URL + "/api/trades")
	require.NoError(t, err)
	var trades struct {
		Trades []domain.TradeRecord `json:"trades"`
	}
	decodeBody(t, resp, &trades)
	assert.Len(t, trades.Trades, 1)
}

func TestPlaceOrder_InvalidInput(t *testing.T) {
	ts := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/orders", map[string]string{
		"symbol":   "AAPL",
		"type":     "HOLD",
		"quantity": "10",
		"price":    "150",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlaceOrder_MalformedQuantity(t *testing.T) {
	ts := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/orders", map[string]string{
		"symbol":   "AAPL",
		"type":     "BUY",
		"quantity": "ten",
		"price":    "150",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTrades_AfterOrder(t *testing.T) {
	ts := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/orders", map[string]string{
		"symbol":   "AAPL",
		"type":     "BUY",
		"quantity": "1",
		"price":    "145.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(ts.URL + "/api/trades")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Trades []domain.TradeRecord `json:"trades"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Trades, 1)
	assert.Equal(t, "AAPL", body.Trades[0].Symbol)
}

func TestAppendPosition(t *testing.T) {
	ts := newTestServer(t, "")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/positions", map[string]string{
		"symbol":      "BTC",
		"name":        "Bitcoin",
		"quantity":    "0.5",
		"averageCost": "60000",
		"kind":        "CRYPTO",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Positions []domain.Position `json:"positions"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Positions, 5)

	var btc domain.Position
	for _, p := range body.Positions {
		if p.Symbol == "BTC" {
			btc = p
		}
	}
	assert.Equal(t, domain.AssetKindCrypto, btc.Kind)
	assert.True(t, btc.Quantity.Equal(decimal.NewFromFloat(0.5)))
}

func TestGetQuote(t *testing.T) {
	ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/quote?symbol=AAPL")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var quote domain.Quote
	decodeBody(t, resp, &quote)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.True(t, quote.CurrentPrice.Equal(decimal.NewFromInt(150)))
}

func TestGetQuote_MissingSymbol(t *testing.T) {
	ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/api/quote")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuth_RejectsInvalidToken(t *testing.T) {
	ts := newTestServer(t, "secret")

	resp, err := http.Get(ts.URL + "/api/positions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/positions", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	ts := newTestServer(t, "secret")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/positions", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_HealthAlwaysReachable(t *testing.T) {
	ts := newTestServer(t, "secret")

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
