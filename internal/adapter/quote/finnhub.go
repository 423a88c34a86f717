// Package quote provides domain.QuoteSource implementations: a Finnhub HTTP
// client for live prices and a synthetic source for simulation runs.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphacore/alphacore-backend/internal/domain"
)

// DefaultBaseURL is the production Finnhub REST endpoint
const DefaultBaseURL = "https://finnhub.io/api/v1"

// ErrSymbolNotFound is returned when Finnhub reports an unknown symbol.
// Finnhub answers invalid symbols with an all-zero quote rather than an
// HTTP error.
var ErrSymbolNotFound = errors.New("symbol not found")

// FinnhubClient fetches live quotes from the Finnhub REST API
type FinnhubClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewFinnhubClient creates a Finnhub quote source. An empty baseURL selects
// the production endpoint.
func NewFinnhubClient(baseURL, apiKey string) *FinnhubClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FinnhubClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// finnhubQuote mirrors the wire format of GET /quote
type finnhubQuote struct {
	C  float64 `json:"c"`  // current price
	D  float64 `json:"d"`  // change
	Dp float64 `json:"dp"` // percent change
	H  float64 `json:"h"`  // high of day
	L  float64 `json:"l"`  // low of day
	O  float64 `json:"o"`  // open of day
	Pc float64 `json:"pc"` // previous close
}

// FetchQuote retrieves the current quote for symbol
func (c *FinnhubClient) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("quote: build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote: fetch %s: unexpected status %d", symbol, resp.StatusCode)
	}

	var q finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, fmt.Errorf("quote: decode %s: %w", symbol, err)
	}

	if q.C == 0 && q.H == 0 {
		return nil, fmt.Errorf("quote: %s: %w", symbol, ErrSymbolNotFound)
	}

	return &domain.Quote{
		Symbol:        symbol,
		CurrentPrice:  decimal.NewFromFloat(q.C),
		Change:        decimal.NewFromFloat(q.D),
		PercentChange: decimal.NewFromFloat(q.Dp),
		High:          decimal.NewFromFloat(q.H),
		Low:           decimal.NewFromFloat(q.L),
		Open:          decimal.NewFromFloat(q.O),
		PreviousClose: decimal.NewFromFloat(q.Pc),
	}, nil
}
