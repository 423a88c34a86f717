package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price observation for a symbol. The accounting
// engine only ever depends on CurrentPrice; the remaining fields exist for
// presentation callers.
type Quote struct {
	Symbol        string          `json:"symbol"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Change        decimal.Decimal `json:"change"`
	PercentChange decimal.Decimal `json:"percentChange"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Open          decimal.Decimal `json:"open"`
	PreviousClose decimal.Decimal `json:"previousClose"`
}

// QuoteSource supplies a current price for a symbol. It may fail or be
// unavailable; order execution always takes an explicit price instead of
// querying a source internally.
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
}
