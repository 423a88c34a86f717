package quote

import (
	"context"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alphacore/alphacore-backend/internal/domain"
)

// Synthetic generates simulation-mode quotes without touching the network.
// The base price varies with the symbol so distinct tickers look different,
// plus a small random jitter so repeated fetches feel live.
type Synthetic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthetic creates a synthetic quote source seeded with seed
func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewSource(seed))}
}

// FetchQuote returns a synthetic quote for symbol. It never fails.
func (s *Synthetic) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	s.mu.Lock()
	jitter := s.rng.Float64() * 5
	s.mu.Unlock()

	variation := float64(len(symbol)) * 1.5
	current := decimal.NewFromFloat(100 + variation + jitter)
	high := decimal.NewFromFloat(105 + variation)
	low := decimal.NewFromFloat(95 + variation)
	prevClose := decimal.NewFromFloat(100 + variation)

	return &domain.Quote{
		Symbol:        symbol,
		CurrentPrice:  current,
		Change:        current.Sub(prevClose),
		PercentChange: current.Sub(prevClose).Div(prevClose).Mul(decimal.NewFromInt(100)),
		High:          high,
		Low:           low,
		Open:          prevClose,
		PreviousClose: prevClose,
	}, nil
}

// Fallback wraps a primary quote source and falls back to a secondary one
// when the primary fails, the way the simulator degrades to synthetic quotes
// when the live API is unreachable.
type Fallback struct {
	Primary   domain.QuoteSource
	Secondary domain.QuoteSource
}

// NewFallback creates a quote source that prefers primary
func NewFallback(primary, secondary domain.QuoteSource) *Fallback {
	return &Fallback{Primary: primary, Secondary: secondary}
}

// FetchQuote tries the primary source first
func (f *Fallback) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	q, err := f.Primary.FetchQuote(ctx, symbol)
	if err == nil {
		return q, nil
	}

	logrus.WithError(err).WithField("symbol", symbol).
		Warn("primary quote source failed, falling back")

	return f.Secondary.FetchQuote(ctx, symbol)
}
