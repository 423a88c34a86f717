package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/alphacore/alphacore-backend/internal/domain"
	"github.com/alphacore/alphacore-backend/internal/usecase/portfolio"
)

// PortfolioHandler serves ledger HTTP endpoints
type PortfolioHandler struct {
	Portfolio *portfolio.PortfolioService
	Quotes    domain.QuoteSource
}

// NewPortfolioHandler creates a PortfolioHandler
func NewPortfolioHandler(svc *portfolio.PortfolioService, quotes domain.QuoteSource) *PortfolioHandler {
	return &PortfolioHandler{Portfolio: svc, Quotes: quotes}
}

// Health reports liveness.
// GET /api/health
func (h *PortfolioHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPositions returns the current position set, seeding the default
// allocation on first access.
// GET /api/positions
func (h *PortfolioHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Portfolio.LoadPositions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load positions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"positions": positions})
}

// appendPositionRequest is the manual position import payload. Numeric fields
// travel as strings so decimal precision survives the wire.
type appendPositionRequest struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Quantity    string `json:"quantity"`
	AverageCost string `json:"averageCost"`
	Kind        string `json:"kind"`
}

// AppendPosition adds a position outside the buy/sell flow.
// POST /api/positions
func (h *PortfolioHandler) AppendPosition(w http.ResponseWriter, r *http.Request) {
	var req appendPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quantity format")
		return
	}
	averageCost := decimal.NewFromInt(1)
	if req.AverageCost != "" {
		if averageCost, err = decimal.NewFromString(req.AverageCost); err != nil {
			writeError(w, http.StatusBadRequest, "invalid averageCost format")
			return
		}
	}

	positions, err := h.Portfolio.AppendManualPosition(r.Context(), domain.Position{
		Symbol:      req.Symbol,
		Name:        req.Name,
		Quantity:    quantity,
		AverageCost: averageCost,
		Kind:        domain.AssetKind(req.Kind),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"positions": positions})
}

// placeOrderRequest is the order submission payload. Price is optional: when
// omitted the handler fetches a quote and fills it in, keeping the engine a
// deterministic function of its inputs.
type placeOrderRequest struct {
	Symbol   string `json:"symbol"`
	Type     string `json:"type"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Kind     string `json:"kind"`
}

// PlaceOrder executes a buy or sell against the latest snapshot.
// POST /api/orders
func (h *PortfolioHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quantity format")
		return
	}

	var price decimal.Decimal
	if req.Price != "" {
		if price, err = decimal.NewFromString(req.Price); err != nil {
			writeError(w, http.StatusBadRequest, "invalid price format")
			return
		}
	} else {
		quote, err := h.Quotes.FetchQuote(r.Context(), req.Symbol)
		if err != nil {
			logrus.WithError(err).WithField("symbol", req.Symbol).Error("quote fetch failed")
			writeError(w, http.StatusBadGateway, "quote unavailable for "+req.Symbol)
			return
		}
		price = quote.CurrentPrice
	}

	order := domain.Order{
		Symbol:   req.Symbol,
		Type:     domain.OrderType(req.Type),
		Quantity: quantity,
		Price:    price,
		Kind:     domain.AssetKind(req.Kind),
	}

	positions, trade, err := h.Portfolio.ExecuteOrder(r.Context(), order)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"trade":     trade,
		"positions": positions,
	})
}

// ListTrades returns the full trade log, most recent first.
// GET /api/trades
func (h *PortfolioHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.Portfolio.ListTrades(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}

// Summary values the portfolio at current quotes. Symbols whose quote fetch
// fails are valued at book cost.
// GET /api/summary
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Portfolio.LoadPositions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load positions")
		return
	}

	prices := make(map[string]decimal.Decimal)
	for i := range positions {
		if positions[i].Kind == domain.AssetKindCash {
			continue
		}
		quote, err := h.Quotes.FetchQuote(r.Context(), positions[i].Symbol)
		if err != nil {
			logrus.WithError(err).WithField("symbol", positions[i].Symbol).
				Warn("quote fetch failed, valuing at cost")
			continue
		}
		prices[positions[i].Symbol] = quote.CurrentPrice
	}

	writeJSON(w, http.StatusOK, portfolio.Summarize(positions, prices))
}

// GetQuote returns the current quote for a symbol.
// GET /api/quote?symbol=AAPL
func (h *PortfolioHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol query parameter required")
		return
	}

	quote, err := h.Quotes.FetchQuote(r.Context(), symbol)
	if err != nil {
		logrus.WithError(err).WithField("symbol", symbol).Error("quote fetch failed")
		writeError(w, http.StatusBadGateway, "quote unavailable for "+symbol)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// writeDomainError maps the engine's typed failures onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrderInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientHoldings),
		errors.Is(err, domain.ErrMissingCashAccount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logrus.WithError(err).Error("order execution failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON marshals v as JSON and writes it with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
