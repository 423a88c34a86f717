package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType represents the direction of an order
type OrderType string

const (
	OrderTypeBuy  OrderType = "BUY"
	OrderTypeSell OrderType = "SELL"
)

// Order is a proposed trade submitted by the caller. Price is the quote the
// caller obtained for this order; the engine never re-fetches it, so every
// trade is a deterministic function of the order and the prior snapshot.
type Order struct {
	Symbol   string
	Type     OrderType
	Quantity decimal.Decimal
	Price    decimal.Decimal
	// Kind classifies the position a BUY creates when the symbol is not
	// already held. Empty defaults to STOCK.
	Kind AssetKind
}

// Validate ensures the order adheres to domain rules.
// Failures wrap ErrInvalidOrderInput.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.Symbol) == "" {
		return fmt.Errorf("%w: symbol cannot be empty", ErrInvalidOrderInput)
	}

	if o.Type != OrderTypeBuy && o.Type != OrderTypeSell {
		return fmt.Errorf("%w: order type must be BUY or SELL", ErrInvalidOrderInput)
	}

	if !o.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrderInput)
	}

	if !o.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidOrderInput)
	}

	if o.Kind == AssetKindCash {
		return fmt.Errorf("%w: cash cannot be traded directly", ErrInvalidOrderInput)
	}

	if o.Kind != "" && !ValidKind(o.Kind) {
		return fmt.Errorf("%w: unknown asset kind %q", ErrInvalidOrderInput, o.Kind)
	}

	return nil
}

// Total returns quantity * price for the order
func (o *Order) Total() decimal.Decimal {
	return o.Quantity.Mul(o.Price)
}

// TradeRecord is an immutable fact of a completed order. Records are
// append-only: once written they are never mutated or deleted.
type TradeRecord struct {
	ID        uuid.UUID       `json:"id"`
	Symbol    string          `json:"symbol"`
	Type      OrderType       `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewTradeRecord creates the trade record for an executed order
func NewTradeRecord(order Order, executedAt time.Time) TradeRecord {
	return TradeRecord{
		ID:        uuid.New(),
		Symbol:    order.Symbol,
		Type:      order.Type,
		Quantity:  order.Quantity,
		Price:     order.Price,
		Total:     order.Total(),
		Timestamp: executedAt,
	}
}
