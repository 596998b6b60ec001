package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Side dictates the direction of an order
type Side string

// Type describes how an order prices itself
type Type string

// Status tracks an order through its lifecycle
type Status string

const (
	// Buy side
	Buy Side = "BUY"
	// Sell side
	Sell Side = "SELL"

	// Market orders execute at the simulated fill price
	Market Type = "MARKET"
	// Limit orders execute only when the bar touches the limit price
	Limit Type = "LIMIT"
	// Stop orders convert to market once the stop price trades
	Stop Type = "STOP"

	// Pending orders have no fills yet
	Pending Status = "PENDING"
	// PartiallyFilled orders have some quantity remaining
	PartiallyFilled Status = "PARTIALLY_FILLED"
	// Filled orders are complete and immutable
	Filled Status = "FILLED"
	// Cancelled orders were withdrawn and are immutable
	Cancelled Status = "CANCELLED"
	// Rejected orders failed validation before reaching the book
	Rejected Status = "REJECTED"
)

var (
	// ErrOrderClosed is returned when a fill is applied to a terminal order
	ErrOrderClosed = errors.New("order is already filled or cancelled")
	// ErrOverfill is returned when a fill would exceed the requested amount
	ErrOverfill = errors.New("fill exceeds remaining order amount")
	// ErrInvalidFill is returned for non-positive fill amounts or prices
	ErrInvalidFill = errors.New("fill amount and price must be positive")
	// ErrInvalidSide is returned for sides outside buy/sell
	ErrInvalidSide = errors.New("invalid order side")
)

// Order is a request to trade that the simulated broker owns until it
// reaches a terminal status
type Order struct {
	ID               string
	Symbol           string
	Side             Side
	Type             Type
	Amount           decimal.Decimal
	LimitPrice       decimal.Decimal
	StopPrice        decimal.Decimal
	Status           Status
	FilledAmount     decimal.Decimal
	AverageFillPrice decimal.Decimal
	SubmittedAt      time.Time
	Reason           string
}
