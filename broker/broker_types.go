package broker

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/exchange"
	"github.com/ghantakiran/axion-stock-sub003/fill"
	"github.com/ghantakiran/axion-stock-sub003/order"
)

var (
	// ErrOrderNotFound is returned when cancelling an unknown order id
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidOrder is returned for orders failing submission checks
	ErrInvalidOrder = errors.New("invalid order")
	errNilSimulator = errors.New("nil execution simulator")
)

// CostSummary accumulates the running transaction cost totals over every
// fill the broker has produced
type CostSummary struct {
	Commission decimal.Decimal
	Slippage   decimal.Decimal
	Fees       decimal.Decimal
}

// Total returns the sum of all cost components
func (c CostSummary) Total() decimal.Decimal {
	return c.Commission.Add(c.Slippage).Add(c.Fees)
}

// Broker owns the pending order set and the fill ledger, delegating pricing
// to the execution simulator. Orders are advanced in submission sequence so
// runs are reproducible
type Broker struct {
	exec    *exchange.Simulator
	pending []*order.Order
	fills   []fill.Fill
	costs   CostSummary
}
