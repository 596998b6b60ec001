// Package fill defines the immutable record of an order executing against a
// single bar. A fill never spans more than one bar
package fill

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/order"
)

// Fill is the partial or complete execution of an order
type Fill struct {
	OrderID    string
	Symbol     string
	Side       order.Side
	Amount     decimal.Decimal
	Price      decimal.Decimal
	Time       time.Time
	Commission decimal.Decimal
	Slippage   decimal.Decimal
	Fees       decimal.Decimal
}

// Notional returns amount multiplied by price
func (f *Fill) Notional() decimal.Decimal {
	return f.Amount.Mul(f.Price)
}

// TotalCost returns the sum of commission, slippage and regulatory fees
func (f *Fill) TotalCost() decimal.Decimal {
	return f.Commission.Add(f.Slippage).Add(f.Fees)
}
