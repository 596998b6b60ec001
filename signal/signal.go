package signal

import (
	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/order"
)

// NewTargetWeight returns a signal requesting the symbol be sized to the
// supplied fraction of portfolio equity
func NewTargetWeight(symbol string, weight decimal.Decimal, reason string) Signal {
	side := order.Buy
	if weight.LessThan(decimal.Zero) {
		side = order.Sell
	}
	return Signal{
		Symbol: symbol,
		Side:   side,
		Kind:   TargetWeight,
		Weight: weight,
		Reason: reason,
	}
}

// NewTargetShares returns a signal requesting an absolute holding size
func NewTargetShares(symbol string, shares decimal.Decimal, reason string) Signal {
	return Signal{
		Symbol: symbol,
		Kind:   TargetShares,
		Shares: shares,
		Reason: reason,
	}
}

// NewDirect returns a signal carrying an explicit side and quantity
func NewDirect(symbol string, side order.Side, amount decimal.Decimal, reason string) Signal {
	return Signal{
		Symbol: symbol,
		Side:   side,
		Kind:   Direct,
		Amount: amount,
		Reason: reason,
	}
}
