// Package signal defines the strategy's trade intent. A signal expresses its
// sizing in exactly one of three ways: a target portfolio weight, a target
// share count, or a direct side and quantity
package signal

import (
	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/order"
)

// Kind describes how a signal expresses its sizing
type Kind string

const (
	// TargetWeight sizes against a fraction of total portfolio equity
	TargetWeight Kind = "TARGET_WEIGHT"
	// TargetShares sizes against an absolute share count to hold
	TargetShares Kind = "TARGET_SHARES"
	// Direct carries an explicit side and quantity
	Direct Kind = "DIRECT"
)

// Signal is a strategy's intent for one symbol. It is consumed by the engine
// and never persisted standalone
type Signal struct {
	Symbol     string
	Side       order.Side
	Kind       Kind
	Weight     decimal.Decimal
	Shares     decimal.Decimal
	Amount     decimal.Decimal
	LimitPrice decimal.Decimal
	StopPrice  decimal.Decimal
	Reason     string
	// Forced marks risk-manager stop-loss exits which bypass the
	// rebalance gate
	Forced bool
}
