package portfolio

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInitialFunds is returned for a non-positive starting balance
	ErrInvalidInitialFunds = errors.New("initial funds must be positive")
	errNilFill             = errors.New("nil fill received")
)

// Position is the current holding in one symbol. Owned exclusively by the
// portfolio: created on the first buy fill, removed when the quantity
// returns to zero
type Position struct {
	Symbol       string
	Amount       decimal.Decimal
	AverageCost  decimal.Decimal
	CurrentPrice decimal.Decimal
	LastUpdated  time.Time
}

// MarketValue returns amount at the current mark
func (p *Position) MarketValue() decimal.Decimal {
	return p.Amount.Mul(p.CurrentPrice)
}

// UnrealisedPnLPercent returns the fractional gain or loss versus average
// cost, zero when there is no cost basis
func (p *Position) UnrealisedPnLPercent() decimal.Decimal {
	if p.AverageCost.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return p.CurrentPrice.Sub(p.AverageCost).Div(p.AverageCost)
}

// lot is one FIFO entry: an unmatched buy quantity at its fill price. Lots
// are immutable, partial consumption replaces the head with a reduced copy
type lot struct {
	amount decimal.Decimal
	price  decimal.Decimal
	time   time.Time
}

// Trade is a closed round trip produced by FIFO matching a sell against the
// oldest open buy lots. One trade is created per closing sell fill
type Trade struct {
	Symbol     string
	Amount     decimal.Decimal
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice decimal.Decimal
	ExitPrice  decimal.Decimal
	PnL        decimal.Decimal
	PnLPercent decimal.Decimal
	HoldDays   int
}

// Snapshot is the portfolio's state after all processing for one market
// event, recorded exactly once per event
type Snapshot struct {
	Time           time.Time
	Equity         decimal.Decimal
	Cash           decimal.Decimal
	PositionsValue decimal.Decimal
	PositionCount  int
	// Drawdown is (equity - peak) / peak, always <= 0
	Drawdown decimal.Decimal
}

// Portfolio owns cash, positions, the FIFO entry queues and the trade
// ledger. ProcessFill is its single mutation point
type Portfolio struct {
	initialFunds decimal.Decimal
	cash         decimal.Decimal
	positions    map[string]*Position
	lots         map[string][]lot
	trades       []Trade
	snapshots    []Snapshot
	peak         decimal.Decimal
	// anomalies counts sells that exceeded tracked lots, a logged
	// source-behaviour gap rather than a hard error
	anomalies int
}

// View is the read-only surface handed to strategies
type View interface {
	Cash() decimal.Decimal
	Equity() decimal.Decimal
	InitialFunds() decimal.Decimal
	GetPosition(symbol string) (Position, bool)
	Positions() []Position
	PositionWeight(symbol string) decimal.Decimal
}
