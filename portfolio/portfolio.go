// Package portfolio performs cash and position bookkeeping with FIFO
// realised profit attribution. Fills are the only mutation point; market
// events only re-mark positions
package portfolio

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/fill"
	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/order"
)

// New returns a portfolio holding the supplied initial funds in cash
func New(initialFunds decimal.Decimal) (*Portfolio, error) {
	if initialFunds.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidInitialFunds
	}
	return &Portfolio{
		initialFunds: initialFunds,
		cash:         initialFunds,
		positions:    make(map[string]*Position),
		lots:         make(map[string][]lot),
		peak:         initialFunds,
	}, nil
}

// Reset restores the portfolio to its initial state
func (p *Portfolio) Reset() {
	p.cash = p.initialFunds
	p.positions = make(map[string]*Position)
	p.lots = make(map[string][]lot)
	p.trades = nil
	p.snapshots = nil
	p.peak = p.initialFunds
	p.anomalies = 0
}

// UpdateMarketData marks every held position to the event's closing prices.
// Cash and quantities are untouched
func (p *Portfolio) UpdateMarketData(event *data.MarketEvent) {
	if event == nil {
		return
	}
	for symbol, pos := range p.positions {
		if bar, ok := event.Bars[symbol]; ok {
			pos.CurrentPrice = bar.Close
			pos.LastUpdated = bar.Time
		}
	}
}

// ProcessFill applies one execution to cash and positions. Buys extend the
// FIFO entry queue, sells consume it oldest-first and realise one trade
func (p *Portfolio) ProcessFill(f *fill.Fill) error {
	if f == nil {
		return errNilFill
	}
	switch f.Side {
	case order.Buy:
		p.processBuy(f)
	case order.Sell:
		p.processSell(f)
	default:
		return order.ErrInvalidSide
	}
	return nil
}

func (p *Portfolio) processBuy(f *fill.Fill) {
	p.cash = p.cash.Sub(f.Notional()).Sub(f.TotalCost())
	pos, ok := p.positions[f.Symbol]
	if !ok {
		pos = &Position{Symbol: f.Symbol}
		p.positions[f.Symbol] = pos
	}
	newAmount := pos.Amount.Add(f.Amount)
	if newAmount.IsZero() {
		// a buy returning a negative position to exactly flat
		delete(p.positions, f.Symbol)
		delete(p.lots, f.Symbol)
		return
	}
	lotAmount := f.Amount
	if pos.Amount.IsNegative() {
		// the covering part of a buy against a negative position has no
		// entry lot to restore, only the surplus opens one
		lotAmount = newAmount
		pos.AverageCost = f.Price
	} else {
		// quantity weighted blend of the existing basis and this fill
		pos.AverageCost = pos.AverageCost.Mul(pos.Amount).Add(f.Price.Mul(f.Amount)).Div(newAmount)
	}
	pos.Amount = newAmount
	pos.CurrentPrice = f.Price
	pos.LastUpdated = f.Time
	if lotAmount.GreaterThan(decimal.Zero) {
		p.lots[f.Symbol] = append(p.lots[f.Symbol], lot{amount: lotAmount, price: f.Price, time: f.Time})
	}
}

func (p *Portfolio) processSell(f *fill.Fill) {
	p.cash = p.cash.Add(f.Notional()).Sub(f.TotalCost())
	trade := p.matchLots(f)
	if !trade.Amount.IsZero() {
		p.trades = append(p.trades, trade)
	}

	pos, ok := p.positions[f.Symbol]
	if !ok {
		p.anomalies++
		log.Warnf(log.Portfolio, "sell of %v %s with no tracked position", f.Amount, f.Symbol)
		pos = &Position{Symbol: f.Symbol}
		p.positions[f.Symbol] = pos
	}
	pos.Amount = pos.Amount.Sub(f.Amount)
	pos.CurrentPrice = f.Price
	pos.LastUpdated = f.Time
	switch {
	case pos.Amount.IsZero():
		delete(p.positions, f.Symbol)
		delete(p.lots, f.Symbol)
	case pos.Amount.IsNegative():
		// known permissive behaviour: log and continue with the
		// invalid state rather than raising
		p.anomalies++
		log.Warnf(log.Portfolio, "%s position went negative (%v) after sell of %v",
			f.Symbol, pos.Amount, f.Amount)
	}
}

// matchLots walks the FIFO queue consuming the oldest lots first, splitting
// a lot when only part of it closes, and aggregates one trade for the fill
func (p *Portfolio) matchLots(f *fill.Fill) Trade {
	queue := p.lots[f.Symbol]
	remaining := f.Amount
	var consumed, costBasis decimal.Decimal
	var entryTime = f.Time
	first := true
	for len(queue) > 0 && remaining.GreaterThan(decimal.Zero) {
		head := queue[0]
		if first {
			entryTime = head.time
			first = false
		}
		take := head.amount
		if take.GreaterThan(remaining) {
			take = remaining
		}
		consumed = consumed.Add(take)
		costBasis = costBasis.Add(take.Mul(head.price))
		if take.Equal(head.amount) {
			queue = queue[1:]
		} else {
			queue[0] = lot{amount: head.amount.Sub(take), price: head.price, time: head.time}
		}
		remaining = remaining.Sub(take)
	}
	p.lots[f.Symbol] = queue

	if remaining.GreaterThan(decimal.Zero) {
		p.anomalies++
		log.Warnf(log.Portfolio, "sell of %v %s exceeds tracked lots by %v", f.Amount, f.Symbol, remaining)
	}
	if consumed.IsZero() {
		return Trade{}
	}
	pnl := f.Price.Mul(consumed).Sub(costBasis).Sub(f.TotalCost())
	var pnlPercent decimal.Decimal
	if costBasis.GreaterThan(decimal.Zero) {
		pnlPercent = pnl.Div(costBasis)
	}
	return Trade{
		Symbol:     f.Symbol,
		Amount:     consumed,
		EntryTime:  entryTime,
		ExitTime:   f.Time,
		EntryPrice: costBasis.Div(consumed),
		ExitPrice:  f.Price,
		PnL:        pnl,
		PnLPercent: pnlPercent,
		HoldDays:   int(f.Time.Sub(entryTime).Hours() / 24),
	}
}

// RecordSnapshot updates the running equity peak and appends one snapshot.
// Called exactly once per processed market event, after fills and signal
// execution
func (p *Portfolio) RecordSnapshot(timestamp time.Time) {
	equity := p.Equity()
	if equity.GreaterThan(p.peak) {
		p.peak = equity
	}
	var drawdown decimal.Decimal
	if p.peak.GreaterThan(decimal.Zero) {
		drawdown = equity.Sub(p.peak).Div(p.peak)
	}
	p.snapshots = append(p.snapshots, Snapshot{
		Time:           timestamp,
		Equity:         equity,
		Cash:           p.cash,
		PositionsValue: p.positionsValue(),
		PositionCount:  len(p.positions),
		Drawdown:       drawdown,
	})
}

func (p *Portfolio) positionsValue() decimal.Decimal {
	var total decimal.Decimal
	for _, pos := range p.positions {
		total = total.Add(pos.MarketValue())
	}
	return total
}

// Equity returns cash plus the marked value of every position
func (p *Portfolio) Equity() decimal.Decimal {
	return p.cash.Add(p.positionsValue())
}

// Cash returns the free cash balance
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

// InitialFunds returns the starting balance
func (p *Portfolio) InitialFunds() decimal.Decimal {
	return p.initialFunds
}

// Drawdown returns the current drawdown from the running equity peak
func (p *Portfolio) Drawdown() decimal.Decimal {
	if p.peak.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return p.Equity().Sub(p.peak).Div(p.peak)
}

// GetPosition returns a copy of the holding for symbol
func (p *Portfolio) GetPosition(symbol string) (Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns copies of all holdings sorted by symbol
func (p *Portfolio) Positions() []Position {
	out := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// PositionWeight returns the symbol's share of total equity
func (p *Portfolio) PositionWeight(symbol string) decimal.Decimal {
	equity := p.Equity()
	if equity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	pos, ok := p.positions[symbol]
	if !ok {
		return decimal.Zero
	}
	return pos.MarketValue().Div(equity)
}

// Trades returns the realised trade ledger
func (p *Portfolio) Trades() []Trade {
	out := make([]Trade, len(p.trades))
	copy(out, p.trades)
	return out
}

// Snapshots returns every recorded snapshot in order
func (p *Portfolio) Snapshots() []Snapshot {
	out := make([]Snapshot, len(p.snapshots))
	copy(out, p.snapshots)
	return out
}

// Anomalies returns how many sells exceeded tracked holdings
func (p *Portfolio) Anomalies() int {
	return p.anomalies
}
