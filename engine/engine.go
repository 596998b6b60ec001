// Package engine runs the chronological event loop. Each market event is
// processed in a strict sequence: mark positions, advance pending orders
// into fills, enforce stop losses, open the rebalance gate, execute
// approved signals, record one snapshot. Orders realise on a later bar,
// never within the event that created them
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/broker"
	"github.com/ghantakiran/axion-stock-sub003/config"
	"github.com/ghantakiran/axion-stock-sub003/costs"
	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/exchange"
	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/order"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
	"github.com/ghantakiran/axion-stock-sub003/risk"
	"github.com/ghantakiran/axion-stock-sub003/signal"
	"github.com/ghantakiran/axion-stock-sub003/statistics"
	"github.com/ghantakiran/axion-stock-sub003/strategies"
)

// New validates the configuration and assembles a backtest with its broker,
// portfolio and risk manager
func New(cfg config.Config) (*BackTest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	execSettings := cfg.Execution
	execSettings.Seed = cfg.Seed
	sim, err := exchange.NewSimulator(execSettings, costs.NewModel(cfg.Costs))
	if err != nil {
		return nil, err
	}
	b, err := broker.New(sim)
	if err != nil {
		return nil, err
	}
	p, err := portfolio.New(cfg.InitialCapital)
	if err != nil {
		return nil, err
	}
	return &BackTest{
		cfg:       cfg,
		broker:    b,
		portfolio: p,
		risk:      risk.NewManager(cfg.Risk),
	}, nil
}

// LoadData attaches the price history, restricted to the configured date
// range when one is set, and captures the benchmark return series if a
// benchmark symbol is configured
func (bt *BackTest) LoadData(handler *data.Handler) error {
	if handler == nil || handler.Len() == 0 {
		return data.ErrNoData
	}
	if !bt.cfg.StartDate.IsZero() && !bt.cfg.EndDate.IsZero() {
		sliced, err := handler.Slice(bt.cfg.StartDate, bt.cfg.EndDate)
		if err != nil {
			return err
		}
		handler = sliced
	}
	bt.data = handler
	bt.benchmark = nil
	if bt.cfg.BenchmarkSymbol != "" {
		bt.benchmark = handler.ReturnSeries(bt.cfg.BenchmarkSymbol)
		if bt.benchmark == nil {
			log.Warnf(log.Engine, "benchmark symbol %q has no usable series", bt.cfg.BenchmarkSymbol)
		}
	}
	return nil
}

// Reset returns every run-scoped component to its initial state so the
// backtest can be replayed
func (bt *BackTest) Reset() {
	if bt.data != nil {
		bt.data.Reset()
	}
	bt.broker.Reset()
	bt.portfolio.Reset()
	bt.risk.Reset()
	bt.strategy = nil
	bt.lastRebalance = time.Time{}
}

// Run executes the full event loop with the supplied strategy and compiles
// the result. A run is strictly single threaded and deterministic for a
// given seed
func (bt *BackTest) Run(strategy strategies.Handler) (*statistics.Result, error) {
	if strategy == nil {
		return nil, ErrNilStrategy
	}
	if bt.data == nil {
		return nil, ErrNoDataLoaded
	}
	bt.strategy = strategy
	log.Infof(log.Engine, "running %s over %d events", strategy.Name(), bt.data.Len())

	for event, ok := bt.data.Next(); ok; event, ok = bt.data.Next() {
		if err := bt.processEvent(&event); err != nil {
			return nil, err
		}
	}
	return statistics.CalculateResults(
		bt.portfolio.Snapshots(),
		bt.portfolio.Trades(),
		bt.benchmark,
		bt.cfg.RiskFreeRate.InexactFloat64(),
		bt.broker.Costs(),
	)
}

// processEvent applies the strict per-event sequence
func (bt *BackTest) processEvent(event *data.MarketEvent) error {
	// 1. mark positions to this event's closes
	bt.portfolio.UpdateMarketData(event)

	// 2. advance pending orders against each symbol's bar, oldest fills
	// reach the portfolio before the strategy hears about them
	if err := bt.processFills(event); err != nil {
		return err
	}

	// 3. risk: engage the sticky halt if breached, then force stop-loss
	// exits regardless of rebalance timing
	bt.risk.UpdateDrawdown(bt.portfolio.Drawdown())
	pending := bt.risk.StopLossExits(bt.portfolio)

	// 4. rebalance gate
	if bt.cfg.RebalanceFrequency.Due(bt.lastRebalance, event.Time) {
		bt.lastRebalance = event.Time
		sigs, err := bt.strategy.OnBar(event, bt.portfolio)
		if err != nil {
			return fmt.Errorf("strategy %s: %w", bt.strategy.Name(), err)
		}
		pending = append(pending, sigs...)
	}

	// 5. validate and execute
	for i := range pending {
		if err := bt.risk.EvaluateSignal(&pending[i], bt.portfolio); err != nil {
			log.Debugf(log.Engine, "rejecting %s signal for %s: %v", pending[i].Side, pending[i].Symbol, err)
			continue
		}
		if err := bt.executeSignal(&pending[i], event); err != nil {
			return err
		}
	}

	// 6. exactly one snapshot per processed event
	bt.portfolio.RecordSnapshot(event.Time)
	return nil
}

func (bt *BackTest) processFills(event *data.MarketEvent) error {
	symbols := make([]string, 0, len(event.Bars))
	for symbol := range event.Bars {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		bar := event.Bars[symbol]
		fills, err := bt.broker.ProcessBar(&bar)
		if err != nil {
			return err
		}
		for i := range fills {
			if err := bt.portfolio.ProcessFill(&fills[i]); err != nil {
				return err
			}
			bt.strategy.OnFill(&fills[i])
		}
	}
	return nil
}

// executeSignal converts an approved signal into an order and submits it.
// A zero resulting quantity is a no-op, not an order. Symbols without a bar
// in this event are skipped
func (bt *BackTest) executeSignal(s *signal.Signal, event *data.MarketEvent) error {
	bar, ok := event.Bars[s.Symbol]
	if !ok {
		return nil
	}
	price := bar.Close
	if price.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	side := s.Side
	var amount decimal.Decimal
	switch s.Kind {
	case signal.TargetWeight:
		targetValue := bt.portfolio.Equity().Mul(s.Weight)
		var currentValue decimal.Decimal
		if pos, held := bt.portfolio.GetPosition(s.Symbol); held {
			currentValue = pos.MarketValue()
		}
		delta := targetValue.Sub(currentValue)
		amount = delta.Abs().Div(price)
		if delta.GreaterThan(decimal.Zero) {
			side = order.Buy
		} else {
			side = order.Sell
		}
	case signal.TargetShares:
		var current decimal.Decimal
		if pos, held := bt.portfolio.GetPosition(s.Symbol); held {
			current = pos.Amount
		}
		delta := s.Shares.Sub(current)
		amount = delta.Abs()
		if delta.GreaterThan(decimal.Zero) {
			side = order.Buy
		} else {
			side = order.Sell
		}
	case signal.Direct:
		amount = s.Amount
	default:
		log.Warnf(log.Engine, "signal for %s has unknown kind %q, skipping", s.Symbol, s.Kind)
		return nil
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	orderType := order.Market
	if s.LimitPrice.GreaterThan(decimal.Zero) {
		orderType = order.Limit
	}
	o := &order.Order{
		Symbol:      s.Symbol,
		Side:        side,
		Type:        orderType,
		Amount:      amount,
		LimitPrice:  s.LimitPrice,
		StopPrice:   s.StopPrice,
		SubmittedAt: event.Time,
		Reason:      s.Reason,
	}
	id, err := bt.broker.SubmitOrder(o)
	if err != nil {
		return fmt.Errorf("%w submitting order for %s", err, s.Symbol)
	}
	log.Debugf(log.Engine, "submitted %s %s %v as %s", side, s.Symbol, amount, id)
	return nil
}

// Portfolio exposes the read-only portfolio view, used by tests and the
// analyses that replay a run's output
func (bt *BackTest) Portfolio() portfolio.View {
	return bt.portfolio
}

// Trades returns the closed round trips of the run, the input to the
// Monte Carlo resampler
func (bt *BackTest) Trades() []portfolio.Trade {
	return bt.portfolio.Trades()
}

// Broker returns the broker for inspection
func (bt *BackTest) Broker() *broker.Broker {
	return bt.broker
}
