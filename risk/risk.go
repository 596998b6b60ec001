// Package risk gates strategy signals: per-position weight limits, forced
// stop-loss exits and a sticky portfolio drawdown halt
package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ghantakiran/axion-stock-sub003/log"
	"github.com/ghantakiran/axion-stock-sub003/order"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
	"github.com/ghantakiran/axion-stock-sub003/signal"
)

// DefaultSettings returns the documented limits: 15% max position, -15%
// drawdown halt and -15% per-position stop
func DefaultSettings() Settings {
	return Settings{
		MaxPositionWeight: decimal.NewFromFloat(0.15),
		StopLossPercent:   decimal.NewFromFloat(-0.15),
		MaxDrawdownHalt:   decimal.NewFromFloat(-0.15),
	}
}

// NewManager returns a risk manager for a single run
func NewManager(settings Settings) *Manager {
	return &Manager{
		settings: settings,
		stopped:  make(map[string]bool),
	}
}

// Reset clears halt and stop state for a fresh run
func (m *Manager) Reset() {
	m.halted = false
	m.stopped = make(map[string]bool)
}

// UpdateDrawdown checks the portfolio drawdown against the halt threshold.
// Once breached the halt never releases for the remainder of the run
func (m *Manager) UpdateDrawdown(drawdown decimal.Decimal) {
	if m.halted {
		return
	}
	if m.settings.MaxDrawdownHalt.IsNegative() && drawdown.LessThanOrEqual(m.settings.MaxDrawdownHalt) {
		m.halted = true
		log.Warnf(log.Risk, "drawdown %v breached halt threshold %v, rejecting all further signals",
			drawdown, m.settings.MaxDrawdownHalt)
	}
}

// Halted reports whether the drawdown halt has engaged
func (m *Manager) Halted() bool {
	return m.halted
}

// StopLossExits returns forced full-exit signals for every position whose
// unrealised loss is at or below the stop. Stopped symbols are remembered
// so further buys are rejected
func (m *Manager) StopLossExits(view portfolio.View) []signal.Signal {
	if !m.settings.StopLossPercent.IsNegative() || m.halted {
		return nil
	}
	var exits []signal.Signal
	for _, pos := range view.Positions() {
		if pos.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		pnl := pos.UnrealisedPnLPercent()
		if pnl.GreaterThan(m.settings.StopLossPercent) {
			continue
		}
		m.stopped[pos.Symbol] = true
		s := signal.NewDirect(pos.Symbol, order.Sell, pos.Amount,
			fmt.Sprintf("stop-loss: unrealised pnl %v at or below %v", pnl, m.settings.StopLossPercent))
		s.Forced = true
		exits = append(exits, s)
		log.Infof(log.Risk, "forcing exit of %s, unrealised pnl %v", pos.Symbol, pnl)
	}
	return exits
}

// EvaluateSignal validates one strategy signal against the risk rules,
// returning a reason when it must be rejected
func (m *Manager) EvaluateSignal(s *signal.Signal, view portfolio.View) error {
	if m.halted {
		return ErrTradingHalted
	}
	if s.Forced {
		return nil
	}
	if m.stopped[s.Symbol] && increasesHolding(s, view) {
		return fmt.Errorf("%w: %s", ErrSymbolStopped, s.Symbol)
	}
	if s.Kind == signal.TargetWeight &&
		m.settings.MaxPositionWeight.GreaterThan(decimal.Zero) &&
		s.Weight.GreaterThan(m.settings.MaxPositionWeight) {
		return fmt.Errorf("%w: %v > %v", ErrExceedsMaxPosition, s.Weight, m.settings.MaxPositionWeight)
	}
	return nil
}

// increasesHolding reports whether executing the signal would grow the
// position. Target signals carry no side until execution, so the effective
// side is resolved against the current holding
func increasesHolding(s *signal.Signal, view portfolio.View) bool {
	switch s.Kind {
	case signal.TargetShares:
		pos, _ := view.GetPosition(s.Symbol)
		return s.Shares.GreaterThan(pos.Amount)
	case signal.TargetWeight:
		return s.Weight.GreaterThan(view.PositionWeight(s.Symbol))
	default:
		return s.Side == order.Buy
	}
}
