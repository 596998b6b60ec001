package risk

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrTradingHalted is returned for every signal after the portfolio
	// drawdown breaches the configured halt. The halt is sticky for the
	// remainder of the run
	ErrTradingHalted = errors.New("trading halted by max drawdown breach")
	// ErrExceedsMaxPosition is returned when a signal's target weight is
	// beyond the per-position limit
	ErrExceedsMaxPosition = errors.New("target weight exceeds max position limit")
	// ErrSymbolStopped is returned for buys of a symbol already in
	// stop-loss
	ErrSymbolStopped = errors.New("symbol is in stop-loss, further buys rejected")
)

// Settings carries the portfolio risk limits. Percentages are fractional,
// eg 0.15 for fifteen percent
type Settings struct {
	// MaxPositionWeight caps any single position's share of equity
	MaxPositionWeight decimal.Decimal
	// StopLossPercent forces an exit once a position's unrealised loss
	// reaches it. Expressed negative, eg -0.15
	StopLossPercent decimal.Decimal
	// MaxDrawdownHalt stops all further trading once portfolio drawdown
	// reaches it. Expressed negative, eg -0.15
	MaxDrawdownHalt decimal.Decimal
}

// Manager enforces the risk rules for one run. Halt and stop state are
// explicit fields so concurrent runs never interfere
type Manager struct {
	settings Settings
	halted   bool
	stopped  map[string]bool
}
