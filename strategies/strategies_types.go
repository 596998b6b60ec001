package strategies

import (
	"errors"

	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/fill"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
	"github.com/ghantakiran/axion-stock-sub003/signal"
)

// ErrStrategyNotFound is returned when a strategy name has no registered
// implementation
var ErrStrategyNotFound = errors.New("strategy not found")

// Handler is the contract every strategy implements. OnBar is called only
// when the engine's rebalance gate is open; OnFill is notified after every
// fill regardless of rebalance timing
type Handler interface {
	Name() string
	Description() string
	OnBar(event *data.MarketEvent, view portfolio.View) ([]signal.Signal, error)
	OnFill(f *fill.Fill)
	SetCustomSettings(map[string]any) error
	SetDefaults()
}
