package engine

import (
	"errors"
	"time"

	"github.com/ghantakiran/axion-stock-sub003/broker"
	"github.com/ghantakiran/axion-stock-sub003/config"
	"github.com/ghantakiran/axion-stock-sub003/data"
	"github.com/ghantakiran/axion-stock-sub003/portfolio"
	"github.com/ghantakiran/axion-stock-sub003/risk"
	"github.com/ghantakiran/axion-stock-sub003/strategies"
)

var (
	// ErrNoDataLoaded is returned when Run is called before LoadData
	ErrNoDataLoaded = errors.New("no data loaded")
	// ErrNilStrategy is returned when Run is called without a strategy
	ErrNilStrategy = errors.New("nil strategy received")
)

// BackTest drives one simulation run: it owns the broker and portfolio,
// consumes an externally supplied strategy and produces the result. All
// run-scoped state lives on the struct so concurrent runs never interfere
type BackTest struct {
	cfg       config.Config
	data      *data.Handler
	benchmark []float64
	broker    *broker.Broker
	portfolio *portfolio.Portfolio
	risk      *risk.Manager
	strategy  strategies.Handler

	lastRebalance time.Time
}
